package gateway

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// maxErrorBody bounds how much of an upstream error body is carried into
// the error message shown to the client.
const maxErrorBody = 300

// ResponseDecoder turns a bot endpoint response into reply text. Exactly
// one decoder is active per client, chosen at construction time.
type ResponseDecoder interface {
	Decode(status int, body []byte) (string, error)
}

// StructuredDecoder expects an OpenAI-style JSON document and extracts
// choices[0].message.content. HTTP statuses >= 400 are treated as errors.
type StructuredDecoder struct{}

func (StructuredDecoder) Decode(status int, body []byte) (string, error) {
	if status >= 400 {
		excerpt := body
		if len(excerpt) > maxErrorBody {
			cut := maxErrorBody
			// Do not split a multi-byte rune at the cut point.
			for cut > 0 && !utf8.RuneStart(body[cut]) {
				cut--
			}
			excerpt = excerpt[:cut]
		}
		return "", fmt.Errorf("bot API HTTP %d: %s", status, excerpt)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("failed to decode bot response: %w", err)
	}

	reply, ok := extractReply(doc)
	if ok {
		return reply, nil
	}

	// The document shape did not match the extraction path; fall back to
	// returning the whole document as a string.
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to serialize bot response: %w", err)
	}
	return string(raw), nil
}

// extractReply walks choices[0].message.content. Missing keys yield an
// empty reply; a structural mismatch (wrong types, empty choices array)
// reports false so the caller can serialize the whole document instead.
func extractReply(doc any) (string, bool) {
	root, ok := doc.(map[string]any)
	if !ok {
		return "", false
	}

	rawChoices, ok := root["choices"]
	if !ok {
		return "", true
	}
	choices, ok := rawChoices.([]any)
	if !ok {
		return "", false
	}
	if len(choices) == 0 {
		return "", false
	}

	choice, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}

	rawMessage, ok := choice["message"]
	if !ok {
		return "", true
	}
	message, ok := rawMessage.(map[string]any)
	if !ok {
		return "", false
	}

	rawContent, ok := message["content"]
	if !ok || rawContent == nil {
		// Absent and null content both mean an empty reply; OpenAI-style
		// tool-call responses carry "content": null.
		return "", true
	}
	content, ok := rawContent.(string)
	if !ok {
		return "", false
	}
	return content, true
}

// RawDecoder returns the body verbatim for every status code, so upstream
// failures reach the client as regular messages rather than errors.
type RawDecoder struct{}

func (RawDecoder) Decode(status int, body []byte) (string, error) {
	return string(body), nil
}
