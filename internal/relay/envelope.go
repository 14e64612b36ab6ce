package relay

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EnvelopeType defines the type of an outbound envelope
type EnvelopeType string

// Supported envelope types
const (
	EnvelopeTypeGreeting EnvelopeType = "greeting"
	EnvelopeTypeTyping   EnvelopeType = "typing"
	EnvelopeTypeMessage  EnvelopeType = "message"
	EnvelopeTypeError    EnvelopeType = "error"
)

// Role identifies the sender of an envelope
type Role string

// Envelope roles
const (
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Envelope is the only shape ever sent to the client.
type Envelope struct {
	Type    EnvelopeType `json:"type"`
	Role    Role         `json:"role"`
	Message string       `json:"message"`
}

// GreetingEnvelope is sent exactly once, right after the connection is accepted.
func GreetingEnvelope(botName string) Envelope {
	return Envelope{
		Type:    EnvelopeTypeGreeting,
		Role:    RoleAssistant,
		Message: fmt.Sprintf("Hello, this is %s. How can I help you?", botName),
	}
}

// TypingEnvelope announces that a bot call is in flight.
func TypingEnvelope(botName string) Envelope {
	return Envelope{
		Type:    EnvelopeTypeTyping,
		Role:    RoleSystem,
		Message: fmt.Sprintf("%s is typing…", botName),
	}
}

// MessageEnvelope carries a bot reply.
func MessageEnvelope(text string) Envelope {
	return Envelope{
		Type:    EnvelopeTypeMessage,
		Role:    RoleAssistant,
		Message: text,
	}
}

// ErrorEnvelope reports a failure without closing the connection.
func ErrorEnvelope(text string) Envelope {
	return Envelope{
		Type:    EnvelopeTypeError,
		Role:    RoleSystem,
		Message: text,
	}
}

// messageAliases are the accepted field names for user input, in priority
// order. The first non-blank string value wins.
var messageAliases = []string{"message", "text", "userMessage", "m"}

// parseInbound decodes a raw frame into a payload map. Frames that are not
// JSON objects are absorbed by treating the raw text itself as the message.
func parseInbound(raw []byte) map[string]any {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return map[string]any{"message": string(raw)}
	}
	return payload
}

// extractUserMessage pulls the user text out of a payload using the alias
// priority rule. Non-string and blank values are skipped; an empty result
// means no usable message was found.
func extractUserMessage(payload map[string]any) string {
	for _, key := range messageAliases {
		if v, ok := payload[key].(string); ok {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
