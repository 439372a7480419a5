package driven

import "context"

// ChatService provides text completion for the chat boundary.
// This is an optional service - when nil, the ask command is disabled.
// It is a narrow interface so a different provider can be substituted
// without touching ingestion logic.
type ChatService interface {
	// Chat conducts a multi-turn conversation and returns the assistant
	// reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the model identifier.
	ModelName() string

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
