package model

import (
	"encoding/json"

	"github.com/conduitml/conduit/media"
)

// Role represents the role of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a single provider-neutral message in a conversation.
// It is owned by the caller and read-only to adapters.
type Message struct {
	Role       Role
	Content    string
	Name       string
	ToolCallID string
	ToolCalls  []ToolCall

	// Media attachments. Adapters that do not support a given kind log a
	// warning and drop it.
	Images []media.Image
	Audio  []media.Audio
	Videos []media.Video
}

// ToolDefinition describes a tool the model may call, in JSON-schema form.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition is the function portion of a tool definition.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ResponseFormat requests a particular output shape from the model.
// Type "json_object" asks for JSON mode; adapters that require an explicit
// prompt hint append it to the system message.
type ResponseFormat struct {
	Type string `json:"type"`
}

// Options is the recognized per-request parameter set. Every field is
// optional; adapters transmit only the ones that are set.
type Options struct {
	Temperature      *float64
	TopP             *float64
	MaxTokens        *int
	Stop             []string
	Seed             *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
	User             string
	ResponseFormat   *ResponseFormat
	Tools            []ToolDefinition
	ToolChoice       any
}

// JSONMode reports whether a JSON object response format was requested.
func (o *Options) JSONMode() bool {
	return o != nil && o.ResponseFormat != nil && o.ResponseFormat.Type == "json_object"
}

// NewTextMessage creates a message with plain text content.
func NewTextMessage(role Role, text string) Message {
	return Message{Role: role, Content: text}
}

// NewToolResultMessage creates a tool-role message carrying a tool's output.
func NewToolResultMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, ToolCallID: toolCallID, Content: content}
}

// ToJSON marshals a message to JSON for debugging/logging purposes.
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
