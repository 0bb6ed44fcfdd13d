package model

// ModelResponse is the canonical normalized response shape. Adapters construct
// one per complete response or per streamed chunk; it is never persisted.
type ModelResponse struct {
	Role    string
	Content string

	// ToolCalls holds fully normalized tool calls (complete-response path).
	ToolCalls []ToolCall

	// ToolCallFragments holds raw streamed fragments (delta path). Reassembly
	// into ToolCalls is the consumer's responsibility via
	// MergeToolCallFragments.
	ToolCallFragments []ToolCallFragment

	Usage *Usage
}

// Usage holds normalized token accounting plus a provider-specific metrics
// bag (e.g. Ollama eval/load durations, Anthropic cache token counts).
type Usage struct {
	InputTokens       int
	OutputTokens      int
	TotalTokens       int
	AdditionalMetrics map[string]any
}

// NewUsage builds a Usage from provider token counts. A provider-supplied
// total is preferred; when the provider reports none, the total is the sum of
// input and output.
func NewUsage(inputTokens, outputTokens, totalTokens int) *Usage {
	if totalTokens == 0 {
		totalTokens = inputTokens + outputTokens
	}
	return &Usage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  totalTokens,
	}
}
