package model

// ToolCall is a complete tool invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall is the function portion of a tool call. Arguments is a
// JSON-encoded string; once all fragments for a call are merged it forms a
// complete JSON object (a provider-side guarantee, not verified here).
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCallFragment is a partial tool-call payload within one streamed delta.
// Fragments for the same logical call share an Index and must be merged in
// arrival order.
type ToolCallFragment struct {
	Index     int
	ID        string
	Type      string
	Name      string
	Arguments string
}

// MergeToolCallFragments folds streamed fragments into the growing list of
// tool calls. The list is the only state: callers thread the returned slice
// back in for each batch of fragments.
//
// The list grows with placeholder entries when a fragment's index exceeds the
// current length. The first fragment seen for an index initializes the entry;
// later fragments concatenate Name and Arguments text and overwrite ID/Type
// only when the fragment supplies a non-empty value.
func MergeToolCallFragments(calls []ToolCall, fragments []ToolCallFragment) []ToolCall {
	for _, frag := range fragments {
		if frag.Index < 0 {
			continue
		}
		for len(calls) <= frag.Index {
			calls = append(calls, ToolCall{})
		}

		entry := &calls[frag.Index]
		if isEmptyToolCall(*entry) {
			entry.ID = frag.ID
			entry.Type = frag.Type
			entry.Function = FunctionCall{Name: frag.Name, Arguments: frag.Arguments}
			continue
		}

		if frag.Name != "" {
			entry.Function.Name += frag.Name
		}
		if frag.Arguments != "" {
			entry.Function.Arguments += frag.Arguments
		}
		if frag.ID != "" {
			entry.ID = frag.ID
		}
		if frag.Type != "" {
			entry.Type = frag.Type
		}
	}
	return calls
}

func isEmptyToolCall(tc ToolCall) bool {
	return tc.ID == "" && tc.Type == "" && tc.Function.Name == "" && tc.Function.Arguments == ""
}
