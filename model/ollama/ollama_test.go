package ollama

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"github.com/conduitml/conduit/model"
)

func newTestAdapter(opts model.Options) *Adapter {
	return New(Config{Model: "llama3.2", Options: opts}, zerolog.Nop())
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestFormatMessagesRoles(t *testing.T) {
	adapter := newTestAdapter(model.Options{})

	msgs := adapter.formatMessages([]model.Message{
		model.NewTextMessage(model.RoleSystem, "You are helpful."),
		model.NewTextMessage(model.RoleUser, "hi"),
		model.NewTextMessage(model.RoleAssistant, "hello"),
		model.NewToolResultMessage("call_1", "42"),
	})

	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	roles := []string{"system", "user", "assistant", "tool"}
	for i, want := range roles {
		if msgs[i].Role != want {
			t.Errorf("message %d: expected role %q, got %q", i, want, msgs[i].Role)
		}
	}
}

func TestFormatMessagesJSONHint(t *testing.T) {
	adapter := newTestAdapter(model.Options{
		ResponseFormat: &model.ResponseFormat{Type: "json_object"},
	})

	msgs := adapter.formatMessages([]model.Message{
		model.NewTextMessage(model.RoleSystem, "You are helpful."),
		model.NewTextMessage(model.RoleUser, "hi"),
	})

	if !strings.HasSuffix(msgs[0].Content, jsonOutputHint) {
		t.Errorf("expected JSON hint on system message, got %q", msgs[0].Content)
	}
	if strings.Contains(msgs[1].Content, jsonOutputHint) {
		t.Errorf("hint must not leak onto user messages: %q", msgs[1].Content)
	}

	// A system message already carrying the hint is left alone.
	msgs = adapter.formatMessages([]model.Message{
		model.NewTextMessage(model.RoleSystem, "You are helpful."+jsonOutputHint),
	})
	if strings.Count(msgs[0].Content, jsonOutputHint) != 1 {
		t.Errorf("hint duplicated: %q", msgs[0].Content)
	}
}

func TestFormatMessageToolCalls(t *testing.T) {
	adapter := newTestAdapter(model.Options{})

	out := adapter.formatMessage(model.Message{
		Role: model.RoleAssistant,
		ToolCalls: []model.ToolCall{{
			ID:   "call_1",
			Type: "function",
			Function: model.FunctionCall{
				Name:      "get_weather",
				Arguments: `{"city":"Paris"}`,
			},
		}},
	})

	if len(out.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(out.ToolCalls))
	}
	tc := out.ToolCalls[0]
	if tc.Function.Name != "get_weather" {
		t.Errorf("unexpected tool name %q", tc.Function.Name)
	}
	if tc.Function.Arguments["city"] != "Paris" {
		t.Errorf("unexpected arguments: %v", tc.Function.Arguments)
	}
}

func TestBuildRequestOptions(t *testing.T) {
	adapter := newTestAdapter(model.Options{
		Temperature: floatPtr(0.2),
		MaxTokens:   intPtr(256),
		Stop:        []string{"END"},
	})

	req := adapter.buildRequest([]model.Message{model.NewTextMessage(model.RoleUser, "hi")}, false)

	if req.Model != "llama3.2" {
		t.Errorf("unexpected model %q", req.Model)
	}
	if req.Stream == nil || *req.Stream {
		t.Error("expected streaming disabled")
	}
	if req.Options["temperature"] != 0.2 {
		t.Errorf("unexpected temperature: %v", req.Options["temperature"])
	}
	if req.Options["num_predict"] != 256 {
		t.Errorf("unexpected num_predict: %v", req.Options["num_predict"])
	}
	if _, ok := req.Options["top_p"]; ok {
		t.Error("unset options must not be transmitted")
	}
}

func TestParseResponse(t *testing.T) {
	adapter := newTestAdapter(model.Options{})

	resp := adapter.parseResponse(&api.ChatResponse{
		Message: api.Message{
			Role:    "assistant",
			Content: "Checking.",
			ToolCalls: []api.ToolCall{{
				Function: api.ToolCallFunction{
					Name:      "get_weather",
					Arguments: api.ToolCallFunctionArguments{"city": "Paris"},
				},
			}},
		},
		Done: true,
		Metrics: api.Metrics{
			PromptEvalCount:    20,
			EvalCount:          8,
			TotalDuration:      2 * time.Second,
			EvalDuration:       1 * time.Second,
			PromptEvalDuration: 500 * time.Millisecond,
			LoadDuration:       100 * time.Millisecond,
		},
	})

	if resp.Content != "Checking." {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	tc := resp.ToolCalls[0]
	if tc.ID == "" {
		t.Error("expected a synthesized tool call id")
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
		t.Fatalf("arguments must be valid JSON: %v", err)
	}
	if args["city"] != "Paris" {
		t.Errorf("unexpected arguments: %v", args)
	}

	if resp.Usage == nil {
		t.Fatal("expected usage on final response")
	}
	if resp.Usage.InputTokens != 20 || resp.Usage.OutputTokens != 8 || resp.Usage.TotalTokens != 28 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
	if resp.Usage.AdditionalMetrics["total_duration"] != 2*time.Second {
		t.Errorf("expected timing counters in metrics bag, got %v", resp.Usage.AdditionalMetrics)
	}
}

func TestConvertResponseStreamChunks(t *testing.T) {
	s := &chatStream{logger: zerolog.Nop()}
	toolIndex := 0

	chunks := s.convertResponse(&api.ChatResponse{
		Message: api.Message{
			Role:    "assistant",
			Content: "Looking that up.",
			ToolCalls: []api.ToolCall{{
				Function: api.ToolCallFunction{
					Name:      "get_weather",
					Arguments: api.ToolCallFunctionArguments{"city": "Paris"},
				},
			}},
		},
	}, &toolIndex)

	if len(chunks) != 2 {
		t.Fatalf("expected content + tool fragment chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "Looking that up." {
		t.Errorf("unexpected content chunk: %+v", chunks[0])
	}
	frags := chunks[1].ToolCallFragments
	if len(frags) != 1 || frags[0].Name != "get_weather" || frags[0].Index != 0 {
		t.Errorf("unexpected fragments: %+v", frags)
	}

	merged := model.MergeToolCallFragments(nil, frags)
	if len(merged) != 1 || merged[0].Function.Name != "get_weather" {
		t.Errorf("fragments must reassemble into a complete call: %+v", merged)
	}

	// Final payload carries usage only.
	final := s.convertResponse(&api.ChatResponse{Done: true, Metrics: api.Metrics{PromptEvalCount: 5, EvalCount: 2}}, &toolIndex)
	if len(final) != 1 || final[0].Usage == nil {
		t.Fatalf("expected a single usage chunk, got %+v", final)
	}
	if final[0].Usage.TotalTokens != 7 {
		t.Errorf("unexpected usage total: %+v", final[0].Usage)
	}
}
