// Package model provides a provider-neutral abstraction layer for Large
// Language Model (LLM) APIs.
//
// This package defines the canonical types, interfaces, and utilities that let
// an agent framework work with multiple LLM providers (Groq, OpenAI, Azure
// OpenAI, LiteLLM, Anthropic, Ollama) without being coupled to any specific
// provider's SDK.
//
// # Core Concepts
//
//  1. Messages: the Message type represents a conversation message with role
//     (system, user, assistant, tool), text content, optional tool calls, and
//     optional media attachments.
//
//  2. Adapter Interface: the Adapter interface provides Invoke() for blocking
//     calls and InvokeStream() for lazy pull-based streaming. Provider
//     packages under model/ implement it against their vendor SDK.
//
//  3. Normalization: adapters map heterogeneous provider responses into one
//     canonical ModelResponse (role, content, tool calls, usage metrics).
//
//  4. Fragment Reassembly: streamed tool calls arrive as partial
//     ToolCallFragment values; MergeToolCallFragments folds them into complete
//     ToolCall entries.
//
//  5. Errors: every provider failure surfaces as a *ProviderError carrying
//     the original message text, the HTTP status when available, and the model
//     name and id.
//
//  6. Middleware: Middleware and StreamMiddleware hooks plus WrapWithMiddleware
//     and WithRetry add cross-cutting concerns without touching adapters.
//
// Usage Example
//
//	adapter, err := groq.New(groq.Config{Model: "llama-3.3-70b-versatile"}, logger)
//	if err != nil { ... }
//
//	resp, err := adapter.Invoke(ctx, []model.Message{
//	    model.NewTextMessage(model.RoleUser, "Hello!"),
//	})
//
// # Extension Points
//
// To add a new provider:
//  1. Implement the Adapter interface against the vendor SDK
//  2. Translate between provider-specific types and model package types
//  3. Translate provider errors into *ProviderError
package model
