// Package llm provides the text generation clients used by the metadata
// stage.
//
// Two providers are supported and selected by llm.provider:
//   - OpenRouter chat completions (Client)
//   - Google Gemini generateContent (GeminiClient)
//
// Both expose Generate(ctx, systemPrompt, userPrompt) and return the
// trimmed text of the first candidate. Each call is a single HTTP request;
// callers wrap it in a retry.Policy. Errors carry services markers:
// HTTP 408/429/5xx and transport failures are ErrTransient, other HTTP
// failures ErrExternalTool, and a response without text ErrEmptyResult.
//
// DecodeLLMJSON and StripCodeFence tolerate the formatting quirks models add
// around JSON payloads (code fences, leading prose).
package llm
