// Package openai implements the ai interfaces against OpenAI-compatible
// APIs via langchaingo. It works with the hosted OpenAI service as well as
// local servers speaking the same protocol (Ollama, LocalAI, vLLM).
package openai
