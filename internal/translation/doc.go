// Package translation provides the translation providers used for JSON
// leaves: OpenAI and Gemini chat models and translator functions deployed on
// AWS Lambda. Providers can be wrapped with a circuit breaker and combined
// with a fallback.
package translation
