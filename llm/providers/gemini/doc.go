// Package gemini adapts the Google Gemini generateContent API to llm.Provider.
// It registers under the "google" key.
package gemini
