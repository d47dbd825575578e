// Package registry implements the provider registry shared by the LLM,
// embedding and data families.
//
// A Registry maps a normalized key (lowercased, trimmed) to a constructor.
// Registration builds one trial product and rejects products that do not
// satisfy the family interface, so a bad provider fails at Register time and
// never becomes visible through List. Resolution reads the family selector
// from a ProviderConfig, falls back to the family default key when the
// selector is blank, and builds a fresh instance on every call.
package registry
