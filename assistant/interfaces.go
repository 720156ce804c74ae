package assistant

import "context"

// External collaborator contracts. The orchestrator depends only on these
// interfaces; the LLM-backed implementations live in assistant/llm and the
// preference store in store.

// IntentResolver maps raw message text to a list of use case ids.
// Implementations filter the result against the catalog so that only
// registered ids survive.
type IntentResolver interface {
	Resolve(ctx context.Context, message string) ([]UseCaseID, error)
}

// FieldExtractor maps raw message text plus a set of required field names to
// a value list per field. A field the message does not mention maps to a
// single empty string (the needs-filling sentinel).
type FieldExtractor interface {
	Extract(ctx context.Context, message string, fields map[FieldName]struct{}) (map[FieldName][]string, error)
}

// CategoryExtractor maps raw message text plus an enumerated allowed-value
// list to the single best-matching option, or "" when none matches.
//
// The match is case-insensitive substring containment against the free-form
// extraction, so an allowed value that happens to be a substring of an
// unrelated word can match. Known fuzziness, accepted.
type CategoryExtractor interface {
	ExtractCategory(ctx context.Context, message string, allowed []string) (string, error)
}

// ResponseSynthesizer maps the original message and the aggregated dispatch
// results to the final natural-language answer, in the message's language.
type ResponseSynthesizer interface {
	Synthesize(ctx context.Context, message string, data DispatchResult) (string, error)
}

// PreferenceStore is the persisted per-user field value lookup. Each Lookup
// opens and releases its own connection; callers must not assume reuse
// across fields. An empty result means the user has no value for the field.
type PreferenceStore interface {
	LookupPreference(ctx context.Context, field FieldName, username string) ([]string, error)
	ListUsernames(ctx context.Context) ([]string, error)
}
