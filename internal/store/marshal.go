package store

import "encoding/json"

// marshalScope serializes a claim's ordered glob list for storage.
// nil and empty both serialize to "[]" so global-vs-scoped is
// unambiguous on read (spec.md §3: "Empty/absent means global").
func marshalScope(scope []string) (string, error) {
	if scope == nil {
		scope = []string{}
	}
	b, err := json.Marshal(scope)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalScope parses a stored scope column back into an ordered
// glob list. An empty result is returned as nil, matching the Claim
// zero value for "global scope".
func unmarshalScope(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var scope []string
	if err := json.Unmarshal([]byte(raw), &scope); err != nil {
		return nil, err
	}
	if len(scope) == 0 {
		return nil, nil
	}
	return scope, nil
}
