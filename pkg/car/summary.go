package car

import (
	"encoding/json"
	"strconv"
	"unicode/utf16"

	"github.com/intelexta/carcheck/pkg/canonicalize"
)

// Summary is the short description printed for a record that passes.
type Summary struct {
	ID           any
	RunID        any
	MatchKind    any
	HasMatchKind bool
	Checkpoints  int
}

// Summarize extracts the identifying fields of doc. Missing fields stay nil.
func Summarize(doc any) Summary {
	obj, _ := doc.(map[string]any)

	s := Summary{
		ID:    obj["id"],
		RunID: obj["run_id"],
	}
	if proof, ok := obj["proof"].(map[string]any); ok {
		s.MatchKind, s.HasMatchKind = proof["match_kind"]
	}
	switch cps := obj["checkpoints"].(type) {
	case []any:
		s.Checkpoints = len(cps)
	case string:
		// A string counts its UTF-16 length, as JavaScript producers report it.
		s.Checkpoints = len(utf16.Encode([]rune(cps)))
	}
	return s
}

// Display renders a summary value for terminal output.
// Strings and numbers print as written, null prints as "null", and objects
// or arrays print as canonical JSON.
func Display(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	}
	b, err := canonicalize.JCS(v)
	if err != nil {
		return "<unprintable>"
	}
	return string(b)
}
