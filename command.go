package subst

import (
	"context"
	"encoding/json"
	"strconv"
)

// Input names the parts of one placeholder handed to a command handler.
// Field and Default are empty when the placeholder has no selector or
// fallback.
type Input struct {
	// Command is the identifier the handler was registered under.
	Command string

	// Path is the command's argument: an environment variable name, a
	// shell command line, a secret path, and so on.
	Path string

	// Field selects a sub-value from a structured result.
	Field string

	// Default is the literal fallback text substituted when resolution
	// yields no value.
	Default string
}

// Command is the capability implemented by every value provider. Process
// resolves a path to a string.
//
// A returned error never escapes the engine: the dispatch path logs it and
// substitutes the placeholder's default value, or the empty string. Calls
// into one handler instance are serialized; distinct handlers may run
// concurrently with each other. Process may block (subprocess, network
// round trip); the engine enforces no timeout, so handlers are responsible
// for bounding their own latency via the passed context.
type Command interface {
	Process(ctx context.Context, in Input) (string, error)
}

// Fetcher is an optional capability for providers whose backing value is a
// structured entry that can be referenced by several field selectors under
// one path, such as a multi-field secret. The engine fetches the entry at
// most once per (command, path) within a single Interpolate call and
// projects fields locally per match.
type Fetcher interface {
	Command

	Fetch(ctx context.Context, in Input) (*Entry, error)
}

// Entry is the fetched form of a structured value.
type Entry struct {
	// Value is the scalar form of the entry, used when the placeholder has
	// no field selector. Valid only when Scalar is true; purely structured
	// entries (a Vault secret, say) have none.
	Value  string
	Scalar bool

	// Data holds the structured fields, when the entry has any.
	Data map[string]interface{}
}

// Project returns the string form of the named field, or the scalar value
// when field is empty. The second return is false when the entry cannot
// supply the requested value, in which case the placeholder degrades to
// its default.
func (e *Entry) Project(field string) (string, bool) {
	if field == "" {
		return e.Value, e.Scalar
	}
	if e.Data == nil {
		return "", false
	}
	v, ok := e.Data[field]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}
