// Package actions encodes button payloads as colon-delimited strings, e.g.
// "page:films:2". The first segment routes the update, the rest are verb
// arguments.
package actions

import "strings"

const sep = ":"

// Action is a decoded button payload.
type Action struct {
	Verb string
	Args []string
}

// Encode joins a verb and its arguments into a payload string.
func Encode(verb string, args ...string) string {
	if len(args) == 0 {
		return verb
	}
	return verb + sep + strings.Join(args, sep)
}

// Decode parses a payload string. Unknown or empty payloads decode into a
// zero-verb Action rather than failing, so stale buttons can be ignored.
func Decode(data string) Action {
	data = strings.TrimPrefix(data, "\f")
	data = strings.TrimSpace(data)
	if data == "" {
		return Action{}
	}
	parts := strings.Split(data, sep)
	return Action{Verb: parts[0], Args: parts[1:]}
}

// Arg returns the i-th argument or "" when absent.
func (a Action) Arg(i int) string {
	if i < 0 || i >= len(a.Args) {
		return ""
	}
	return a.Args[i]
}

// IsZero reports whether the payload carried no verb.
func (a Action) IsZero() bool {
	return a.Verb == ""
}
