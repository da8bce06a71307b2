package config

import (
	"fmt"
	"strings"
)

// ConfigError reports every problem found in one config file at once.
type ConfigError struct {
	Path    string
	Missing []string // unresolved ${NAME} references, "NAME: message" for ${NAME:?message}
	Errors  []string // validation failures as "field: problem"
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var b strings.Builder
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "missing environment variables: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Errors) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("validation failed")
		if e.Path != "" {
			fmt.Fprintf(&b, " in %s", e.Path)
		}
		b.WriteByte(':')
		for _, msg := range e.Errors {
			fmt.Fprintf(&b, "\n  - %s", msg)
		}
	}
	return b.String()
}

// HasErrors reports whether anything went wrong.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}

// FieldErrors returns the validation messages for one dotted field name,
// such as "review.batch_size".
func (e *ConfigError) FieldErrors(field string) []string {
	var out []string
	for _, msg := range e.Errors {
		if rest, ok := strings.CutPrefix(msg, field+":"); ok {
			out = append(out, strings.TrimSpace(rest))
		}
	}
	return out
}
