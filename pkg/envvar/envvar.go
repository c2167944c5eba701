// Package envvar reads typed overrides from environment variables into
// configuration fields. An empty variable name or an unset variable leaves
// the destination untouched, and unparseable values are ignored so that
// validation reports the effective value instead.
package envvar

import (
	"os"
	"strconv"
	"strings"
)

// Lookup returns the value of name when both the name and the value are non-empty.
func Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}

func String(dst *string, name string) {
	if v, ok := Lookup(name); ok {
		*dst = v
	}
}

func Int(dst *int, name string) {
	if v, ok := Lookup(name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func Float(dst *float64, name string) {
	if v, ok := Lookup(name); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func Bool(dst *bool, name string) {
	if v, ok := Lookup(name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// List splits a comma-separated value, trimming whitespace and dropping empty items.
func List(dst *[]string, name string) {
	v, ok := Lookup(name)
	if !ok {
		return
	}
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}
