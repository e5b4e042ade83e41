package assembly

import (
	"fmt"
	"strconv"
	"strings"
)

// Identity returns the text unchanged. It is the default converter.
func Identity(text string) (any, error) { return text, nil }

// ToInt parses the text as a base-10 integer.
func ToInt(text string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("assembly: not an integer: %q", text)
	}
	return n, nil
}

// ToFloat parses the text as a decimal number.
func ToFloat(text string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nil, fmt.Errorf("assembly: not a number: %q", text)
	}
	return f, nil
}

// ToBool accepts the remote API's boolean spellings: "1"/"0" and
// "true"/"false", case-insensitively.
func ToBool(text string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return nil, fmt.Errorf("assembly: not a boolean: %q", text)
}

// Split returns a converter that breaks delimiter-joined list text into its
// elements, trimming whitespace and dropping empty entries.
func Split(sep string) Converter {
	return func(text string) (any, error) {
		parts := strings.Split(text, sep)
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	}
}
