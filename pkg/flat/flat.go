// Package flat defines the flat key/value record that nested form data is
// exported to, plus the string conventions shared by every form codec:
// booleans as "Yes"/"No" and list fields joined with "; ".
package flat

import "strings"

// ListSeparator joins multi-value fields into a single flat value. The join
// is lossy if an individual item itself contains "; "; known limitation.
const ListSeparator = "; "

// Record is a single-level string-to-string view of an entire form. Key
// order is irrelevant for correctness; it only affects CSV column order.
type Record map[string]string

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the value for key, or "" when absent.
func (r Record) Get(key string) string {
	return r[key]
}

// Has reports whether key is present with a non-empty value after trimming.
func (r Record) Has(key string) bool {
	return strings.TrimSpace(r[key]) != ""
}

// FormatBool serialises a checkbox state as the literal "Yes" or "No",
// never "true"/"false".
func FormatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// ParseBool accepts exactly "Yes" as true; anything else, including an
// absent value, is false.
func ParseBool(s string) bool {
	return s == "Yes"
}

// JoinList serialises a multi-value field with ListSeparator.
func JoinList(items []string) string {
	return strings.Join(items, ListSeparator)
}

// SplitList is the inverse of JoinList, dropping empty segments.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ListSeparator) {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}
