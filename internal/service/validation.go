package service

import "strings"

const (
	msgBlank          = "can't be blank"
	msgAmountPositive = "must be greater than 0"
)

// requirePresence appends a presence violation for the field when the value
// is blank (empty or whitespace-only), collecting every violation so the
// caller can report them all at once.
func requirePresence(fields map[string][]string, field, value string) map[string][]string {
	if strings.TrimSpace(value) == "" {
		if fields == nil {
			fields = make(map[string][]string, 1)
		}
		fields[field] = append(fields[field], msgBlank)
	}
	return fields
}
