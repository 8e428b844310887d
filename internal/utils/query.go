package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ParseQueryList reads a list param given either repeated or comma separated,
// dropping blanks.
//
//	?type=a,b        → ["a","b"]
//	?type=a&type=b   → ["a","b"]
func ParseQueryList(q map[string][]string, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ParseUUIDList is ParseQueryList for id params. The first malformed id is
// reported.
func ParseUUIDList(q map[string][]string, key string) ([]uuid.UUID, error) {
	raw := ParseQueryList(q, key)
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", key, s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
