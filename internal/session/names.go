package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoNames is returned when the input lists no section names.
var ErrNoNames = errors.New("no section names found")

var lineBreak = regexp.MustCompile(`\r?\n`)

// ParseNames accepts either a JSON array of strings or one name per line.
// Blank entries are dropped.
func ParseNames(input string) ([]string, error) {
	trimmed := strings.TrimSpace(input)
	var raw []string
	if strings.HasPrefix(trimmed, "[") {
		var values []interface{}
		if err := json.Unmarshal([]byte(trimmed), &values); err != nil {
			return nil, fmt.Errorf("invalid section names: %w", err)
		}
		for i, v := range values {
			name, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("invalid section names: entry %d is not a string", i+1)
			}
			raw = append(raw, name)
		}
	} else {
		raw = lineBreak.Split(trimmed, -1)
	}

	names := make([]string, 0, len(raw))
	for _, name := range raw {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, ErrNoNames
	}
	return names, nil
}
