package botkit

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON decodes command arguments written as a JSON object.
func ParseJSON[T any](src string) (T, error) {
	var args T

	if err := json.Unmarshal([]byte(strings.TrimSpace(src)), &args); err != nil {
		return args, fmt.Errorf("parse command arguments: %w", err)
	}

	return args, nil
}
