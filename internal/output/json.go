package output

import (
	"encoding/json"
)

// ToJSON marshals v with two-space indentation.
func ToJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
