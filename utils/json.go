package utils

import (
	"encoding/json"
)

// Marshal generic struct to JSON
func MarshalToJSON[T any](input T) (string, error) {
	jsonData, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

// Unmarshal JSON to generic struct
func UnmarshalFromJSON[T any](data []byte, output *T) error {
	return json.Unmarshal(data, output)
}

// MarshalToRaw is MarshalToJSON for payload fields; a nil input yields nil.
func MarshalToRaw(input any) (json.RawMessage, error) {
	if input == nil {
		return nil, nil
	}
	return json.Marshal(input)
}
