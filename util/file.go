package util

import (
	"encoding/json"
	"fmt"
	"os"
)

// EnsureDir creates the directory and all missing parents. It is a no-op
// if the directory already exists.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	return nil
}

// ReadJson reads a JSON document from a file into res
func ReadJson(file string, res interface{}) (interface{}, error) {
	bs, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(bs, res); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}

	return res, nil
}
