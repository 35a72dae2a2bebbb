// Package jsonutil reads values from JSON documents and writes run reports
package jsonutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-interactor/internal/common/errors"
	"github.com/deploymenttheory/go-interactor/internal/common/fsutil"
)

// ReadJSONFile reads a JSON file and unmarshals its contents into a map
func ReadJSONFile(path string) (map[string]interface{}, error) {
	if !fsutil.FileExists(path) {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, err.Error())
	}

	return result, nil
}

// WriteJSONFile writes a map to a JSON file with indentation, creating the
// parent directory when needed
func WriteJSONFile(path string, data map[string]interface{}) error {
	if err := fsutil.CreateDirIfNotExists(filepath.Dir(path)); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
	}

	if err := os.WriteFile(path, append(jsonData, '\n'), 0644); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
	}
	return nil
}

// GetValue retrieves a value from JSON using a dot-notation path
func GetValue(data map[string]interface{}, path string) (interface{}, bool) {
	keys := strings.Split(path, ".")
	current := data

	for i, key := range keys {
		if i == len(keys)-1 {
			val, ok := current[key]
			return val, ok
		}

		next, ok := current[key].(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// LookupValue reads the JSON file at path and returns the value at key
func LookupValue(path, key string) (interface{}, error) {
	data, err := ReadJSONFile(path)
	if err != nil {
		return nil, err
	}

	value, ok := GetValue(data, key)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", errors.ErrKeyNotFound, key, path)
	}
	return value, nil
}
