// Package plistutil reads and writes property list files for workflow steps
package plistutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-interactor/internal/common/errors"
	"github.com/deploymenttheory/go-interactor/internal/common/fsutil"
	"howett.net/plist"
)

// Format represents the plist format
type Format int

const (
	// FormatXML is the XML plist format
	FormatXML Format = iota
	// FormatBinary is the binary plist format
	FormatBinary
	// FormatOpenStep is the OpenStep plist format
	FormatOpenStep
)

// ReadPlist reads a property list file and returns its contents as a map.
// The encoding is detected from the file contents.
func ReadPlist(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("%w: %s", errors.ErrPathNotAccessible, path)
	}

	var result map[string]interface{}
	if err := plist.NewDecoder(bytes.NewReader(data)).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, err.Error())
	}

	return result, nil
}

// WritePlist writes data to a property list file in the specified format
func WritePlist(path string, data map[string]interface{}, format Format) error {
	if err := fsutil.CreateDirIfNotExists(filepath.Dir(path)); err != nil {
		return fmt.Errorf("%w: failed to create directory", errors.ErrPathNotAccessible)
	}

	file, err := os.Create(path)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", errors.ErrPermissionDenied, path)
		}
		return fmt.Errorf("%w: %s", errors.ErrFileWriteError, path)
	}
	defer file.Close()

	var encoder *plist.Encoder
	switch format {
	case FormatBinary:
		encoder = plist.NewEncoderForFormat(file, plist.BinaryFormat)
	case FormatOpenStep:
		encoder = plist.NewEncoderForFormat(file, plist.OpenStepFormat)
	default:
		encoder = plist.NewEncoderForFormat(file, plist.XMLFormat)
	}

	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
	}

	return nil
}

// GetValue retrieves a value from the plist using a dot-notation path
func GetValue(data map[string]interface{}, path string) (interface{}, bool) {
	keys := strings.Split(path, ".")
	current := data

	for i, key := range keys {
		val, ok := current[key]
		if !ok {
			return nil, false
		}
		if i == len(keys)-1 {
			return val, true
		}

		// A non-map before the last key makes the path invalid
		next, ok := val.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = next
	}

	return nil, false
}

// LookupValue reads the plist at path and returns the value under key
func LookupValue(path, key string) (interface{}, error) {
	data, err := ReadPlist(path)
	if err != nil {
		return nil, err
	}

	val, ok := GetValue(data, key)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", errors.ErrKeyNotFound, key, path)
	}
	return val, nil
}
