package errors

import (
	"errors"
)

var (
	// General Errors
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrUnsupportedFile   = errors.New("unsupported file format")
	ErrPathNotAccessible = errors.New("path is not accessible")

	// Compression Errors
	ErrCompressionFailed       = errors.New("compression failed")
	ErrUnsupportedCompression  = errors.New("unsupported compression format")
	ErrInvalidArchive          = errors.New("archive file is corrupted or unsupported")
	ErrInsufficientPermissions = errors.New("insufficient permissions to access or modify required files")
	ErrUnsafeArchivePath       = errors.New("archive entry escapes destination directory")

	// Extraction Errors
	ErrExtractionFailed = errors.New("extraction failed")

	// File & Directory Errors
	ErrFileNotFound   = errors.New("file not found")
	ErrFileReadError  = errors.New("error reading file")
	ErrFileWriteError = errors.New("error writing to file")

	// Network Errors
	ErrInvalidURL       = errors.New("invalid URL")
	ErrDownloadFailed   = errors.New("download failed")
	ErrHTTPStatusFailed = errors.New("unexpected HTTP status")

	// Hash Errors
	ErrChecksumFailed = errors.New("checksum mismatch")

	// Property list and JSON Errors
	ErrKeyNotFound = errors.New("key not found")

	// VirusTotal API Errors
	ErrAPIKeyMissing         = errors.New("API key is required")
	ErrAPICommunicationError = errors.New("error communicating with VirusTotal API")
	ErrScanNotFound          = errors.New("scan result not found")

	// Workflow Errors
	ErrUnknownStepType  = errors.New("unknown step type")
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidWorkflow  = errors.New("invalid workflow definition")
	ErrAssertionFailed  = errors.New("assertion failed")
)
