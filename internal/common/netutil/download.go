// Package netutil downloads workflow inputs over HTTP
package netutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/deploymenttheory/go-interactor/internal/common/cryptoutil"
	"github.com/deploymenttheory/go-interactor/internal/common/errors"
	"github.com/deploymenttheory/go-interactor/internal/common/fsutil"
	"github.com/deploymenttheory/go-interactor/internal/logger"
)

// Default values for download options
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

const userAgent = "go-interactor/1.0"

// DownloadOptions represents options for downloading files
type DownloadOptions struct {
	// Output file path (if empty, the filename from the URL in the working directory)
	OutputPath string

	// Per-attempt HTTP timeout
	Timeout time.Duration

	// Expected checksum, optionally prefixed with its algorithm ("sha256:...")
	ExpectedChecksum string

	// HTTP headers to send with the request
	Headers map[string]string

	// Retries after the first attempt; only transport errors and 5xx are retried
	MaxRetries int
	RetryDelay time.Duration

	// Client overrides the default HTTP client
	Client *http.Client
}

// DefaultDownloadOptions returns a DownloadOptions with sensible defaults
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

// DownloadFile downloads sourceURL and returns the path it was written to.
// A partial or mismatching file is removed before returning an error.
func DownloadFile(ctx context.Context, sourceURL string, options DownloadOptions) (string, error) {
	if err := ValidateURL(sourceURL); err != nil {
		return "", err
	}

	outputPath := options.OutputPath
	if outputPath == "" {
		name, err := GetFilenameFromURL(sourceURL)
		if err != nil {
			return "", err
		}
		outputPath = name
	}

	expected, algorithm := cryptoutil.ParseHashWithAlgorithm(options.ExpectedChecksum)
	if algorithm == "" {
		algorithm = cryptoutil.SHA256
	}
	hasher, err := cryptoutil.NewHasher(algorithm)
	if err != nil {
		return "", err
	}

	resp, err := fetch(ctx, sourceURL, options)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := fsutil.CreateDirIfNotExists(filepath.Dir(outputPath)); err != nil {
		return "", fmt.Errorf("%w: failed to create output directory: %v", errors.ErrFileWriteError, err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrFileWriteError, err)
	}

	sum := hasher.New()
	_, copyErr := io.Copy(io.MultiWriter(out, sum), resp.Body)
	closeErr := out.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("%w: %v", errors.ErrFileWriteError, copyErr)
	}

	if expected != "" {
		actual := fmt.Sprintf("%x", sum.Sum(nil))
		if !strings.EqualFold(actual, expected) {
			os.Remove(outputPath)
			return "", fmt.Errorf("%w: expected %s, got %s", errors.ErrChecksumFailed, expected, actual)
		}
	}

	logger.LogInfo("Download completed successfully", map[string]interface{}{
		"url":  sourceURL,
		"path": outputPath,
	})
	return outputPath, nil
}

// fetch issues the GET request, retrying transport errors and server errors
func fetch(ctx context.Context, sourceURL string, options DownloadOptions) (*http.Response, error) {
	client := options.Client
	if client == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	var lastErr error
	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.LogInfo(fmt.Sprintf("Retrying download (attempt %d/%d)", attempt, options.MaxRetries), map[string]interface{}{
				"url":   sourceURL,
				"error": lastErr.Error(),
			})
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(options.RetryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidURL, err)
		}
		for key, value := range options.Headers {
			req.Header.Set(key, value)
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", userAgent)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", errors.ErrDownloadFailed, err)
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: HTTP status %d", errors.ErrHTTPStatusFailed, resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: HTTP status %d", errors.ErrHTTPStatusFailed, resp.StatusCode)
		}
		return resp, nil
	}

	return nil, lastErr
}

// ValidateURL checks that rawURL is an absolute http or https URL
func ValidateURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidURL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme '%s'", errors.ErrInvalidURL, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%w: missing host", errors.ErrInvalidURL)
	}

	return nil
}

// GetFilenameFromURL extracts the last path segment of a URL
func GetFilenameFromURL(rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidURL, err)
	}

	filename := path.Base(parsedURL.Path)
	if filename == "" || filename == "." || filename == "/" {
		return "", fmt.Errorf("%w: could not determine filename from URL", errors.ErrInvalidURL)
	}

	return filename, nil
}
