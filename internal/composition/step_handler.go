package composition

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	compression "github.com/deploymenttheory/go-interactor/internal/common/compressionutil"
	"github.com/deploymenttheory/go-interactor/internal/common/cryptoutil"
	"github.com/deploymenttheory/go-interactor/internal/common/errors"
	"github.com/deploymenttheory/go-interactor/internal/common/fsutil"
	"github.com/deploymenttheory/go-interactor/internal/common/jsonutil"
	"github.com/deploymenttheory/go-interactor/internal/common/netutil"
	"github.com/deploymenttheory/go-interactor/internal/common/plistutil"
	"github.com/deploymenttheory/go-interactor/internal/config"
	"github.com/deploymenttheory/go-interactor/internal/scanner"
	"github.com/deploymenttheory/go-interactor/pkg/interactor"
)

// StepHandler executes one workflow step. Its parameters are already rendered;
// the returned map is merged into the context.
type StepHandler func(ctx context.Context, step Step, c *interactor.Context) (map[string]interface{}, error)

// RollbackHandler undoes the side effects of a completed step
type RollbackHandler func(ctx context.Context, step Step) error

var stepHandlers = map[string]StepHandler{
	"set":      handleSetStep,
	"assert":   handleAssertStep,
	"hash":     handleHashStep,
	"compress": handleCompressStep,
	"extract":  handleExtractStep,
	"plist":    handlePlistStep,
	"json":     handleJSONStep,
	"download": handleDownloadStep,
	"scan":     handleScanStep,
	"copy":     handleCopyStep,
	"move":     handleMoveStep,
	"delete":   handleDeleteStep,
}

var rollbackHandlers = map[string]RollbackHandler{
	"compress": rollbackCreatedFile("destination"),
	"download": rollbackCreatedFile("destination"),
	"copy":     rollbackCreatedFile("destination"),
	"move":     rollbackMove,
}

// newScanner builds the scanner used by scan steps
var newScanner = func() (scanner.Scanner, error) {
	return scanner.NewClient(config.Instance.Scanner.APIKey)
}

func handleSetStep(_ context.Context, step Step, _ *interactor.Context) (map[string]interface{}, error) {
	return step.Parameters, nil
}

func handleAssertStep(_ context.Context, step Step, c *interactor.Context) (map[string]interface{}, error) {
	if isTruthy(step.param("expect")) {
		return nil, nil
	}

	message := step.paramOr("message", fmt.Sprintf("step %s", step.Name))
	return nil, c.FailWith(fmt.Errorf("%w: %s", errors.ErrAssertionFailed, message))
}

func handleHashStep(_ context.Context, step Step, _ *interactor.Context) (map[string]interface{}, error) {
	algorithm := cryptoutil.HashAlgorithm(step.paramOr("algorithm", string(cryptoutil.SHA256)))
	expected := step.param("expected")
	if parsed, prefixed := cryptoutil.ParseHashWithAlgorithm(expected); prefixed != "" {
		expected, algorithm = parsed, prefixed
	}

	hasher, err := cryptoutil.NewHasher(algorithm)
	if err != nil {
		return nil, err
	}

	sum, err := hasher.HashFile(step.param("input"))
	if err != nil {
		return nil, err
	}

	if expected != "" {
		ok, err := hasher.VerifyFile(step.param("input"), expected)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s has %s %s, expected %s", errors.ErrChecksumFailed, step.param("input"), algorithm, sum, expected)
		}
	}

	return map[string]interface{}{step.outputKey(): sum}, nil
}

func handleCompressStep(_ context.Context, step Step, _ *interactor.Context) (map[string]interface{}, error) {
	src, dst := step.param("source"), step.param("destination")
	if _, err := os.Stat(src); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, src)
	}

	if err := compression.Compress(step.param("format"), src, dst); err != nil {
		return nil, err
	}

	return map[string]interface{}{step.outputKey(): dst}, nil
}

func handleExtractStep(_ context.Context, step Step, _ *interactor.Context) (map[string]interface{}, error) {
	src, dst := step.param("source"), step.param("destination")
	format := step.paramOr("format", compression.FormatAuto)

	// Single-file formats write to dst itself; archives unpack into it
	if format == compression.FormatAuto {
		detected, err := compression.DetectArchiveFormat(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidArchive, err)
		}
		format = detected
	}

	if format == compression.FormatZIP || format == compression.FormatTAR {
		if err := fsutil.CreateDirIfNotExists(dst); err != nil {
			return nil, err
		}
		if !fsutil.IsWritable(dst) {
			return nil, fmt.Errorf("%w: %s", errors.ErrInsufficientPermissions, dst)
		}
	}

	if err := compression.Extract(format, src, dst); err != nil {
		return nil, err
	}

	return map[string]interface{}{step.outputKey(): dst}, nil
}

func handlePlistStep(_ context.Context, step Step, _ *interactor.Context) (map[string]interface{}, error) {
	value, err := plistutil.LookupValue(step.param("input"), step.param("key"))
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{step.outputKey(): value}, nil
}

func handleJSONStep(_ context.Context, step Step, _ *interactor.Context) (map[string]interface{}, error) {
	value, err := jsonutil.LookupValue(step.param("input"), step.param("key"))
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{step.outputKey(): value}, nil
}

func handleDownloadStep(ctx context.Context, step Step, _ *interactor.Context) (map[string]interface{}, error) {
	options := netutil.DefaultDownloadOptions()
	options.OutputPath = step.param("destination")
	options.ExpectedChecksum = step.param("expected")

	if raw := step.param("retries"); raw != "" {
		retries, err := strconv.Atoi(raw)
		if err != nil || retries < 0 {
			return nil, fmt.Errorf("%w: retries must be a non-negative integer, got %q", errors.ErrInvalidArgument, raw)
		}
		options.MaxRetries = retries
	}
	if raw := step.param("timeout"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: timeout: %v", errors.ErrInvalidArgument, err)
		}
		options.Timeout = timeout
	}

	path, err := netutil.DownloadFile(ctx, step.param("url"), options)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{step.outputKey(): path}, nil
}

func handleScanStep(_ context.Context, step Step, _ *interactor.Context) (map[string]interface{}, error) {
	sum, err := cryptoutil.CalculateFileChecksum(step.param("input"), cryptoutil.SHA256)
	if err != nil {
		return nil, err
	}

	s, err := newScanner()
	if err != nil {
		return nil, err
	}

	report, err := s.LookupHash(sum)
	if err != nil {
		return nil, err
	}

	failOnDetection := true
	if raw := step.param("fail_on_detection"); raw != "" {
		if failOnDetection, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("%w: fail_on_detection: %v", errors.ErrInvalidArgument, err)
		}
	}

	if failOnDetection && !report.Clean() {
		return nil, fmt.Errorf("%s flagged by %d engines", step.param("input"), report.Malicious+report.Suspicious)
	}

	return map[string]interface{}{
		step.outputKey(): map[string]interface{}{
			"sha256":     report.Hash,
			"malicious":  report.Malicious,
			"suspicious": report.Suspicious,
			"clean":      report.Clean(),
		},
	}, nil
}

func handleCopyStep(_ context.Context, step Step, _ *interactor.Context) (map[string]interface{}, error) {
	if err := fsutil.CopyFile(step.param("source"), step.param("destination")); err != nil {
		return nil, err
	}
	return map[string]interface{}{step.outputKey(): step.param("destination")}, nil
}

func handleMoveStep(_ context.Context, step Step, _ *interactor.Context) (map[string]interface{}, error) {
	if err := fsutil.MoveFile(step.param("source"), step.param("destination")); err != nil {
		return nil, err
	}
	return map[string]interface{}{step.outputKey(): step.param("destination")}, nil
}

func handleDeleteStep(_ context.Context, step Step, _ *interactor.Context) (map[string]interface{}, error) {
	return nil, fsutil.DeleteFile(step.param("path"))
}

// rollbackCreatedFile removes the file a step created at the given parameter
func rollbackCreatedFile(param string) RollbackHandler {
	return func(_ context.Context, step Step) error {
		return fsutil.DeleteFile(step.param(param))
	}
}

func rollbackMove(_ context.Context, step Step) error {
	return fsutil.MoveFile(step.param("destination"), step.param("source"))
}
