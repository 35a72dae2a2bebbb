// Package scanner looks up file reports on VirusTotal by hash
package scanner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-interactor/internal/common/errors"
	"github.com/deploymenttheory/go-interactor/internal/logger"

	vt "github.com/VirusTotal/vt-go"
)

// Report is the summary of the last analysis of a file
type Report struct {
	Hash       string
	Malicious  int64
	Suspicious int64
	Undetected int64
	Harmless   int64
}

// Clean reports whether no engine flagged the file
func (r *Report) Clean() bool {
	return r.Malicious == 0 && r.Suspicious == 0
}

// Scanner looks up a file report by hash
type Scanner interface {
	LookupHash(hash string) (*Report, error)
}

// Client is a Scanner backed by the VirusTotal v3 API
type Client struct {
	fetch func(hash string) (*vt.Object, error)
}

// NewClient creates a VirusTotal client
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: VirusTotal API key is required", errors.ErrAPIKeyMissing)
	}

	client := vt.NewClient(apiKey)
	return &Client{
		fetch: func(hash string) (*vt.Object, error) {
			return client.GetObject(vt.URL("files/%s", hash))
		},
	}, nil
}

// LookupHash returns the last analysis report for the file with the given hash
func (c *Client) LookupHash(hash string) (*Report, error) {
	obj, err := c.fetch(hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			logger.LogInfo("File not found in VirusTotal database", map[string]interface{}{
				"hash": hash,
			})
			return nil, fmt.Errorf("%w: %s", errors.ErrScanNotFound, hash)
		}
		return nil, fmt.Errorf("%w: %s", errors.ErrAPICommunicationError, err.Error())
	}

	stats, err := obj.Get("last_analysis_stats")
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no analysis stats", errors.ErrScanNotFound, hash)
	}
	statsMap, ok := stats.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected analysis stats for %s", errors.ErrAPICommunicationError, hash)
	}
	return reportFromStats(hash, statsMap), nil
}

func reportFromStats(hash string, stats map[string]interface{}) *Report {
	return &Report{
		Hash:       hash,
		Malicious:  toInt64(stats["malicious"]),
		Suspicious: toInt64(stats["suspicious"]),
		Undetected: toInt64(stats["undetected"]),
		Harmless:   toInt64(stats["harmless"]),
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case json.Number:
		i, _ := n.Int64()
		return i
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
