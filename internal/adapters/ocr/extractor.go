// Package ocr calls an external document extraction endpoint.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Config holds extractor configuration.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// HTTPExtractor posts documents to an extraction endpoint and returns the fields it found.
type HTTPExtractor struct {
	endpoint   string
	httpClient *http.Client
}

// New creates an HTTPExtractor.
func New(cfg Config) *HTTPExtractor {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPExtractor{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type extractRequest struct {
	MimeType string `json:"mime_type"`
	Content  string `json:"content"` // base64
}

// fieldAliases maps each normalized key to the response paths that may carry it.
var fieldAliases = map[string][]string{
	"total_amount": {"total_amount", "totalAmount", "amount.total", "total"},
	"description":  {"description", "summary", "title"},
	"date":         {"date", "issued_at", "issueDate"},
	"vendor":       {"vendor", "vendor.name", "merchant", "payee"},
}

// Extract implements the intake Extractor port.
func (e *HTTPExtractor) Extract(ctx context.Context, data []byte, mimeType string) (map[string]any, error) {
	body, err := json.Marshal(extractRequest{
		MimeType: mimeType,
		Content:  base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction failed: %s - %s", resp.Status, string(respBody))
	}
	if !gjson.ValidBytes(respBody) {
		return nil, fmt.Errorf("extraction returned invalid JSON")
	}

	return parseFields(respBody), nil
}

// parseFields reads the known fields from either a "fields" object or the document root.
// Only scalar values are kept.
func parseFields(doc []byte) map[string]any {
	root := gjson.ParseBytes(doc)
	if f := root.Get("fields"); f.IsObject() {
		root = f
	}

	out := make(map[string]any)
	for key, paths := range fieldAliases {
		for _, p := range paths {
			v := root.Get(p)
			switch v.Type {
			case gjson.String:
				out[key] = v.String()
			case gjson.Number:
				out[key] = v.Float()
			default:
				continue
			}
			break
		}
	}
	return out
}
