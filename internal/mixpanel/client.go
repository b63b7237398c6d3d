// Package mixpanel implements a client for the Mixpanel raw event export API.
// Export degrades to an empty dataset on any upstream failure; the analysis
// pipeline must keep working when an event has no data.
package mixpanel

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/mixsight/mixsight/internal/config"
	"github.com/mixsight/mixsight/internal/event"
	"github.com/mixsight/mixsight/internal/logging"
)

const exportPath = "/api/2.0/export"

// Client talks to the raw export endpoint. Credentials are injected at
// construction; nothing here reads the environment.
type Client struct {
	baseURL    string
	projectID  string
	token      string
	httpClient *http.Client
}

// New builds a Client from validated configuration.
func New(cfg *config.Config) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		projectID: cfg.ProjectID,
		token:     cfg.Token,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Export fetches all records of one event between from and to (inclusive,
// YYYY-MM-DD). Any non-200 response, transport failure, or malformed response
// line yields an empty slice - partial data is never returned for a call.
// Records are deduplicated by $insert_id, first occurrence wins, to absorb the
// API's at-least-once delivery.
func (c *Client) Export(ctx context.Context, eventName, from, to string) []event.Record {
	req, err := c.buildRequest(ctx, eventName, from, to)
	if err != nil {
		logging.L().Warn("export request build failed", zap.String("event", eventName), zap.Error(err))
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.L().Warn("export request failed", zap.String("event", eventName), zap.Error(err))
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		logging.L().Warn("export returned non-200",
			zap.String("event", eventName),
			zap.Int("status", resp.StatusCode))
		return nil
	}

	records, err := decodeExportBody(resp)
	if err != nil {
		logging.L().Warn("export body malformed", zap.String("event", eventName), zap.Error(err))
		return nil
	}

	records = dedupByInsertID(records)
	logging.L().Debug("export complete",
		zap.String("event", eventName),
		zap.Int("records", len(records)))
	return records
}

func (c *Client) buildRequest(ctx context.Context, eventName, from, to string) (*http.Request, error) {
	eventJSON, err := json.Marshal([]string{eventName})
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("project_id", c.projectID)
	params.Set("from_date", from)
	params.Set("to_date", to)
	params.Set("event", string(eventJSON))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s%s?%s", c.baseURL, exportPath, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Authorization", c.token)
	return req, nil
}

// decodeExportBody parses the newline-delimited JSON export format. One line
// per event; a single bad line aborts the whole call.
func decodeExportBody(resp *http.Response) ([]event.Record, error) {
	var records []event.Record

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw map[string]any
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("malformed export line: %w", err)
		}

		records = append(records, event.FromFlat(flatten(raw)))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// flatten merges the nested properties object over the top-level fields.
// Property keys win on conflict.
func flatten(raw map[string]any) map[string]any {
	flat := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "properties" {
			continue
		}
		flat[k] = v
	}
	if props, ok := raw["properties"].(map[string]any); ok {
		for k, v := range props {
			flat[k] = v
		}
	}
	return flat
}

// dedupByInsertID keeps the first occurrence of each $insert_id. Records
// without an insert id are always kept.
func dedupByInsertID(records []event.Record) []event.Record {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, rec := range records {
		if rec.InsertID != "" {
			if _, dup := seen[rec.InsertID]; dup {
				continue
			}
			seen[rec.InsertID] = struct{}{}
		}
		out = append(out, rec)
	}
	return out
}
