// Package workspace is a client for the hosted workspace API: typed
// records in collections, queried with property filters and mutated
// through schema-driven property payloads.
package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultBaseURL    = "https://api.notion.com"
	apiVersion        = "2022-06-28"
	defaultPageSize   = 100
	defaultHTTPWindow = 30 * time.Second
)

// Client talks to the workspace HTTP API.
type Client struct {
	token   string
	baseURL string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a workspace API client.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("workspace API token is required")
	}
	c := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultHTTPWindow},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("workspace API call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("workspace API error %d: %s", resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

type queryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size"`
}

type queryResponse struct {
	Results    []Record `json:"results"`
	NextCursor string   `json:"next_cursor"`
	HasMore    bool     `json:"has_more"`
}

// QueryCollection returns every record matching the filter, following
// cursor pagination until the results are exhausted.
func (c *Client) QueryCollection(ctx context.Context, collectionID string, filter *Filter, sorts []Sort) ([]Record, error) {
	var records []Record
	cursor := ""
	for {
		req := queryRequest{
			Filter:      filter,
			Sorts:       sorts,
			StartCursor: cursor,
			PageSize:    defaultPageSize,
		}
		var resp queryResponse
		if err := c.do(ctx, http.MethodPost, "/v1/databases/"+collectionID+"/query", req, &resp); err != nil {
			return nil, fmt.Errorf("query collection %s: %w", collectionID, err)
		}
		records = append(records, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	slog.Debug("collection queried", "collection_id", collectionID, "records", len(records))
	return records, nil
}

// RetrieveCollection fetches a collection's schema.
func (c *Client) RetrieveCollection(ctx context.Context, collectionID string) (*Collection, error) {
	var col Collection
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+collectionID, nil, &col); err != nil {
		return nil, fmt.Errorf("retrieve collection %s: %w", collectionID, err)
	}
	return &col, nil
}

type createRequest struct {
	Parent     createParent   `json:"parent"`
	Properties map[string]any `json:"properties"`
}

type createParent struct {
	DatabaseID string `json:"database_id"`
}

// CreateRecord creates a record in a collection and returns it with its
// assigned id.
func (c *Client) CreateRecord(ctx context.Context, collectionID string, properties map[string]any) (*Record, error) {
	req := createRequest{
		Parent:     createParent{DatabaseID: collectionID},
		Properties: properties,
	}
	var rec Record
	if err := c.do(ctx, http.MethodPost, "/v1/pages", req, &rec); err != nil {
		return nil, fmt.Errorf("create record in %s: %w", collectionID, err)
	}
	slog.Info("record created", "record_id", rec.ID, "collection_id", collectionID)
	return &rec, nil
}

type updateRequest struct {
	Properties map[string]any `json:"properties"`
}

// UpdateRecordProperties patches the given properties on a record.
func (c *Client) UpdateRecordProperties(ctx context.Context, recordID string, properties map[string]any) (*Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodPatch, "/v1/pages/"+recordID, updateRequest{Properties: properties}, &rec); err != nil {
		return nil, fmt.Errorf("update record %s: %w", recordID, err)
	}
	slog.Info("record updated", "record_id", recordID)
	return &rec, nil
}

type childrenResponse struct {
	Results []json.RawMessage `json:"results"`
}

// GetRecord fetches a record and its child block content.
func (c *Client) GetRecord(ctx context.Context, recordID string) (*Page, error) {
	var rec Record
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+recordID, nil, &rec); err != nil {
		return nil, fmt.Errorf("get record %s: %w", recordID, err)
	}
	var children childrenResponse
	if err := c.do(ctx, http.MethodGet, "/v1/blocks/"+recordID+"/children", nil, &children); err != nil {
		return nil, fmt.Errorf("get record children %s: %w", recordID, err)
	}
	return &Page{Record: rec, Blocks: children.Results}, nil
}

type searchRequest struct {
	Filter      searchFilter `json:"filter"`
	Sort        searchSort   `json:"sort"`
	StartCursor string       `json:"start_cursor,omitempty"`
	PageSize    int          `json:"page_size"`
}

type searchFilter struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

type searchSort struct {
	Direction string `json:"direction"`
	Timestamp string `json:"timestamp"`
}

type searchResponse struct {
	Results    []Collection `json:"results"`
	NextCursor string       `json:"next_cursor"`
	HasMore    bool         `json:"has_more"`
}

// ListCollections returns every collection the integration can access.
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	var collections []Collection
	cursor := ""
	for {
		req := searchRequest{
			Filter:      searchFilter{Property: "object", Value: "database"},
			Sort:        searchSort{Direction: "ascending", Timestamp: "last_edited_time"},
			StartCursor: cursor,
			PageSize:    defaultPageSize,
		}
		var resp searchResponse
		if err := c.do(ctx, http.MethodPost, "/v1/search", req, &resp); err != nil {
			return nil, fmt.Errorf("list collections: %w", err)
		}
		collections = append(collections, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	slog.Info("collections listed", "count", len(collections))
	return collections, nil
}
