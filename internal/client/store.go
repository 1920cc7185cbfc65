package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/config"
)

// Store is a typed client for the hosted document store's HTTP API.
// Reads go through the query endpoint, writes through the mutation
// endpoint. All domain documents (products, orders, applications,
// settings) live behind this client.
type Store struct {
	httpClient *http.Client
	baseURL    string
	dataset    string
	token      string
}

func NewStore(cfg *config.Store) *Store {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.api.sanity.io/%s", cfg.ProjectID, cfg.APIVersion)
	}
	return &Store{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: baseURL,
		dataset: cfg.Dataset,
		token:   cfg.Token,
	}
}

type queryRequest struct {
	Query  string         `json:"query"`
	Params map[string]any `json:"params,omitempty"`
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// Fetch runs a query and unmarshals the projection into out. A query with
// no match leaves out untouched and returns nil; callers detect absence by
// checking their zero value.
func (s *Store) Fetch(ctx context.Context, query string, params map[string]any, out any) error {
	body, err := json.Marshal(queryRequest{Query: query, Params: params})
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPost, fmt.Sprintf("%s/data/query/%s", s.baseURL, s.dataset), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := s.checkStatus(resp); err != nil {
		return err
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return apperr.Upstream("document store returned an unreadable response", err)
	}
	if len(qr.Result) == 0 || string(qr.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(qr.Result, out); err != nil {
		return apperr.Upstream("document store result did not match the expected shape", err)
	}
	return nil
}

type docResponse struct {
	Documents []json.RawMessage `json:"documents"`
}

// GetDocument fetches a single document by ID. Absence is a NotFound error.
func (s *Store) GetDocument(ctx context.Context, id string, out any) error {
	u := fmt.Sprintf("%s/data/doc/%s/%s", s.baseURL, s.dataset, url.PathEscape(id))
	resp, err := s.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperr.NotFound("document %q not found", id)
	}
	if err := s.checkStatus(resp); err != nil {
		return err
	}

	var dr docResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return apperr.Upstream("document store returned an unreadable response", err)
	}
	if len(dr.Documents) == 0 {
		return apperr.NotFound("document %q not found", id)
	}
	return json.Unmarshal(dr.Documents[0], out)
}

// Create writes a new document. The store assigns a revision.
func (s *Store) Create(ctx context.Context, doc any) error {
	return s.mutate(ctx, []map[string]any{{"create": doc}})
}

// CreateIfNotExists writes the document only when its ID is free. A lost
// race is a silent no-op on the store side; callers that need to know the
// outcome re-read the document afterwards.
func (s *Store) CreateIfNotExists(ctx context.Context, doc any) error {
	return s.mutate(ctx, []map[string]any{{"createIfNotExists": doc}})
}

// Patch sets fields on an existing document. With ifRev set the patch only
// applies when the document is still at that revision; a mismatch surfaces
// as a Conflict error.
func (s *Store) Patch(ctx context.Context, id string, set map[string]any, ifRev string) error {
	patch := map[string]any{
		"id":  id,
		"set": set,
	}
	if ifRev != "" {
		patch["ifRevisionID"] = ifRev
	}
	return s.mutate(ctx, []map[string]any{{"patch": patch}})
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, []map[string]any{{"delete": map[string]any{"id": id}}})
}

func (s *Store) mutate(ctx context.Context, mutations []map[string]any) error {
	body, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return fmt.Errorf("marshal mutations: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPost, fmt.Sprintf("%s/data/mutate/%s", s.baseURL, s.dataset), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return s.checkStatus(resp)
}

func (s *Store) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build store request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Upstream("document store unreachable", err)
	}
	return resp, nil
}

func (s *Store) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		b, _ := io.ReadAll(resp.Body)
		return &apperr.Error{
			Kind:    apperr.KindConflict,
			Message: "document revision mismatch",
			Err:     fmt.Errorf("store conflict: %s", string(b)),
		}
	default:
		b, _ := io.ReadAll(resp.Body)
		return apperr.Upstream(
			"document store request failed",
			fmt.Errorf("store error %d: %s", resp.StatusCode, string(b)),
		)
	}
}
