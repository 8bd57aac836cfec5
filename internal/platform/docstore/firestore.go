package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultFirestoreURL = "https://firestore.googleapis.com"
	listPageSize        = 300
)

// TokenFunc returns the ID token of the signed-in user, or "" when there is
// none. Requests then go out unauthenticated and rely on the API key.
type TokenFunc func() string

// FirestoreConfig configures the Firestore REST client.
type FirestoreConfig struct {
	BaseURL    string
	APIKey     string
	ProjectID  string
	DatabaseID string
	RPS        int
	MaxRetries int
	Timeout    time.Duration
}

// FirestoreStore talks to the Firestore REST API (v1).
type FirestoreStore struct {
	httpClient   *http.Client
	documentsURL string
	apiKey       string
	limiter      *rate.Limiter
	maxRetries   int
	token        TokenFunc
}

func NewFirestoreStore(cfg FirestoreConfig, token TokenFunc) *FirestoreStore {
	base := cfg.BaseURL
	if base == "" {
		base = defaultFirestoreURL
	}
	database := cfg.DatabaseID
	if database == "" {
		database = "(default)"
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 10
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &FirestoreStore{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		documentsURL: fmt.Sprintf("%s/v1/projects/%s/databases/%s/documents", base, url.PathEscape(cfg.ProjectID), url.PathEscape(database)),
		apiKey:       cfg.APIKey,
		limiter:      rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries:   cfg.MaxRetries,
		token:        token,
	}
}

// firestoreDocument matches the Document resource.
type firestoreDocument struct {
	Name   string         `json:"name,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

type listResponse struct {
	Documents     []firestoreDocument `json:"documents"`
	NextPageToken string              `json:"nextPageToken"`
}

// APIError is a non-2xx response from the REST API.
type APIError struct {
	StatusCode int
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("firestore: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

func (s *FirestoreStore) List(ctx context.Context, collection string) ([]Document, error) {
	out := []Document{}
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("pageSize", fmt.Sprint(listPageSize))
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var res listResponse
		if err := s.do(ctx, http.MethodGet, s.collectionURL(collection), q, nil, &res); err != nil {
			return nil, err
		}
		for _, d := range res.Documents {
			doc, err := d.toDocument()
			if err != nil {
				return nil, err
			}
			out = append(out, doc)
		}
		if res.NextPageToken == "" {
			return out, nil
		}
		pageToken = res.NextPageToken
	}
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var d firestoreDocument
	if err := s.do(ctx, http.MethodGet, s.documentURL(collection, id), nil, nil, &d); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return d.toDocument()
}

func (s *FirestoreStore) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	encoded, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	var created firestoreDocument
	if err := s.do(ctx, http.MethodPost, s.collectionURL(collection), nil, firestoreDocument{Fields: encoded}, &created); err != nil {
		return "", err
	}
	return path.Base(created.Name), nil
}

// Put issues a PATCH without an update mask, which replaces the whole
// document or creates it.
func (s *FirestoreStore) Put(ctx context.Context, collection, id string, fields Fields) error {
	encoded, err := encodeFields(fields)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPatch, s.documentURL(collection, id), nil, firestoreDocument{Fields: encoded}, nil)
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	return s.do(ctx, http.MethodDelete, s.documentURL(collection, id), nil, nil, nil)
}

func (s *FirestoreStore) collectionURL(collection string) string {
	return s.documentsURL + "/" + url.PathEscape(collection)
}

func (s *FirestoreStore) documentURL(collection, id string) string {
	return s.collectionURL(collection) + "/" + url.PathEscape(id)
}

func (d firestoreDocument) toDocument() (Document, error) {
	fields, err := decodeFields(d.Fields)
	if err != nil {
		return Document{}, fmt.Errorf("document %s: %w", d.Name, err)
	}
	return Document{ID: path.Base(d.Name), Fields: fields}, nil
}

func (s *FirestoreStore) do(ctx context.Context, method, endpoint string, query url.Values, body any, target any) error {
	if query == nil {
		query = url.Values{}
	}
	if s.apiKey != "" {
		query.Set("key", s.apiKey)
	}
	u := endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = b
	}

	// A POST that failed without a definite rejection may still have been
	// committed, so only a 429 is retried for it.
	idempotent := method != http.MethodPost

	var lastErr error
	for i := 0; i <= s.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := s.attempt(ctx, method, u, payload, target, idempotent)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", s.maxRetries, lastErr)
}

func (s *FirestoreStore) attempt(ctx context.Context, method, u string, payload []byte, target any, idempotent bool) (bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return false, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := s.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return idempotent && ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		retry := resp.StatusCode == http.StatusTooManyRequests || (idempotent && resp.StatusCode >= 500)
		return retry, apiErr
	}
	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}
	return false, json.NewDecoder(resp.Body).Decode(target)
}

func decodeAPIError(resp *http.Response) *APIError {
	var envelope struct {
		Error APIError `json:"error"`
	}
	apiErr := &APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		if envelope.Error.Status != "" {
			apiErr.Status = envelope.Error.Status
		}
	}
	return apiErr
}
