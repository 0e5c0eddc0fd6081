package docstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

// HTTPBackend talks to a jsonblob-style service: POST creates a document and
// returns its location, GET reads it, PUT replaces it.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBackend builds a backend rooted at baseURL.
func NewHTTPBackend(baseURL string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBackend{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (b *HTTPBackend) Name() string { return "jsonblob" }

func (b *HTTPBackend) Create(ctx context.Context, body []byte) (string, error) {
	resp, err := b.do(ctx, http.MethodPost, b.baseURL, body)
	if err != nil {
		return "", err
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Op: "create", StatusCode: resp.StatusCode}
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("docstore: create response has no Location header")
	}
	id := path.Base(strings.TrimRight(location, "/"))
	if id == "" || id == "." || id == "/" {
		return "", fmt.Errorf("docstore: cannot parse document id from %q", location)
	}
	return id, nil
}

func (b *HTTPBackend) Load(ctx context.Context, id string) ([]byte, error) {
	resp, err := b.do(ctx, http.MethodGet, b.documentURL(id), nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrDocumentNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: "load", StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return body, nil
}

// Store re-reads the document to compare revisions before replacing it. The
// remote offers no conditional write, so a writer landing between the read and
// the PUT still wins.
func (b *HTTPBackend) Store(ctx context.Context, id string, body []byte, expectedRevision int64) error {
	current, err := b.Load(ctx, id)
	if err != nil {
		return err
	}
	rev, err := peekRevision(current)
	if err != nil {
		return err
	}
	if rev != expectedRevision {
		return ErrRevisionConflict
	}

	resp, err := b.do(ctx, http.MethodPut, b.documentURL(id), body)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode == http.StatusNotFound {
		return ErrDocumentNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: "store", StatusCode: resp.StatusCode}
	}
	return nil
}

func (b *HTTPBackend) documentURL(id string) string {
	return b.baseURL + "/" + id
}

func (b *HTTPBackend) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docstore: %s %s: %w", method, url, err)
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
