package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/observability"
)

// Options tune a Client.
type Options struct {
	// DocumentID pins the document to use; it wins over the saved handle.
	DocumentID string
	// Seed writes SeedDataset into newly created documents instead of an empty one.
	Seed       bool
	MaxRetries int
	RetryBase  time.Duration
	Metrics    *observability.Metrics
}

// ReadResult is the outcome of a lenient read. Data is never nil; Err is set
// when Data is empty or partial because the document could not be read whole.
type ReadResult struct {
	Data *domain.Dataset
	Err  error
}

// Available reports whether Data reflects the stored document.
func (r ReadResult) Available() bool {
	return r.Err == nil
}

// Client is the only path to the document. Writes go through Mutate or
// UpdateData and are checked against the revision they were read at.
type Client struct {
	backend Backend
	handles HandleStore
	logger  *zap.Logger
	opts    Options

	writeMu sync.Mutex

	idMu       sync.RWMutex
	documentID string
}

// NewClient builds a client; call Initialize before use.
func NewClient(backend Backend, handles HandleStore, logger *zap.Logger, opts Options) *Client {
	if handles == nil {
		handles = &MemoryHandleStore{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 50 * time.Millisecond
	}
	return &Client{backend: backend, handles: handles, logger: logger, opts: opts}
}

// Initialize resolves the document to use: the pinned id, then the saved
// handle. Only a candidate the backend reports as missing is forgotten; any
// other failure is returned so an outage never replaces live data with a new
// document. It returns the active document id and is safe to call repeatedly.
func (c *Client) Initialize(ctx context.Context) (string, error) {
	if id := c.DocumentID(); id != "" {
		return id, nil
	}

	saved, err := c.handles.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("read saved document handle: %w", err)
	}
	candidates := []string{c.opts.DocumentID, saved}

	for _, id := range candidates {
		if id == "" {
			continue
		}
		if _, err := c.loadBody(ctx, id); err != nil {
			if !errors.Is(err, ErrDocumentNotFound) {
				return "", fmt.Errorf("resolve document %s: %w", id, err)
			}
			c.logger.Warn("document handle does not resolve", zap.String("document_id", id), zap.Error(err))
			if id == saved {
				if err := c.handles.Clear(ctx); err != nil {
					c.logger.Warn("unable to clear stale document handle", zap.Error(err))
				}
			}
			continue
		}
		c.setDocumentID(id)
		if id != saved {
			c.saveHandle(ctx, id)
		}
		c.logger.Info("using existing document", zap.String("document_id", id), zap.String("backend", c.backend.Name()))
		return id, nil
	}

	initial := domain.EmptyDataset()
	if c.opts.Seed {
		initial = SeedDataset()
	}
	body, err := json.Marshal(initial)
	if err != nil {
		return "", fmt.Errorf("encode initial document: %w", err)
	}
	start := time.Now()
	id, err := c.backend.Create(ctx, body)
	c.opts.Metrics.ObserveStore("create", err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	c.setDocumentID(id)
	c.saveHandle(ctx, id)
	c.logger.Info("created document", zap.String("document_id", id), zap.String("backend", c.backend.Name()), zap.Bool("seeded", c.opts.Seed))
	return id, nil
}

// Forget drops the active and the saved handle; the next Initialize creates
// or resolves a document afresh.
func (c *Client) Forget(ctx context.Context) error {
	c.setDocumentID("")
	return c.handles.Clear(ctx)
}

// DocumentID returns the active document id, or "" before Initialize.
func (c *Client) DocumentID() string {
	c.idMu.RLock()
	defer c.idMu.RUnlock()
	return c.documentID
}

// BackendName names the configured backend.
func (c *Client) BackendName() string {
	return c.backend.Name()
}

// Fetch reads and normalises the whole document. A collection that does not
// decode fails the read with ErrMalformedDocument, so Mutate never writes back
// a document with that collection dropped.
func (c *Client) Fetch(ctx context.Context) (*domain.Dataset, error) {
	id := c.DocumentID()
	if id == "" {
		return nil, ErrNotInitialized
	}
	return c.load(ctx, id)
}

// GetData is the lenient read: it never fails. An unreadable store yields an
// empty dataset, and a malformed collection is replaced by an empty one while
// the rest of the document is kept. Err reports either cause.
func (c *Client) GetData(ctx context.Context) ReadResult {
	id := c.DocumentID()
	if id == "" {
		return ReadResult{Data: domain.EmptyDataset(), Err: ErrNotInitialized}
	}
	body, err := c.loadBody(ctx, id)
	if err != nil {
		c.logger.Warn("document read failed; returning empty dataset", zap.Error(err))
		return ReadResult{Data: domain.EmptyDataset(), Err: err}
	}
	data, err := decodeDataset(body, false)
	if data == nil {
		c.logger.Warn("document does not decode; returning empty dataset", zap.Error(err))
		return ReadResult{Data: domain.EmptyDataset(), Err: err}
	}
	if err != nil {
		c.logger.Warn("malformed document fields replaced by empty values", zap.Error(err))
	}
	return ReadResult{Data: data, Err: err}
}

// Probe checks that the active document can be read.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.Fetch(ctx)
	return err
}

// UpdateData replaces the whole document with data. The write is rejected with
// ErrRevisionConflict when the document changed since data was read.
func (c *Client) UpdateData(ctx context.Context, data *domain.Dataset) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.write(ctx, data)
}

// Mutate runs fn against a fresh copy of the document and writes the result.
// Revision conflicts are retried with exponential backoff; an error from fn
// aborts without writing.
func (c *Client) Mutate(ctx context.Context, fn func(*domain.Dataset) error) (*domain.Dataset, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	delay := c.opts.RetryBase
	for attempt := 0; ; attempt++ {
		data, err := c.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := fn(data); err != nil {
			return nil, err
		}
		err = c.write(ctx, data)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrRevisionConflict) || attempt >= c.opts.MaxRetries {
			return nil, err
		}

		c.opts.Metrics.RecordConflict()
		c.logger.Warn("revision conflict; retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.String("document_id", c.DocumentID()))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

func (c *Client) write(ctx context.Context, data *domain.Dataset) error {
	id := c.DocumentID()
	if id == "" {
		return ErrNotInitialized
	}
	data.Normalize()
	expected := data.Revision
	data.Revision = expected + 1
	body, err := json.Marshal(data)
	if err != nil {
		data.Revision = expected
		return fmt.Errorf("encode document: %w", err)
	}

	start := time.Now()
	err = c.backend.Store(ctx, id, body, expected)
	c.opts.Metrics.ObserveStore("store", err, time.Since(start))
	if err != nil {
		data.Revision = expected
		return err
	}
	c.logger.Debug("document stored", zap.String("document_id", id), zap.Int64("revision", data.Revision))
	return nil
}

func (c *Client) load(ctx context.Context, id string) (*domain.Dataset, error) {
	body, err := c.loadBody(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodeDataset(body, true)
}

func (c *Client) loadBody(ctx context.Context, id string) ([]byte, error) {
	start := time.Now()
	body, err := c.backend.Load(ctx, id)
	c.opts.Metrics.ObserveStore("load", err, time.Since(start))
	return body, err
}

func (c *Client) setDocumentID(id string) {
	c.idMu.Lock()
	defer c.idMu.Unlock()
	c.documentID = id
}

func (c *Client) saveHandle(ctx context.Context, id string) {
	if err := c.handles.Save(ctx, id); err != nil {
		c.logger.Warn("unable to save document handle", zap.String("document_id", id), zap.Error(err))
	}
}

// decodeDataset decodes each collection independently. In strict mode the
// first malformed collection fails the decode. Otherwise malformed
// collections stay empty and the joined field errors are returned alongside
// the partial dataset.
func decodeDataset(body []byte, strict bool) (*domain.Dataset, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	data := domain.EmptyDataset()
	var errs []error
	for _, err := range []error{
		decodeField(fields, "revision", &data.Revision),
		decodeField(fields, "users", &data.Users),
		decodeField(fields, "tickets", &data.Tickets),
		decodeField(fields, "comments", &data.Comments),
		decodeField(fields, "categories", &data.Categories),
	} {
		if err == nil {
			continue
		}
		if strict {
			return nil, err
		}
		errs = append(errs, err)
	}
	data.Normalize()
	return data, errors.Join(errs...)
}

func decodeField[T any](fields map[string]json.RawMessage, key string, dst *T) error {
	raw, ok := fields[key]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("%w: field %q: %w", ErrMalformedDocument, key, err)
	}
	*dst = value
	return nil
}
