package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func newTestClient(t *testing.T, backend Backend, handles HandleStore, opts Options) *Client {
	t.Helper()
	if opts.RetryBase == 0 {
		opts.RetryBase = time.Millisecond
	}
	return NewClient(backend, handles, zap.NewNop(), opts)
}

func TestInitializeCreatesSeededDocument(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeJSONBlob(t)
	handles := &MemoryHandleStore{}
	client := newTestClient(t, NewHTTPBackend(srv.URL+"/api/jsonBlob", srv.Client()), handles, Options{Seed: true})

	id, err := client.Initialize(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	saved, _ := handles.Load(ctx)
	assert.Equal(t, id, saved)

	body, ok := fake.get(id)
	require.True(t, ok)
	var stored domain.Dataset
	require.NoError(t, json.Unmarshal(body, &stored))
	assert.Len(t, stored.Users, 3)
	assert.Len(t, stored.Categories, 4)
	assert.Len(t, stored.Tickets, 2)

	again, err := client.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestInitializeCreatesEmptyDocumentWithoutSeed(t *testing.T) {
	client := newTestClient(t, NewMemoryBackend(), nil, Options{})
	_, err := client.Initialize(context.Background())
	require.NoError(t, err)

	result := client.GetData(context.Background())
	require.True(t, result.Available())
	assert.Empty(t, result.Data.Users)
	assert.NotNil(t, result.Data.Tickets)
}

func TestInitializeReusesSavedHandle(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	id, err := backend.Create(ctx, []byte(`{"revision":4,"users":[{"id":"u1","name":"Ann","email":"ann@example.com","role":"end_user","status":"active"}]}`))
	require.NoError(t, err)

	handles := &MemoryHandleStore{}
	require.NoError(t, handles.Save(ctx, id))

	client := newTestClient(t, backend, handles, Options{Seed: true})
	got, err := client.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	data, err := client.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), data.Revision)
	require.Len(t, data.Users, 1)
	assert.Equal(t, "Ann", data.Users[0].Name)
}

func TestInitializeReplacesStaleHandle(t *testing.T) {
	ctx := context.Background()
	handles := &MemoryHandleStore{}
	require.NoError(t, handles.Save(ctx, "gone"))

	client := newTestClient(t, NewMemoryBackend(), handles, Options{Seed: true})
	id, err := client.Initialize(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "gone", id)

	saved, _ := handles.Load(ctx)
	assert.Equal(t, id, saved)
}

func TestInitializeKeepsHandleWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeJSONBlob(t)
	fake.put("live", `{"revision":7}`)
	handles := &MemoryHandleStore{}
	require.NoError(t, handles.Save(ctx, "live"))

	fake.failWith(503)
	client := newTestClient(t, NewHTTPBackend(srv.URL+"/api/jsonBlob", srv.Client()), handles, Options{Seed: true})
	_, err := client.Initialize(ctx)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 503, statusErr.StatusCode)
	assert.Empty(t, client.DocumentID())

	saved, _ := handles.Load(ctx)
	assert.Equal(t, "live", saved)
	fake.mu.Lock()
	assert.Len(t, fake.docs, 1)
	fake.mu.Unlock()

	fake.failWith(0)
	id, err := client.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, "live", id)
}

type unreadableHandles struct {
	MemoryHandleStore
}

func (*unreadableHandles) Load(context.Context) (string, error) {
	return "", errors.New("dial tcp: connection refused")
}

func TestInitializeFailsWhenHandleUnreadable(t *testing.T) {
	backend := NewMemoryBackend()
	client := newTestClient(t, backend, &unreadableHandles{}, Options{Seed: true})
	_, err := client.Initialize(context.Background())
	require.Error(t, err)
	assert.Empty(t, client.DocumentID())
}

func TestInitializePrefersPinnedDocument(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	pinned, err := backend.Create(ctx, []byte(`{"revision":0}`))
	require.NoError(t, err)
	other, err := backend.Create(ctx, []byte(`{"revision":0}`))
	require.NoError(t, err)

	handles := &MemoryHandleStore{}
	require.NoError(t, handles.Save(ctx, other))

	client := newTestClient(t, backend, handles, Options{DocumentID: pinned})
	id, err := client.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, pinned, id)
}

func TestGetDataDegradesWhenStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeJSONBlob(t)
	client := newTestClient(t, NewHTTPBackend(srv.URL+"/api/jsonBlob", srv.Client()), nil, Options{Seed: true})
	_, err := client.Initialize(ctx)
	require.NoError(t, err)

	fake.failWith(503)
	result := client.GetData(ctx)
	assert.False(t, result.Available())
	require.NotNil(t, result.Data)
	assert.Empty(t, result.Data.Users)
	assert.Empty(t, result.Data.Tickets)
	assert.Empty(t, result.Data.Comments)
	assert.Empty(t, result.Data.Categories)

	_, err = client.Fetch(ctx)
	assert.Error(t, err)
}

func TestGetDataBeforeInitialize(t *testing.T) {
	client := newTestClient(t, NewMemoryBackend(), nil, Options{})
	result := client.GetData(context.Background())
	assert.ErrorIs(t, result.Err, ErrNotInitialized)
	assert.NotNil(t, result.Data.Users)
}

const malformedDocument = `{"revision":2,"users":"oops","tickets":null,"categories":[{"id":"c1","name":"Billing","ticket_count":0}]}`

func TestGetDataToleratesMalformedCollections(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeJSONBlob(t)
	fake.put("doc", malformedDocument)

	client := newTestClient(t, NewHTTPBackend(srv.URL+"/api/jsonBlob", srv.Client()), nil, Options{DocumentID: "doc"})
	_, err := client.Initialize(ctx)
	require.NoError(t, err)

	result := client.GetData(ctx)
	assert.ErrorIs(t, result.Err, ErrMalformedDocument)
	data := result.Data
	assert.Equal(t, int64(2), data.Revision)
	assert.Empty(t, data.Users)
	assert.NotNil(t, data.Tickets)
	assert.Empty(t, data.Comments)
	require.Len(t, data.Categories, 1)
	assert.Equal(t, "Billing", data.Categories[0].Name)

	_, err = client.Fetch(ctx)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestMutateNeverRewritesMalformedDocument(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeJSONBlob(t)
	fake.put("doc", malformedDocument)

	client := newTestClient(t, NewHTTPBackend(srv.URL+"/api/jsonBlob", srv.Client()), nil, Options{DocumentID: "doc", MaxRetries: 3})
	_, err := client.Initialize(ctx)
	require.NoError(t, err)

	called := false
	_, err = client.Mutate(ctx, func(d *domain.Dataset) error {
		called = true
		d.Categories = append(d.Categories, domain.Category{ID: "c2", Name: "Hardware"})
		return nil
	})
	assert.ErrorIs(t, err, ErrMalformedDocument)
	assert.False(t, called)

	body, ok := fake.get("doc")
	require.True(t, ok)
	assert.JSONEq(t, malformedDocument, string(body))
	assert.Zero(t, fake.puts)
}

func TestUpdateDataReplacesDocument(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, NewMemoryBackend(), nil, Options{Seed: true})
	_, err := client.Initialize(ctx)
	require.NoError(t, err)

	data, err := client.Fetch(ctx)
	require.NoError(t, err)
	data.Users = data.Users[:1]
	require.NoError(t, client.UpdateData(ctx, data))
	assert.Equal(t, int64(1), data.Revision)

	reread, err := client.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, reread.Users, 1)
	assert.Equal(t, int64(1), reread.Revision)

	stale := *reread
	stale.Revision = 0
	assert.ErrorIs(t, client.UpdateData(ctx, &stale), ErrRevisionConflict)
	assert.Equal(t, int64(0), stale.Revision)
}

func TestMutateRetriesAfterConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	handles := &MemoryHandleStore{}

	writer := newTestClient(t, backend, handles, Options{MaxRetries: 3})
	id, err := writer.Initialize(ctx)
	require.NoError(t, err)
	rival := newTestClient(t, backend, nil, Options{DocumentID: id})
	_, err = rival.Initialize(ctx)
	require.NoError(t, err)

	calls := 0
	result, err := writer.Mutate(ctx, func(d *domain.Dataset) error {
		calls++
		if calls == 1 {
			_, err := rival.Mutate(ctx, func(d *domain.Dataset) error {
				d.Categories = append(d.Categories, domain.Category{ID: "cat-r", Name: "Rival"})
				return nil
			})
			require.NoError(t, err)
		}
		d.Categories = append(d.Categories, domain.Category{ID: "cat-w", Name: "Writer"})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(2), result.Revision)

	data, err := writer.Fetch(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, c := range data.Categories {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"Rival", "Writer"}, names)
}

type conflictingBackend struct {
	*MemoryBackend
	stores int
}

func (b *conflictingBackend) Store(context.Context, string, []byte, int64) error {
	b.stores++
	return ErrRevisionConflict
}

func TestMutateGivesUpAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	backend := &conflictingBackend{MemoryBackend: NewMemoryBackend()}
	client := newTestClient(t, backend, nil, Options{MaxRetries: 2})
	_, err := client.Initialize(ctx)
	require.NoError(t, err)

	_, err = client.Mutate(ctx, func(*domain.Dataset) error { return nil })
	assert.ErrorIs(t, err, ErrRevisionConflict)
	assert.Equal(t, 3, backend.stores)
}

func TestMutateStopsWhenContextCancelled(t *testing.T) {
	backend := &conflictingBackend{MemoryBackend: NewMemoryBackend()}
	client := newTestClient(t, backend, nil, Options{MaxRetries: 5, RetryBase: time.Hour})
	_, err := client.Initialize(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Mutate(ctx, func(*domain.Dataset) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, backend.stores)
}

func TestMutateCallbackErrorSkipsWrite(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, NewMemoryBackend(), nil, Options{Seed: true})
	_, err := client.Initialize(ctx)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = client.Mutate(ctx, func(d *domain.Dataset) error {
		d.Users = nil
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := client.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, data.Users, 3)
	assert.Equal(t, int64(0), data.Revision)
}

func TestSeedDatasetCountersAreConsistent(t *testing.T) {
	seed := SeedDataset()
	want := SeedDataset()
	want.Reconcile()
	assert.Equal(t, want.Categories, seed.Categories)
	assert.Equal(t, want.Tickets, seed.Tickets)
}
