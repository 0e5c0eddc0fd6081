package docstore

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// fakeJSONBlob mimics the jsonblob API closely enough for the HTTP backend.
type fakeJSONBlob struct {
	mu     sync.Mutex
	docs   map[string][]byte
	status int
	puts   int
}

func newFakeJSONBlob(t *testing.T) (*fakeJSONBlob, *httptest.Server) {
	t.Helper()
	fake := &fakeJSONBlob{docs: make(map[string][]byte)}
	srv := httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(srv.Close)
	return fake, srv
}

func (f *fakeJSONBlob) failWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

func (f *fakeJSONBlob) put(id string, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[id] = []byte(body)
}

func (f *fakeJSONBlob) get(id string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.docs[id]
	return body, ok
}

func (f *fakeJSONBlob) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	const prefix = "/api/jsonBlob"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, prefix), "/")
	body, _ := io.ReadAll(r.Body)

	switch {
	case r.Method == http.MethodPost && id == "":
		id = uuid.NewString()
		f.docs[id] = body
		w.Header().Set("Location", "https://jsonblob.test"+prefix+"/"+id)
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodGet:
		doc, ok := f.docs[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc)
	case r.Method == http.MethodPut:
		if _, ok := f.docs[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.docs[id] = body
		f.puts++
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
