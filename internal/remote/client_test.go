package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/ideabox/internal/model"
)

// fakeServer records requests and serves a fixed idea list
type fakeServer struct {
	mu       sync.Mutex
	ideas    []model.Idea
	status   int
	requests []*http.Request
	bodies   []string
}

func (f *fakeServer) setIdeas(ideas []model.Idea) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ideas = ideas
}

func (f *fakeServer) setStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

func (f *fakeServer) lastBody() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bodies) == 0 {
		return ""
	}
	return f.bodies[len(f.bodies)-1]
}

func (f *fakeServer) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body strings.Builder
	if r.Body != nil {
		buf := make([]byte, 4096)
		for {
			n, err := r.Body.Read(buf)
			body.Write(buf[:n])
			if err != nil {
				break
			}
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, body.String())
	status, ideas := f.status, f.ideas
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "nope"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/ideas":
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ideas": ideas})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/v1/category-settings/"):
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
	default:
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func newTestClient(t *testing.T, opts ...ClientOption) (*Client, *fakeServer) {
	t.Helper()
	fake := &fakeServer{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, StaticToken("tok"), opts...), fake
}

func TestClient_SendsBearerToken(t *testing.T) {
	c, fake := newTestClient(t)
	fake.setIdeas([]model.Idea{{ID: "a1", Text: "hello"}})

	ideas, err := c.ListIdeas(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "Bearer tok", fake.lastRequest().Header.Get("Authorization"))
}

func TestClient_NoTokenIsAuthRequired(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken(""))
	_, err := c.ListIdeas(context.Background(), "alice")
	assert.ErrorIs(t, err, model.ErrAuthRequired)
	assert.Nil(t, fake.lastRequest())
}

func TestClient_MapsStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, model.ErrAuthRequired},
		{http.StatusForbidden, model.ErrPermissionDenied},
		{http.StatusNotFound, model.ErrNotFound},
		{http.StatusBadRequest, model.ErrValidation},
		{http.StatusInternalServerError, model.ErrRemoteUnavailable},
		{http.StatusBadGateway, model.ErrRemoteUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, fake := newTestClient(t)
			fake.setStatus(tt.status)
			err := c.UpdateIdea(context.Background(), "alice", "a1", model.IdeaPatch{Pinned: model.Bool(true)})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_TransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(srv.URL, StaticToken("tok"))
	_, err := c.ListIdeas(context.Background(), "alice")
	assert.ErrorIs(t, err, model.ErrRemoteUnavailable)
}

func TestClient_MissingCategorySetting(t *testing.T) {
	c, fake := newTestClient(t)

	_, ok, err := c.GetCategorySetting(context.Background(), "alice", "My Work")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "/api/v1/category-settings/My Work", fake.lastRequest().URL.Path)
}

func TestClient_SealsTextOnTheWire(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	sealer, err := NewSealerBase64("correct horse", salt)
	require.NoError(t, err)

	c, fake := newTestClient(t, WithSealer(sealer))
	require.NoError(t, c.PutIdea(context.Background(), "alice", model.Idea{ID: "a1", Text: "secret plan"}))

	body := fake.lastBody()
	assert.NotContains(t, body, "secret plan")
	assert.Contains(t, body, sealedPrefix)

	var sent model.Idea
	require.NoError(t, json.Unmarshal([]byte(body), &sent))
	fake.setIdeas([]model.Idea{sent, {ID: "a2", Text: "plain"}})

	ideas, err := c.ListIdeas(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.Equal(t, "secret plan", ideas[0].Text)
	assert.Equal(t, "plain", ideas[1].Text)
}

func TestClient_WatchDeliversOnChange(t *testing.T) {
	c, fake := newTestClient(t, WithPollInterval(10*time.Millisecond))
	fake.setIdeas([]model.Idea{{ID: "a1"}})

	rec := &snapshotRecorder{}
	stop, err := c.WatchIdeas(context.Background(), "alice", rec.onSnapshot, rec.onError)
	require.NoError(t, err)
	defer stop()
	require.Len(t, rec.last(), 1, "first snapshot is delivered synchronously")

	fake.setIdeas([]model.Idea{{ID: "a1"}, {ID: "a2"}})
	require.Eventually(t, func() bool { return len(rec.last()) == 2 }, time.Second, 5*time.Millisecond)

	fake.setStatus(http.StatusBadGateway)
	require.Eventually(t, func() bool { return rec.errCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, rec.errCount(), "an outage is reported once")

	stop()
	stop()
}

func TestClient_WatchFailsWhenFirstPollFails(t *testing.T) {
	c, fake := newTestClient(t)
	fake.setStatus(http.StatusUnauthorized)

	_, err := c.WatchIdeas(context.Background(), "alice", nil, nil)
	assert.ErrorIs(t, err, model.ErrAuthRequired)
}

func (f *fakeServer) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestClient_WatchStopFromCallback(t *testing.T) {
	c, fake := newTestClient(t, WithPollInterval(10*time.Millisecond))
	fake.setIdeas([]model.Idea{{ID: "a1"}})

	var (
		mu   sync.Mutex
		stop func()
	)
	returned := make(chan struct{})
	onSnapshot := func(ideas []model.Idea) {
		if len(ideas) < 2 {
			return
		}
		mu.Lock()
		s := stop
		mu.Unlock()
		s()
		close(returned)
	}

	s, err := c.WatchIdeas(context.Background(), "alice", onSnapshot, nil)
	require.NoError(t, err)
	mu.Lock()
	stop = s
	mu.Unlock()

	fake.setIdeas([]model.Idea{{ID: "a1"}, {ID: "a2"}})
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("stop called inside the snapshot callback did not return")
	}

	polls := fake.requestCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, polls, fake.requestCount(), "polling ended")
	stop()
}

func TestClient_WatchEndsWithContext(t *testing.T) {
	c, fake := newTestClient(t, WithPollInterval(10*time.Millisecond))
	fake.setIdeas([]model.Idea{{ID: "a1"}})

	ctx, cancel := context.WithCancel(context.Background())
	stop, err := c.WatchIdeas(ctx, "alice", nil, nil)
	require.NoError(t, err)
	defer stop()

	require.Eventually(t, func() bool { return fake.requestCount() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	time.Sleep(30 * time.Millisecond)
	polls := fake.requestCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, polls, fake.requestCount(), "no polls after the context ends")
}
