package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inboxRecorder struct {
	mu     sync.Mutex
	bodies [][]byte
	types  []string
}

func (r *inboxRecorder) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.bodies = append(r.bodies, body)
		r.types = append(r.types, req.Header.Get("Content-Type"))
		r.mu.Unlock()
		w.WriteHeader(status)
	}
}

func (r *inboxRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never reached")
}

func TestDeliveryWorker_PostsRawDocumentVerbatim(t *testing.T) {
	rec := &inboxRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusAccepted))
	defer srv.Close()

	w := NewDeliveryWorker(16, time.Second)
	stop := w.Start(2)
	defer stop(context.Background())

	raw := []byte(`{"type":"Like","id":"https://remote.example/likes/1"}`)
	w.Enqueue(raw, srv.URL+"/inbox")

	waitFor(t, func() bool { return rec.count() == 1 })
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, raw, rec.bodies[0])
	assert.Equal(t, "application/activity+json", rec.types[0])
}

func TestDeliveryWorker_OneDeadInboxDoesNotBlockOthers(t *testing.T) {
	healthy := &inboxRecorder{}
	healthySrv := httptest.NewServer(healthy.handler(http.StatusAccepted))
	defer healthySrv.Close()

	failing := &inboxRecorder{}
	failingSrv := httptest.NewServer(failing.handler(http.StatusInternalServerError))
	defer failingSrv.Close()

	w := NewDeliveryWorker(16, time.Second)
	w.backoff = time.Millisecond
	stop := w.Start(2)
	defer stop(context.Background())

	raw := []byte(`{"type":"EmojiReact"}`)
	w.EnqueueBulk(raw, []string{failingSrv.URL, healthySrv.URL, healthySrv.URL})

	waitFor(t, func() bool { return healthy.count() == 2 })
	// The failing target is retried to exhaustion and then dropped.
	waitFor(t, func() bool { return failing.count() == w.maxAttempts })
}

func TestDeliveryWorker_StopDrainsQueuedJobs(t *testing.T) {
	rec := &inboxRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusAccepted))
	defer srv.Close()

	w := NewDeliveryWorker(16, time.Second)
	for i := 0; i < 5; i++ {
		w.Enqueue([]byte(`{"type":"Like"}`), srv.URL)
	}
	stop := w.Start(2)
	require.NoError(t, stop(context.Background()))
	assert.Equal(t, 5, rec.count())

	// Enqueue after stop is dropped, not delivered and not a panic.
	w.Enqueue([]byte(`{"type":"Like"}`), srv.URL)
	assert.Equal(t, 5, rec.count())
}

func TestDeliveryWorker_SkipsEmptyInboxURL(t *testing.T) {
	w := NewDeliveryWorker(1, time.Second)
	w.Enqueue([]byte("{}"), "")
	assert.Equal(t, 0, len(w.ch))
}

func TestDeliveryWorker_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	w := NewDeliveryWorker(1, time.Second)
	// No workers running, so the second job finds the queue full.
	w.Enqueue([]byte("{}"), "https://remote.example/inbox")
	done := make(chan struct{})
	go func() {
		w.Enqueue([]byte("{}"), "https://remote.example/inbox")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue on a full queue must not block")
	}
	require.Equal(t, 1, len(w.ch))
}
