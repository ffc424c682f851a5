package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yuzuru-dev/fedilike/backend/pkg/logger"
)

// Deliverer queues outbound activity deliveries. Every delivery is
// fire-and-forget from the pipeline's perspective: failures are logged, never
// surfaced, and never affect other targets.
type Deliverer interface {
	Enqueue(raw []byte, inboxURL string)
	EnqueueBulk(raw []byte, inboxURLs []string)
}

type deliveryJob struct {
	raw      []byte
	inboxURL string
	enqAt    time.Time
}

// DeliveryWorker posts raw activity documents to remote inboxes with a small
// worker pool and bounded retry
type DeliveryWorker struct {
	client      *http.Client
	ch          chan deliveryJob
	maxAttempts int
	backoff     time.Duration

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

func NewDeliveryWorker(queueSize int, requestTimeout time.Duration) *DeliveryWorker {
	if queueSize <= 0 {
		queueSize = 10000
	}
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	return &DeliveryWorker{
		client:      &http.Client{Timeout: requestTimeout},
		ch:          make(chan deliveryJob, queueSize),
		maxAttempts: 3,
		backoff:     500 * time.Millisecond,
	}
}

// Start launches the worker pool and returns a stop function. Stopping closes
// the queue so the workers drain every job already accepted, then waits for
// them up to the caller's context deadline.
func (w *DeliveryWorker) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	for i := 0; i < workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for job := range w.ch {
				w.deliver(job)
			}
		}()
	}
	return func(ctx context.Context) error {
		w.mu.Lock()
		if !w.stopped {
			w.stopped = true
			close(w.ch)
		}
		w.mu.Unlock()

		done := make(chan struct{})
		go func() {
			w.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Enqueue schedules one delivery; a full or stopped queue drops the job with
// a warning rather than blocking ingestion
func (w *DeliveryWorker) Enqueue(raw []byte, inboxURL string) {
	if inboxURL == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		logger.Warn("delivery queue stopped, drop job", zap.String("inbox_url", inboxURL))
		return
	}
	select {
	case w.ch <- deliveryJob{raw: raw, inboxURL: inboxURL, enqAt: time.Now()}:
	default:
		logger.Warn("delivery queue full, drop job", zap.String("inbox_url", inboxURL))
	}
}

// EnqueueBulk schedules one delivery per inbox, each as an independent task
func (w *DeliveryWorker) EnqueueBulk(raw []byte, inboxURLs []string) {
	for _, inboxURL := range inboxURLs {
		w.Enqueue(raw, inboxURL)
	}
}

func (w *DeliveryWorker) deliver(job deliveryJob) {
	var err error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if err = w.post(job); err == nil {
			return
		}
		if attempt < w.maxAttempts {
			time.Sleep(w.backoff * time.Duration(1<<(attempt-1)))
		}
	}
	logger.Warn("delivery failed",
		zap.String("inbox_url", job.inboxURL),
		zap.Duration("queued_for", time.Since(job.enqAt)),
		zap.Error(err))
}

func (w *DeliveryWorker) post(job deliveryJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.inboxURL, bytes.NewReader(job.raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/activity+json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("inbox %s responded %d", job.inboxURL, resp.StatusCode)
	}
	return nil
}
