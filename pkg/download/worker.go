package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/spuzmc/spuz-get/pkg/decompress"
	"github.com/spuzmc/spuz-get/pkg/logging"
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Worker runs jobs against a shared HTTP client. All jobs pushed to the same
// Worker share its concurrency limit.
type Worker struct {
	client     HTTPClient
	permits    *semaphore.Weighted
	bufferSize int
	policy     CompletionPolicy
}

func NewWorker(client HTTPClient, opts Options) *Worker {
	return &Worker{
		client:     client,
		permits:    semaphore.NewWeighted(opts.concurrency()),
		bufferSize: opts.bufferSize(),
		policy:     opts.Policy,
	}
}

// Push starts every task of job and returns immediately. JobStarted is
// already queued when Push returns.
func (w *Worker) Push(ctx context.Context, job Job) *JobHandle {
	h := newJobHandle(ctx)
	logger := logging.GetLogger().With().Str("job", h.id.String()).Logger()
	logger.Debug().
		Int("tasks", job.TaskCount()).
		Str("size", humanize.Bytes(job.TotalBytes())).
		Msg("Job")

	h.queue.Emit(jobStarted(job.TaskCount(), job.TotalBytes()))

	progress := newCompletion(w.policy, job.TaskCount())
	var wg sync.WaitGroup
	for i, task := range job.tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			w.run(h, logger, progress, i, task)
		}(i, task)
	}
	go func() {
		wg.Wait()
		h.finish()
	}()
	return h
}

func (w *Worker) run(h *JobHandle, logger zerolog.Logger, progress *completion, index int, task Task) {
	if err := w.permits.Acquire(h.ctx, 1); err != nil {
		w.settle(h, progress, cancelled)
		return
	}
	defer w.permits.Release(1)

	h.queue.Emit(taskEvent(TaskStarted, index))
	err := w.transfer(h.ctx, index, task, h.queue)
	switch {
	case err == nil:
		logger.Debug().Str("dest", task.Dest).Msg("Complete")
		h.queue.Emit(taskEvent(TaskFinished, index))
		w.settle(h, progress, finished)
	case h.ctx.Err() != nil:
		logger.Debug().Str("dest", task.Dest).Msg("Cancelled")
		w.settle(h, progress, cancelled)
	default:
		logger.Warn().Err(err).Str("url", task.URL.String()).Str("dest", task.Dest).Msg("Failed")
		h.queue.Emit(taskFailed(index, err))
		w.settle(h, progress, failed)
	}
}

func (w *Worker) settle(h *JobHandle, progress *completion, o outcome) {
	if ev, ok := progress.settle(o); ok {
		h.queue.Emit(ev)
	}
}

func (w *Worker) transfer(ctx context.Context, index int, task Task, emitter Emitter) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", task.URL, err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("error executing request for %s: %w", task.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s", ErrUnexpectedHTTPStatus(resp.StatusCode), task.URL)
	}

	tracked := NewTrackingReader(resp.Body, emitter, index, task.Size)
	body, err := decompress.NewReader(task.Codec, tracked)
	if err != nil {
		return fmt.Errorf("error decoding response for %s: %w", task.URL, err)
	}

	if err := os.MkdirAll(filepath.Dir(task.Dest), 0755); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", task.Dest, err)
	}
	out, err := os.Create(task.Dest)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", task.Dest, err)
	}
	if err := w.copy(ctx, out, body, task); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (w *Worker) copy(ctx context.Context, out io.Writer, body io.Reader, task Task) error {
	buf := make([]byte, w.bufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("error writing %s: %w", task.Dest, werr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading response for %s: %w", task.URL, err)
		}
	}
}
