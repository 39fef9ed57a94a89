// Package progress consumes a job's event stream and logs how far along it
// is.
package progress

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/spuzmc/spuz-get/pkg/download"
	"github.com/spuzmc/spuz-get/pkg/logging"
)

const defaultInterval = 2 * time.Second

type EventSource interface {
	Recv(ctx context.Context) (download.Event, error)
}

type Options struct {
	// Interval between progress log lines. Default: 2s. Negative disables
	// periodic lines.
	Interval time.Duration
	// Job labels log lines, usually the job handle's ID.
	Job string
}

// Summary describes a drained event stream.
type Summary struct {
	Tasks      int
	TotalBytes uint64
	// BytesSeen is the sum of every TaskChunk, which counts compressed bytes
	// for compressed tasks.
	BytesSeen uint64
	Started   int
	Finished  []int
	Failed    map[int]error
	// Outcome is JobFinished, JobFailed, or JobStarted if the job never
	// reached a job level verdict.
	Outcome download.EventKind
	Elapsed time.Duration
}

// Incomplete lists task indices that neither finished nor failed.
func (s Summary) Incomplete() []int {
	done := make(map[int]bool, len(s.Finished)+len(s.Failed))
	for _, i := range s.Finished {
		done[i] = true
	}
	for i := range s.Failed {
		done[i] = true
	}
	var out []int
	for i := 0; i < s.Tasks; i++ {
		if !done[i] {
			out = append(out, i)
		}
	}
	return out
}

// Reporter tallies events as they are received. Counters are read by the
// periodic logger concurrently with Run.
type Reporter struct {
	opts     Options
	logger   zerolog.Logger
	tasks    atomic.Int64
	total    atomic.Uint64
	seen     atomic.Uint64
	active   atomic.Int64
	finished atomic.Int64
	failed   atomic.Int64
}

func NewReporter(opts Options) *Reporter {
	if opts.Interval == 0 {
		opts.Interval = defaultInterval
	}
	logger := logging.GetLogger()
	if opts.Job != "" {
		logger = logger.With().Str("job", opts.Job).Logger()
	}
	return &Reporter{opts: opts, logger: logger}
}

// Run drains src until it ends and returns what happened. It returns early
// with the partial summary and ctx's error if ctx ends first.
func (r *Reporter) Run(ctx context.Context, src EventSource) (Summary, error) {
	start := time.Now()
	summary := Summary{Failed: map[int]error{}, Outcome: download.JobStarted}

	stop := make(chan struct{})
	stopped := make(chan struct{})
	go r.logLoop(stop, stopped)
	defer func() {
		close(stop)
		<-stopped
	}()

	for {
		ev, err := src.Recv(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			summary.Elapsed = time.Since(start)
			return r.finish(summary), err
		}
		r.observe(&summary, ev)
	}
	summary.Elapsed = time.Since(start)
	summary = r.finish(summary)
	r.logFinal(summary)
	return summary, nil
}

func (r *Reporter) observe(s *Summary, ev download.Event) {
	switch ev.Kind {
	case download.JobStarted:
		s.Tasks = ev.Tasks
		s.TotalBytes = ev.Bytes
		r.tasks.Store(int64(ev.Tasks))
		r.total.Store(ev.Bytes)
	case download.TaskStarted:
		s.Started++
		r.active.Add(1)
	case download.TaskChunk:
		s.BytesSeen += uint64(ev.Size)
		r.seen.Add(uint64(ev.Size))
	case download.TaskFinished:
		s.Finished = append(s.Finished, ev.Task)
		r.active.Add(-1)
		r.finished.Add(1)
	case download.TaskFailed:
		s.Failed[ev.Task] = ev.Err
		r.active.Add(-1)
		r.failed.Add(1)
	case download.JobFinished, download.JobFailed:
		s.Outcome = ev.Kind
	}
}

func (r *Reporter) finish(s Summary) Summary {
	sort.Ints(s.Finished)
	return s
}

func (r *Reporter) logLoop(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	if r.opts.Interval < 0 {
		<-stop
		return
	}
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.logProgress()
		}
	}
}

func (r *Reporter) logProgress() {
	total := r.total.Load()
	seen := r.seen.Load()
	ev := r.logger.Info().
		Int64("finished", r.finished.Load()).
		Int64("failed", r.failed.Load()).
		Int64("active", r.active.Load()).
		Int64("tasks", r.tasks.Load()).
		Str("bytes", humanize.IBytes(seen)).
		Str("size", humanize.IBytes(total))
	if total > 0 {
		ev = ev.Str("percent", humanize.FtoaWithDigits(float64(seen)/float64(total)*100, 1))
	}
	ev.Msg("Progress")
}

func (r *Reporter) logFinal(s Summary) {
	var throughput uint64
	if secs := s.Elapsed.Seconds(); secs > 0 {
		throughput = uint64(float64(s.BytesSeen) / secs)
	}
	ev := r.logger.Info()
	if len(s.Failed) > 0 {
		ev = r.logger.Warn()
	}
	ev.Int("finished", len(s.Finished)).
		Int("failed", len(s.Failed)).
		Int("tasks", s.Tasks).
		Str("bytes", humanize.IBytes(s.BytesSeen)).
		Str("elapsed", s.Elapsed.Round(time.Millisecond).String()).
		Str("throughput", humanize.IBytes(throughput)+"/s").
		Str("outcome", s.Outcome.String()).
		Msg("Complete")
}
