package spuz

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/spuzmc/spuz-get/pkg/download"
	"github.com/spuzmc/spuz-get/pkg/integrity"
	"github.com/spuzmc/spuz-get/pkg/logging"
	"github.com/spuzmc/spuz-get/pkg/mirror"
	"github.com/spuzmc/spuz-get/pkg/progress"
)

var ErrIncomplete = errors.New("download incomplete")

// Getter runs a job end to end: route, skip what is already verified, push,
// report, then verify and record digests.
type Getter struct {
	Worker *download.Worker
	// Router and State are optional.
	Router   *mirror.Router
	State    *integrity.Statefile
	Progress progress.Options
	// VerifyConcurrency bounds parallel hashing. Defaults to GOMAXPROCS.
	VerifyConcurrency int
}

type Result struct {
	progress.Summary
	// Tasks is the job that was pushed, after routing and skipping. Indices
	// in the summary refer to it.
	Tasks    []download.Task
	Skipped  int
	Verified int
	// Mismatched lists finished tasks whose content did not match their
	// digest.
	Mismatched map[int]error
}

func (g *Getter) Run(ctx context.Context, job download.Job) (Result, error) {
	logger := logging.GetLogger()
	tasks, skipped := g.pending(job.Tasks())
	if g.Router != nil && g.Router.Enabled() {
		routed, err := g.Router.RouteTasks(tasks)
		if err != nil {
			return Result{}, err
		}
		tasks = routed
	}
	builder := download.NewJobBuilder()
	for _, task := range tasks {
		builder.PushTask(task)
	}
	if skipped > 0 {
		logger.Info().Int("skipped", skipped).Int("tasks", len(tasks)).Msg("Already verified")
	}

	handle := g.Worker.Push(ctx, builder.Build())
	opts := g.Progress
	opts.Job = handle.ID().String()

	// Keep draining after ctx ends so that every execution can exit and the
	// stream reaches its end.
	drainCtx := context.WithoutCancel(ctx)
	rx, err := handle.Drain(drainCtx)
	if err != nil {
		handle.Cancel()
		return Result{}, err
	}
	summary, err := progress.NewReporter(opts).Run(drainCtx, rx)
	rx.Release()
	if err != nil {
		handle.Cancel()
		return Result{}, err
	}
	if err := handle.Wait(drainCtx); err != nil {
		return Result{}, err
	}

	result := Result{Summary: summary, Tasks: tasks, Skipped: skipped, Mismatched: map[int]error{}}
	if err := g.verify(&result); err != nil {
		return result, err
	}
	if g.State != nil {
		if err := g.State.Save(); err != nil {
			return result, err
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if len(result.Failed) > 0 || len(result.Mismatched) > 0 || len(result.Incomplete()) > 0 {
		return result, fmt.Errorf("%w: %d failed, %d corrupt, %d of %d not finished",
			ErrIncomplete, len(result.Failed), len(result.Mismatched), len(result.Incomplete()), len(tasks))
	}
	return result, nil
}

// pending drops tasks whose destination is tracked in the state file with the
// same digest.
func (g *Getter) pending(tasks []download.Task) ([]download.Task, int) {
	if g.State == nil {
		return tasks, 0
	}
	out := tasks[:0]
	skipped := 0
	for _, task := range tasks {
		if task.Digest != "" {
			if digest, ok := g.State.Lookup(task.Dest); ok && digest == task.Digest {
				if _, err := os.Stat(task.Dest); err == nil {
					skipped++
					continue
				}
			}
		}
		out = append(out, task)
	}
	return out, skipped
}

func (g *Getter) verify(result *Result) error {
	logger := logging.GetLogger()
	limit := g.VerifyConcurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	errGroup := new(errgroup.Group)
	errGroup.SetLimit(limit)
	for _, index := range result.Finished {
		task := result.Tasks[index]
		if task.Digest == "" {
			continue
		}
		index := index
		errGroup.Go(func() error {
			err := integrity.Verify(task.Dest, task.Digest)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Verified++
				if g.State != nil {
					g.State.Track(task.Dest, task.Digest)
				}
			case errors.Is(err, integrity.ErrDigestMismatch):
				logger.Warn().Err(err).Str("dest", task.Dest).Msg("Corrupt")
				result.Mismatched[index] = err
				if g.State != nil {
					g.State.Untrack(task.Dest)
				}
			default:
				return err
			}
			return nil
		})
	}
	return errGroup.Wait()
}
