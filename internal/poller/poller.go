package poller

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/clipworks/clipctl/internal/models"
)

// Phase describes where a watch is in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePolling
	PhaseCompleted
	PhaseFailed
	PhaseAbandoned
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePolling:
		return "polling"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	case PhaseAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase is final.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed || p == PhaseAbandoned
}

// StatusClient queries the state of a processing job.
type StatusClient interface {
	JobStatus(ctx context.Context, jobID string) (models.JobState, error)
}

// Result is the terminal outcome of a watch.
type Result struct {
	Phase Phase
	State models.JobState
	Err   error
}

// Defaults for watcher options.
const (
	DefaultInterval  = 3 * time.Second
	DefaultMaxErrors = 30
)

// Options configures a watcher.
type Options struct {
	// Interval is the delay between consecutive status queries.
	Interval time.Duration
	// MaxErrors is the number of consecutive failed queries tolerated
	// before the watch is abandoned. The counter resets on any success.
	MaxErrors int
	Logger    *log.Logger
}

// Watcher polls a single job until it reaches a terminal state. Queries run
// strictly one at a time; a slow response delays the next query rather than
// overlapping it.
type Watcher struct {
	client  StatusClient
	jobID   string
	opts    Options
	updates chan models.JobState
	result  chan Result
	once    sync.Once

	mu    sync.Mutex
	phase Phase
}

// NewWatcher creates a watcher for the given job. Zero option fields take
// the package defaults.
func NewWatcher(client StatusClient, jobID string, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = DefaultMaxErrors
	}
	return &Watcher{
		client:  client,
		jobID:   jobID,
		opts:    opts,
		updates: make(chan models.JobState, 8),
		result:  make(chan Result, 1),
		phase:   PhaseIdle,
	}
}

// Updates streams progress snapshots. Sends never block; a slow consumer
// misses intermediate snapshots, not the terminal result. The channel is
// closed when the watch ends.
func (w *Watcher) Updates() <-chan models.JobState {
	return w.updates
}

// Result delivers the terminal outcome. Exactly one result is sent per
// watch; the channel is buffered so the result is retained even if nobody is
// receiving when the watch ends.
func (w *Watcher) Result() <-chan Result {
	return w.result
}

// Phase returns the watch's current phase.
func (w *Watcher) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

func (w *Watcher) setPhase(p Phase) {
	w.mu.Lock()
	w.phase = p
	w.mu.Unlock()
}

// Start begins polling in a new goroutine. The first query happens
// immediately; subsequent queries wait out the interval. The watch ends when
// the job reaches a terminal status, the error bound is hit, or ctx is
// canceled.
func (w *Watcher) Start(ctx context.Context) {
	w.setPhase(PhasePolling)

	go func() {
		ticker := time.NewTicker(w.opts.Interval)
		defer ticker.Stop()

		var last models.JobState
		consecutiveErrors := 0

		for {
			state, err := w.client.JobStatus(ctx, w.jobID)
			if err != nil {
				consecutiveErrors++
				if w.opts.Logger != nil {
					w.opts.Logger.Debug("status query failed",
						"job_id", w.jobID, "attempt", consecutiveErrors, "error", err)
				}
				if consecutiveErrors >= w.opts.MaxErrors {
					w.finish(Result{Phase: PhaseAbandoned, State: last, Err: err})
					return
				}
			} else {
				consecutiveErrors = 0
				last = state
				w.sendUpdate(state)

				if state.IsTerminal() {
					phase := PhaseCompleted
					if state.Status == models.JobFailed {
						phase = PhaseFailed
					}
					w.finish(Result{Phase: phase, State: state})
					return
				}
			}

			select {
			case <-ctx.Done():
				w.finish(Result{Phase: PhaseAbandoned, State: last, Err: ctx.Err()})
				return
			case <-ticker.C:
			}
		}
	}()
}

// sendUpdate forwards a snapshot without blocking the poll loop.
func (w *Watcher) sendUpdate(state models.JobState) {
	select {
	case w.updates <- state:
	default:
	}
}

// finish records the terminal phase and delivers the result exactly once.
func (w *Watcher) finish(res Result) {
	w.once.Do(func() {
		w.setPhase(res.Phase)
		if w.opts.Logger != nil {
			w.opts.Logger.Info("watch finished",
				"job_id", w.jobID, "phase", res.Phase.String())
		}
		w.result <- res
		close(w.result)
		close(w.updates)
	})
}
