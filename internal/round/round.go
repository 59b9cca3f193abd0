// Package round implements spec §4.L's round scheduler: a self-rescheduling
// single-shot timer that, on each firing (or on a manual Execute call), fetches every
// registered board's subject list and every registered thread's DAT,
// swallowing and logging per-item errors, then reports which boards and
// threads actually changed.
package round

import (
	"context"
	"sync"
	"time"

	"github.com/roflsunriz/VBBB-sub002/internal/util"
)

// ThreadRef names one registered thread within a board.
type ThreadRef struct {
	BoardURL string
	ThreadID string
}

// Fetcher performs the actual network work for one board or thread. Both
// methods report whether the fetch produced a change (new subject.txt
// content, new DAT bytes) so the round's completion event can name what
// updated.
type Fetcher interface {
	FetchBoard(ctx context.Context, boardURL string) (updated bool, err error)
	FetchThread(ctx context.Context, ref ThreadRef) (updated bool, err error)
}

// Result is the event emitted when a round completes.
type Result struct {
	UpdatedBoards  []string
	UpdatedThreads []ThreadRef
}

// maxRoundConcurrency caps how many board/thread fetches run at once during
// a single round.
const maxRoundConcurrency = 8

// Scheduler drives periodic rounds. It is safe for concurrent use.
type Scheduler struct {
	fetcher    Fetcher
	boards     func() []string
	threads    func() []ThreadRef
	onComplete func(Result)
	logger     *util.Logger

	mu              sync.Mutex
	enabled         bool
	intervalMinutes int
	timer           *time.Timer
	generation      int
}

// New creates a Scheduler. boards and threads are called fresh at the start
// of every round so newly registered items are picked up without restarting
// the scheduler; onComplete is invoked after each round: from the timer's
// goroutine for scheduled rounds, and from the caller's goroutine for a
// manual Execute call.
func New(fetcher Fetcher, boards func() []string, threads func() []ThreadRef, onComplete func(Result), logger *util.Logger) *Scheduler {
	return &Scheduler{
		fetcher:    fetcher,
		boards:     boards,
		threads:    threads,
		onComplete: onComplete,
		logger:     logger,
	}
}

// Configure sets whether the scheduler is enabled and, when enabled, the
// firing interval in minutes. Reconfiguring while already enabled cancels
// the existing timer and starts a new one at the new interval; disabling
// stops it. Calling Configure with the same (enabled, intervalMinutes) pair
// it already holds is a no-op.
func (s *Scheduler) Configure(enabled bool, intervalMinutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enabled == s.enabled && intervalMinutes == s.intervalMinutes {
		return
	}
	s.stopTimerLocked()
	s.enabled = enabled
	s.intervalMinutes = intervalMinutes
	if enabled {
		s.startTimerLocked()
	}
}

// stopTimerLocked must be called with s.mu held.
func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

// startTimerLocked must be called with s.mu held; it arms a single-shot
// timer that reschedules itself after each round, rather than a
// time.Ticker, so a round that outlasts the interval cannot pile up
// overlapping firings.
func (s *Scheduler) startTimerLocked() {
	gen := s.generation
	interval := time.Duration(s.intervalMinutes) * time.Minute
	if interval <= 0 {
		return
	}
	s.timer = time.AfterFunc(interval, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen int) {
	s.mu.Lock()
	if gen != s.generation || !s.enabled {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.runRound(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation && s.enabled {
		s.startTimerLocked()
	}
}

// Execute runs one round immediately, independent of the timer. It returns
// the round's Result in addition to invoking onComplete, so callers driving
// a manual refresh don't need to wait on the callback.
func (s *Scheduler) Execute(ctx context.Context) Result {
	return s.runRound(ctx)
}

// State reports the scheduler's current configuration, for the round:state
// RPC channel.
func (s *Scheduler) State() (enabled bool, intervalMinutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled, s.intervalMinutes
}

// Stop disables the scheduler and cancels any pending timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.enabled = false
}

func (s *Scheduler) runRound(ctx context.Context) Result {
	boards := s.boards()
	threads := s.threads()

	p := newPool(maxRoundConcurrency)
	var mu sync.Mutex
	result := Result{}

	for _, boardURL := range boards {
		boardURL := boardURL
		p.submit(func() {
			updated, err := s.fetcher.FetchBoard(ctx, boardURL)
			if err != nil {
				if s.logger != nil {
					s.logger.Errorf("round", "fetch board %s: %v", boardURL, err)
				}
				return
			}
			if updated {
				mu.Lock()
				result.UpdatedBoards = append(result.UpdatedBoards, boardURL)
				mu.Unlock()
			}
		})
	}
	for _, ref := range threads {
		ref := ref
		p.submit(func() {
			updated, err := s.fetcher.FetchThread(ctx, ref)
			if err != nil {
				if s.logger != nil {
					s.logger.Errorf("round", "fetch thread %s/%s: %v", ref.BoardURL, ref.ThreadID, err)
				}
				return
			}
			if updated {
				mu.Lock()
				result.UpdatedThreads = append(result.UpdatedThreads, ref)
				mu.Unlock()
			}
		})
	}
	p.closeAndWait()

	if s.onComplete != nil {
		s.onComplete(result)
	}
	return result
}
