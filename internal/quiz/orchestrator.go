package quiz

import (
	"sync"
	"time"

	"github.com/shivapreetham/quiz-application/internal/domain"
)

// Orchestrator owns one room: its problem bank, participant roster, state
// machine, and timers. Every transition runs under the room mutex, so
// rooms are serialized internally and fully independent of each other.
type Orchestrator struct {
	roomID string
	now    func() time.Time

	mu           sync.Mutex
	status       domain.Status
	config       domain.QuizConfig
	problems     []*domain.Problem
	participants []*domain.Participant
	byName       map[string]*domain.Participant

	active        int
	actualStart   int64
	joinWindowEnd int64
	lateJoins     map[string]int64

	// timerGen invalidates in-flight timers: every transition that
	// supersedes a timer bumps the generation, and a firing timer that
	// finds a newer generation does nothing.
	timerGen      uint64
	scheduleTimer *time.Timer
	deadlineTimer *time.Timer

	subscribers map[chan domain.Snapshot]struct{}
	closed      bool
}

func newOrchestrator(roomID string, cfg domain.QuizConfig, now func() time.Time) *Orchestrator {
	return &Orchestrator{
		roomID:      roomID,
		now:         now,
		status:      domain.StatusNotStarted,
		config:      cfg,
		byName:      make(map[string]*domain.Participant),
		lateJoins:   make(map[string]int64),
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

// RoomID returns the room identifier.
func (o *Orchestrator) RoomID() string { return o.roomID }

// Status returns the current lifecycle state.
func (o *Orchestrator) Status() domain.Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Schedule arms a one-shot start at startAt (epoch ms). Rescheduling an
// already scheduled room replaces the pending timer.
func (o *Orchestrator) Schedule(startAt int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return domain.ErrRoomNotFound
	}
	if o.status != domain.StatusNotStarted && o.status != domain.StatusScheduled {
		return domain.Statef("cannot schedule: quiz is %s", o.status)
	}
	if len(o.problems) == 0 {
		return domain.Statef("cannot schedule a quiz with no problems")
	}
	nowMs := o.now().UnixMilli()
	if startAt <= nowMs {
		return domain.Statef("scheduled start time is in the past")
	}

	o.invalidateTimersLocked()
	o.status = domain.StatusScheduled
	o.config.ScheduledStartTime = startAt

	gen := o.timerGen
	o.scheduleTimer = time.AfterFunc(time.Duration(startAt-nowMs)*time.Millisecond, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.timerGen != gen || o.status != domain.StatusScheduled {
			return
		}
		if len(o.problems) == 0 {
			// The bank was emptied while scheduled; fall back instead of
			// starting an unplayable quiz.
			o.invalidateTimersLocked()
			o.status = domain.StatusNotStarted
			o.config.ScheduledStartTime = 0
			o.broadcastLocked()
			return
		}
		o.startLocked(0)
	})

	o.broadcastLocked()
	return nil
}

// Start begins the quiz immediately, cancelling any pending scheduled
// start. joinWindowSec > 0 overrides the configured join window; zero
// falls back to QuizConfig.JoinWindowDuration.
func (o *Orchestrator) Start(joinWindowSec int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return domain.ErrRoomNotFound
	}
	if o.status != domain.StatusNotStarted && o.status != domain.StatusScheduled {
		return domain.Statef("cannot start: quiz is %s", o.status)
	}
	if len(o.problems) == 0 {
		return domain.Statef("cannot start a quiz with no problems")
	}
	o.startLocked(joinWindowSec)
	return nil
}

func (o *Orchestrator) startLocked(joinWindowSec int) {
	nowMs := o.now().UnixMilli()

	o.invalidateTimersLocked()
	o.status = domain.StatusQuestion
	o.actualStart = nowMs
	o.config.ActualStartTime = nowMs
	o.active = 0

	if joinWindowSec <= 0 {
		joinWindowSec = o.config.JoinWindowDuration
	}
	if joinWindowSec > 0 {
		o.joinWindowEnd = nowMs + int64(joinWindowSec)*1000
	} else {
		o.joinWindowEnd = 0
	}

	switch o.config.DurationType {
	case domain.DurationTotal:
		for _, p := range o.problems {
			p.StartTime = nowMs
			p.Submissions = nil
		}
		o.broadcastLocked()
		o.armDeadlineLocked(time.Duration(o.config.TotalDuration)*time.Second, func() {
			o.endLocked()
		})
	default: // per_question
		o.activateLocked()
	}
}

// activateLocked makes problems[active] the live question: stamps its
// start time, wipes stale submissions, broadcasts, and arms the
// per-question deadline.
func (o *Orchestrator) activateLocked() {
	p := o.problems[o.active]
	p.StartTime = o.now().UnixMilli()
	p.Submissions = nil
	o.broadcastLocked()

	o.armDeadlineLocked(time.Duration(o.config.DurationPerQuestion)*time.Second, func() {
		// Deadline expiry is an implicit skip for everyone who never
		// answered.
		o.advanceLocked()
	})
}

// Next advances to the following question on an explicit admin command.
func (o *Orchestrator) Next() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return domain.ErrRoomNotFound
	}
	if o.status != domain.StatusQuestion || o.config.DurationType != domain.DurationPerQuestion {
		return domain.Statef("no active question to advance")
	}
	o.advanceLocked()
	return nil
}

// advanceLocked deactivates the current question and activates the next,
// or ends the quiz when none remains. It is a no-op outside an active
// per_question quiz, which makes the timer/submission race harmless.
func (o *Orchestrator) advanceLocked() {
	if o.status != domain.StatusQuestion || o.config.DurationType != domain.DurationPerQuestion {
		return
	}
	o.invalidateTimersLocked()
	o.lateJoins = make(map[string]int64)
	o.active++
	if o.active < len(o.problems) {
		o.activateLocked()
	} else {
		o.endLocked()
	}
}

// endLocked transitions to ended, cancelling all timers and broadcasting
// the final leaderboard. Idempotent.
func (o *Orchestrator) endLocked() {
	if o.status == domain.StatusEnded {
		return
	}
	o.invalidateTimersLocked()
	o.status = domain.StatusEnded
	o.broadcastLocked()
}

// armDeadlineLocked schedules fn after d. fn runs under the room lock and
// only if no newer transition has superseded the timer.
func (o *Orchestrator) armDeadlineLocked(d time.Duration, fn func()) {
	gen := o.timerGen
	o.deadlineTimer = time.AfterFunc(d, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.timerGen != gen {
			return
		}
		fn()
	})
}

func (o *Orchestrator) invalidateTimersLocked() {
	o.timerGen++
	if o.scheduleTimer != nil {
		o.scheduleTimer.Stop()
		o.scheduleTimer = nil
	}
	if o.deadlineTimer != nil {
		o.deadlineTimer.Stop()
		o.deadlineTimer = nil
	}
}

// close tears the room down: all timers are cancelled, subscriber
// channels are closed, and the closed flag makes every later lifecycle
// call on a retained pointer fail, so nothing can transition or re-arm a
// deleted room.
func (o *Orchestrator) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.invalidateTimersLocked()
	for ch := range o.subscribers {
		delete(o.subscribers, ch)
		close(ch)
	}
	o.closed = true
}

// Snapshot returns the current externally visible room state.
func (o *Orchestrator) Snapshot() domain.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() domain.Snapshot {
	switch o.status {
	case domain.StatusScheduled:
		return domain.ScheduledSnapshot{ScheduledStartTime: o.config.ScheduledStartTime}
	case domain.StatusQuestion:
		if o.config.DurationType == domain.DurationTotal {
			views := make([]domain.ProblemView, 0, len(o.problems))
			for _, p := range o.problems {
				views = append(views, p.View())
			}
			return domain.FreeAttemptSnapshot{
				Problems:          views,
				TotalQuestions:    len(o.problems),
				Config:            o.config,
				QuizDeadline:      o.actualStart + int64(o.config.TotalDuration)*1000,
				QuizStartTime:     o.actualStart,
				JoinWindowEndTime: o.joinWindowEndLocked(),
			}
		}
		p := o.problems[o.active]
		return domain.QuestionSnapshot{
			Problem:           p.View(),
			QuestionIndex:     o.active,
			TotalQuestions:    len(o.problems),
			Config:            o.config,
			QuestionDeadline:  p.StartTime + int64(o.config.DurationPerQuestion)*1000,
			QuizStartTime:     o.actualStart,
			JoinWindowEndTime: o.joinWindowEndLocked(),
		}
	case domain.StatusEnded:
		return domain.EndedSnapshot{Leaderboard: o.leaderboardLocked()}
	default:
		return domain.NotStartedSnapshot{}
	}
}

func (o *Orchestrator) joinWindowEndLocked() *int64 {
	if o.joinWindowEnd == 0 {
		return nil
	}
	end := o.joinWindowEnd
	return &end
}

// Subscribe returns a channel of snapshot broadcasts plus a cancel
// function the caller must invoke to avoid leaks. The current snapshot is
// delivered first.
func (o *Orchestrator) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	o.subscribers[ch] = struct{}{}
	// The channel is fresh and buffered, so this cannot block.
	ch <- o.snapshotLocked()
	o.mu.Unlock()

	cancel := func() {
		o.mu.Lock()
		if _, ok := o.subscribers[ch]; ok {
			delete(o.subscribers, ch)
			close(ch)
		}
		o.mu.Unlock()
	}
	return ch, cancel
}

// broadcastLocked fans the current snapshot out without ever blocking a
// state transition: a full subscriber buffer loses its oldest entry, and
// if the freed slot is stolen before the retry the update is dropped for
// that subscriber rather than waited on.
func (o *Orchestrator) broadcastLocked() {
	snap := o.snapshotLocked()
	for ch := range o.subscribers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
