package quiz

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shivapreetham/quiz-application/internal/domain"
)

// SetRepository loads reusable problem sets (from cache/backing store).
type SetRepository interface {
	GetSet(ctx context.Context, setID string) (domain.ProblemSet, error)
}

// Registry owns one orchestrator per room. The registry map has its own
// lock, separate from per-room locking; rooms never synchronize with each
// other.
type Registry struct {
	now  func() time.Time
	sets SetRepository

	mu    sync.RWMutex
	rooms map[string]*Orchestrator

	// problemSeq issues process-unique problem ids. Owned here rather
	// than as a package global so two registries never share a sequence.
	problemSeq atomic.Uint64
}

// NewRegistry builds a registry. sets may be nil when no problem-set
// library is configured.
func NewRegistry(sets SetRepository) *Registry {
	return NewRegistryWithClock(sets, time.Now)
}

// NewRegistryWithClock is test-only for deterministic timestamps.
func NewRegistryWithClock(sets SetRepository, now func() time.Time) *Registry {
	return &Registry{
		now:   now,
		sets:  sets,
		rooms: make(map[string]*Orchestrator),
	}
}

// Create registers a new room with the given config.
func (r *Registry) Create(roomID string, cfg domain.QuizConfig) error {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return domain.ErrEmptyRoomID
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg = cfg.Normalized()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rooms[roomID]; exists {
		return domain.ErrRoomExists
	}
	r.rooms[roomID] = newOrchestrator(roomID, cfg, r.now)
	return nil
}

// Delete tears a room down, cancelling all of its timers.
func (r *Registry) Delete(roomID string) error {
	r.mu.Lock()
	o, ok := r.rooms[roomID]
	if ok {
		delete(r.rooms, roomID)
	}
	r.mu.Unlock()

	if !ok {
		return domain.ErrRoomNotFound
	}
	o.close()
	return nil
}

// Room looks a room up or fails with a not-found error.
func (r *Registry) Room(roomID string) (*Orchestrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return o, nil
}

// RoomSummary is the admin list view of one room.
type RoomSummary struct {
	RoomID             string            `json:"roomId"`
	Status             domain.Status     `json:"status"`
	ProblemCount       int               `json:"problemCount"`
	ParticipantCount   int               `json:"userCount"`
	Config             domain.QuizConfig `json:"config"`
	ScheduledStartTime int64             `json:"scheduledStartTime,omitempty"`
}

// Summaries lists all rooms, ordered by room id.
func (r *Registry) Summaries() []RoomSummary {
	r.mu.RLock()
	orchestrators := make([]*Orchestrator, 0, len(r.rooms))
	for _, o := range r.rooms {
		orchestrators = append(orchestrators, o)
	}
	r.mu.RUnlock()

	summaries := make([]RoomSummary, 0, len(orchestrators))
	for _, o := range orchestrators {
		summaries = append(summaries, o.summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].RoomID < summaries[j].RoomID
	})
	return summaries
}

func (o *Orchestrator) summary() RoomSummary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return RoomSummary{
		RoomID:             o.roomID,
		Status:             o.status,
		ProblemCount:       len(o.problems),
		ParticipantCount:   len(o.participants),
		Config:             o.config,
		ScheduledStartTime: o.config.ScheduledStartTime,
	}
}

// AddProblem validates input, assigns an id, and appends the problem to
// the room's bank. Returns the new problem id.
func (r *Registry) AddProblem(roomID string, in domain.ProblemInput) (string, error) {
	o, err := r.Room(roomID)
	if err != nil {
		return "", err
	}
	if err := in.Validate(); err != nil {
		return "", err
	}
	p := domain.NewProblem(r.nextProblemID(), in)
	if err := o.addProblems([]*domain.Problem{p}); err != nil {
		return "", err
	}
	return p.ID, nil
}

// ImportProblems bulk-adds problems. Every input is validated before any
// is added, so a bad entry rejects the whole import.
func (r *Registry) ImportProblems(roomID string, inputs []domain.ProblemInput) (int, error) {
	o, err := r.Room(roomID)
	if err != nil {
		return 0, err
	}
	if len(inputs) == 0 {
		return 0, domain.Validationf("no problems provided")
	}
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return 0, domain.Validationf("problem %d: %v", i+1, err)
		}
	}
	problems := make([]*domain.Problem, 0, len(inputs))
	for _, in := range inputs {
		problems = append(problems, domain.NewProblem(r.nextProblemID(), in))
	}
	if err := o.addProblems(problems); err != nil {
		return 0, err
	}
	return len(problems), nil
}

// ImportSet imports a named problem set from the configured library.
func (r *Registry) ImportSet(ctx context.Context, roomID, setID string) (int, error) {
	if r.sets == nil {
		return 0, domain.Validationf("no problem set library configured")
	}
	set, err := r.sets.GetSet(ctx, setID)
	if err != nil {
		return 0, err
	}
	return r.ImportProblems(roomID, set.Problems)
}

func (r *Registry) nextProblemID() string {
	return strconv.FormatUint(r.problemSeq.Add(1), 10)
}
