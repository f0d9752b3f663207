package quiz_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shivapreetham/quiz-application/internal/domain"
	"github.com/shivapreetham/quiz-application/internal/infra/memory"
	"github.com/shivapreetham/quiz-application/internal/quiz"
)

func TestCreateRejectsBadInput(t *testing.T) {
	reg := quiz.NewRegistry(nil)

	if err := reg.Create("  ", perQuestionConfig(20)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank room id, got %v", err)
	}
	if err := reg.Create("r1", domain.QuizConfig{DurationType: "sprint"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown duration type, got %v", err)
	}
	if err := reg.Create("r1", domain.QuizConfig{DurationType: domain.DurationPerQuestion}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing duration, got %v", err)
	}

	if err := reg.Create("r1", perQuestionConfig(20)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := reg.Create("r1", perQuestionConfig(20)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected duplicate room error, got %v", err)
	}
}

func TestLookupUnknownRoom(t *testing.T) {
	reg := quiz.NewRegistry(nil)
	if _, err := reg.Room("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if err := reg.Delete("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found on delete, got %v", err)
	}
}

func TestDeleteTearsDownRoom(t *testing.T) {
	reg := quiz.NewRegistry(nil)
	mustCreateRoom(t, reg, "r1", perQuestionConfig(20), 1)

	room, err := reg.Room("r1")
	if err != nil {
		t.Fatalf("room: %v", err)
	}
	if err := room.Schedule(time.Now().Add(100 * time.Millisecond).UnixMilli()); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	updates, cancel := room.Subscribe()
	defer cancel()
	drain(updates)

	if err := reg.Delete("r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The scheduled start must not fire into the deleted room; the
	// subscriber channel closes instead of receiving a question state.
	deadline := time.After(400 * time.Millisecond)
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if snap.Kind() == "question" {
				t.Fatalf("deleted room still started its quiz")
			}
		case <-deadline:
			t.Fatalf("subscriber channel not closed on delete")
		}
	}
}

func TestSummaries(t *testing.T) {
	reg := quiz.NewRegistry(nil)
	mustCreateRoom(t, reg, "beta", totalConfig(60), 2)
	mustCreateRoom(t, reg, "alpha", perQuestionConfig(20), 1)

	summaries := reg.Summaries()
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].RoomID != "alpha" || summaries[1].RoomID != "beta" {
		t.Fatalf("expected summaries sorted by room id, got %+v", summaries)
	}
	if summaries[1].ProblemCount != 2 || summaries[1].Status != domain.StatusNotStarted {
		t.Fatalf("unexpected summary: %+v", summaries[1])
	}
}

func TestProblemBankGuards(t *testing.T) {
	reg := quiz.NewRegistry(nil)
	mustCreateRoom(t, reg, "r1", perQuestionConfig(20), 0)

	if _, err := reg.AddProblem("r1", domain.ProblemInput{Title: "only title"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := reg.AddProblem("r1", domain.ProblemInput{
		Title:       "t",
		Description: "d",
		Options:     []domain.Option{{ID: 0, Title: "a"}},
		Answer:      0,
	}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for single option, got %v", err)
	}

	id1, err := reg.AddProblem("r1", sampleProblem("first"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	id2, err := reg.AddProblem("r1", sampleProblem("second"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id1 == id2 {
		t.Fatalf("problem ids must be unique, got %q twice", id1)
	}

	room, _ := reg.Room("r1")
	if err := room.ReorderProblems([]string{id2}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for partial reorder, got %v", err)
	}
	if err := room.ReorderProblems([]string{id2, id1}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if got := room.Problems(); got[0].ID != id2 {
		t.Fatalf("expected %q first after reorder, got %q", id2, got[0].ID)
	}

	if err := room.Start(0); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := reg.AddProblem("r1", sampleProblem("late")); !errors.Is(err, domain.ErrState) {
		t.Fatalf("expected state error adding after start, got %v", err)
	}
	if err := room.DeleteProblem(id1); !errors.Is(err, domain.ErrState) {
		t.Fatalf("expected state error deleting after start, got %v", err)
	}
	if err := room.ReorderProblems([]string{id1, id2}); !errors.Is(err, domain.ErrState) {
		t.Fatalf("expected state error reordering after start, got %v", err)
	}
	title := "new"
	if err := room.UpdateProblem(id1, domain.ProblemPatch{Title: &title}); !errors.Is(err, domain.ErrState) {
		t.Fatalf("expected state error updating after start, got %v", err)
	}
}

func TestUpdateProblem(t *testing.T) {
	reg := quiz.NewRegistry(nil)
	mustCreateRoom(t, reg, "r1", perQuestionConfig(20), 0)
	id, err := reg.AddProblem("r1", sampleProblem("first"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	room, _ := reg.Room("r1")

	badAnswer := 9
	if err := room.UpdateProblem(id, domain.ProblemPatch{Answer: &badAnswer}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for answer without option, got %v", err)
	}

	title := "renamed"
	answer := 0
	if err := room.UpdateProblem(id, domain.ProblemPatch{Title: &title, Answer: &answer}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got := room.Problems()[0]
	if got.Title != "renamed" || got.Answer != 0 {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Description != "d" {
		t.Fatalf("unpatched field changed: %+v", got)
	}

	if err := room.UpdateProblem("999", domain.ProblemPatch{Title: &title}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestImportProblemsValidatesAllFirst(t *testing.T) {
	reg := quiz.NewRegistry(nil)
	mustCreateRoom(t, reg, "r1", perQuestionConfig(20), 0)

	_, err := reg.ImportProblems("r1", []domain.ProblemInput{
		sampleProblem("good"),
		{Title: "bad"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	room, _ := reg.Room("r1")
	if got := len(room.Problems()); got != 0 {
		t.Fatalf("a failed import must add nothing, got %d problems", got)
	}

	count, err := reg.ImportProblems("r1", []domain.ProblemInput{
		sampleProblem("one"),
		sampleProblem("two"),
	})
	if err != nil || count != 2 {
		t.Fatalf("import: count=%d err=%v", count, err)
	}
}

func TestImportSet(t *testing.T) {
	sets := memory.NewSetRepository(memory.NewStaticSetLoader(map[string]domain.ProblemSet{
		"set-1": {
			ID:       "set-1",
			Problems: []domain.ProblemInput{sampleProblem("from set")},
		},
	}), time.Minute)
	reg := quiz.NewRegistry(sets)
	mustCreateRoom(t, reg, "r1", perQuestionConfig(20), 0)

	count, err := reg.ImportSet(context.Background(), "r1", "set-1")
	if err != nil || count != 1 {
		t.Fatalf("import set: count=%d err=%v", count, err)
	}
	if _, err := reg.ImportSet(context.Background(), "r1", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for unknown set, got %v", err)
	}
}

func TestPointsDisciplines(t *testing.T) {
	reg := quiz.NewRegistry(nil)

	same := perQuestionConfig(20)
	same.DefaultPoints = 7
	mustCreateRoom(t, reg, "same", same, 0)
	custom := perQuestionConfig(20)
	custom.PointsType = domain.PointsCustom
	mustCreateRoom(t, reg, "custom", custom, 0)

	in := sampleProblem("scored")
	in.Score = 42

	if _, err := reg.AddProblem("same", in); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := reg.AddProblem("custom", in); err != nil {
		t.Fatalf("add: %v", err)
	}

	sameRoom, _ := reg.Room("same")
	if got := sameRoom.Problems()[0].Score; got != 7 {
		t.Fatalf("same-points quiz must apply the default, got %d", got)
	}
	customRoom, _ := reg.Room("custom")
	if got := customRoom.Problems()[0].Score; got != 42 {
		t.Fatalf("custom-points quiz must honor the problem score, got %d", got)
	}
}

func TestDeletedRoomIsInert(t *testing.T) {
	clk := newFakeClock()
	reg := quiz.NewRegistryWithClock(nil, clk.Now)
	mustCreateRoom(t, reg, "r1", perQuestionConfig(1), 1)
	room, _ := reg.Room("r1")
	aID, _ := room.Join("A")
	problemID := room.Problems()[0].ID

	// A handle obtained before Delete must not revive the room.
	if err := reg.Delete("r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := room.Start(0); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("start on a deleted room must fail, got %v", err)
	}
	future := clk.Now().Add(time.Hour).UnixMilli()
	if err := room.Schedule(future); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("schedule on a deleted room must fail, got %v", err)
	}
	if err := room.Next(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("advance on a deleted room must fail, got %v", err)
	}
	if _, ok := room.Join("B"); ok {
		t.Fatalf("join on a deleted room must be rejected")
	}
	choice := 1
	if room.SubmitAnswer(aID, problemID, &choice) {
		t.Fatalf("submit on a deleted room must be rejected")
	}
	if room.BulkSubmit(aID, nil) {
		t.Fatalf("bulk submit on a deleted room must be rejected")
	}
	if err := room.UpdateProblem(problemID, domain.ProblemPatch{}); !errors.Is(err, domain.ErrState) {
		t.Fatalf("problem mutation on a deleted room must fail, got %v", err)
	}
	if room.Status() != domain.StatusNotStarted {
		t.Fatalf("deleted room must stay inert, got %s", room.Status())
	}
}

// --- helpers shared by the quiz package tests ---

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func perQuestionConfig(sec int) domain.QuizConfig {
	return domain.QuizConfig{
		DurationType:        domain.DurationPerQuestion,
		DurationPerQuestion: sec,
	}
}

func totalConfig(sec int) domain.QuizConfig {
	return domain.QuizConfig{
		DurationType:  domain.DurationTotal,
		TotalDuration: sec,
	}
}

func sampleProblem(title string) domain.ProblemInput {
	return domain.ProblemInput{
		Title:       title,
		Description: "d",
		Options: []domain.Option{
			{ID: 0, Title: "a"},
			{ID: 1, Title: "b"},
			{ID: 2, Title: "c"},
		},
		Answer: 1,
	}
}

func mustCreateRoom(t *testing.T, reg *quiz.Registry, roomID string, cfg domain.QuizConfig, problems int) {
	t.Helper()
	if err := reg.Create(roomID, cfg); err != nil {
		t.Fatalf("create %s: %v", roomID, err)
	}
	for i := 0; i < problems; i++ {
		if _, err := reg.AddProblem(roomID, sampleProblem("p")); err != nil {
			t.Fatalf("add problem: %v", err)
		}
	}
}

func drain(ch <-chan domain.Snapshot) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
