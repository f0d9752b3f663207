package quiz_test

import (
	"testing"
	"time"

	"github.com/shivapreetham/quiz-application/internal/domain"
	"github.com/shivapreetham/quiz-application/internal/quiz"
)

func TestLeaderboardOrdering(t *testing.T) {
	clk := newFakeClock()
	reg := quiz.NewRegistryWithClock(nil, clk.Now)
	mustCreateRoom(t, reg, "r1", totalConfig(600), 3)
	room, _ := reg.Room("r1")

	aID, _ := room.Join("A")
	bID, _ := room.Join("B")
	cID, _ := room.Join("C")
	_ = room.Start(0)

	problems := room.Problems()
	slow := int64(9000)

	// B: two correct, slow. Finishes first and ends the quiz.
	if !room.BulkSubmit(bID, []domain.BulkAnswer{
		{ProblemID: problems[0].ID, OptionSelected: 1, TimeTakenMs: &slow},
		{ProblemID: problems[1].ID, OptionSelected: 1, TimeTakenMs: &slow},
	}) {
		t.Fatalf("expected first bulk submit accepted")
	}

	lb := room.Leaderboard()
	if len(lb) != 3 {
		t.Fatalf("leaderboard must cover the full roster, got %d", len(lb))
	}
	if lb[0].ID != bID {
		t.Fatalf("B has the only points and must rank first, got %s", lb[0].Name)
	}
	// A and C are tied on zero points and zero time; roster order holds.
	if lb[1].ID != aID || lb[2].ID != cID {
		t.Fatalf("ties must keep roster order, got %s then %s", lb[1].Name, lb[2].Name)
	}
}

func TestLeaderboardTieBreaksOnTime(t *testing.T) {
	clk := newFakeClock()
	reg := quiz.NewRegistryWithClock(nil, clk.Now)
	mustCreateRoom(t, reg, "r1", perQuestionConfig(600), 2)
	room, _ := reg.Room("r1")

	aID, _ := room.Join("A")
	bID, _ := room.Join("B")
	_ = room.Start(0)

	choice := 1

	// Question 0: B answers first, quickly.
	clk.Advance(2 * time.Second)
	if !room.SubmitAnswer(bID, room.Problems()[0].ID, &choice) {
		t.Fatalf("expected B's submission accepted")
	}

	// Question 1: A answers after a longer think.
	clk.Advance(8 * time.Second)
	if !room.SubmitAnswer(aID, room.Problems()[1].ID, &choice) {
		t.Fatalf("expected A's submission accepted")
	}

	lb := room.Leaderboard()
	if lb[0].Points != lb[1].Points {
		t.Fatalf("expected a points tie, got %d vs %d", lb[0].Points, lb[1].Points)
	}
	if lb[0].ID != bID {
		t.Fatalf("faster participant must win the tie, got %s", lb[0].Name)
	}
	if lb[0].TotalTimeTakenMs != 2000 || lb[1].TotalTimeTakenMs != 8000 {
		t.Fatalf("unexpected times: %d vs %d", lb[0].TotalTimeTakenMs, lb[1].TotalTimeTakenMs)
	}
}

func TestLeaderboardReturnsCopies(t *testing.T) {
	clk := newFakeClock()
	reg := quiz.NewRegistryWithClock(nil, clk.Now)
	mustCreateRoom(t, reg, "r1", perQuestionConfig(600), 1)
	room, _ := reg.Room("r1")
	_, _ = room.Join("A")

	lb := room.Leaderboard()
	lb[0].Points = 999

	if got := room.Leaderboard()[0].Points; got != 0 {
		t.Fatalf("mutating a leaderboard result must not touch room state, got %d", got)
	}
}
