package quiz

import (
	"sort"

	"github.com/shivapreetham/quiz-application/internal/domain"
)

// Leaderboard derives the current ranking from the roster: points
// descending, ties broken by total time taken ascending (faster wins).
// It is computed fresh on every call and returns copies, so callers can
// hold the result without touching room state.
func (o *Orchestrator) Leaderboard() []domain.Participant {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.leaderboardLocked()
}

func (o *Orchestrator) leaderboardLocked() []domain.Participant {
	entries := make([]domain.Participant, 0, len(o.participants))
	for _, u := range o.participants {
		entries = append(entries, *u)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].TotalTimeTakenMs < entries[j].TotalTimeTakenMs
	})
	return entries
}
