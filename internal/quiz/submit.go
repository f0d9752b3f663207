package quiz

import (
	"strings"

	"github.com/google/uuid"

	"github.com/shivapreetham/quiz-application/internal/domain"
)

// Join admits a participant by display name. A name already on the roster
// (case/whitespace-insensitive) always resolves to the existing record so
// a refreshed client keeps its leaderboard row. A genuinely new name is
// admitted unless the room has ended, the join window has closed, or a
// per_question quiz is running with no join window at all.
func (o *Orchestrator) Join(name string) (string, bool) {
	norm := normalizeName(name)
	if norm == "" {
		return "", false
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return "", false
	}
	if u, ok := o.byName[norm]; ok {
		return u.ID, true
	}

	nowMs := o.now().UnixMilli()
	switch o.status {
	case domain.StatusEnded:
		return "", false
	case domain.StatusQuestion:
		if o.joinWindowEnd > 0 {
			if nowMs > o.joinWindowEnd {
				return "", false
			}
		} else if o.config.DurationType == domain.DurationPerQuestion {
			// Mid-quiz lockstep with no window: nothing meaningful to join.
			return "", false
		}
	}

	u := &domain.Participant{
		ID:   uuid.NewString(),
		Name: strings.TrimSpace(name),
	}
	o.participants = append(o.participants, u)
	o.byName[norm] = u

	if o.status == domain.StatusQuestion && o.config.DurationType == domain.DurationPerQuestion {
		// Latecomers get the full allotment on their first question.
		o.lateJoins[u.ID] = nowMs
	}
	return u.ID, true
}

// normalizeName folds case and collapses whitespace so "Alice", " alice"
// and "ALICE " are the same participant.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// SubmitAnswer handles a per_question-mode submission. option nil means an
// explicit skip. Returns false whenever the submission loses a race or is
// otherwise not applicable: wrong mode, inactive quiz, stale problem id,
// unknown participant, or a duplicate for this (problem, participant)
// pair. A rejected submission mutates nothing and does not advance.
//
// An accepted submission always advances the room: the question stream is
// shared, so the first participant to act moves everyone forward.
func (o *Orchestrator) SubmitAnswer(participantID, problemID string, option *int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || o.status != domain.StatusQuestion || o.config.DurationType != domain.DurationPerQuestion {
		return false
	}
	p := o.problems[o.active]
	if p.ID != problemID {
		return false
	}
	u := o.participantLocked(participantID)
	if u == nil {
		return false
	}
	for _, s := range p.Submissions {
		if s.ParticipantID == participantID {
			return false
		}
	}

	nowMs := o.now().UnixMilli()
	effectiveStart := p.StartTime
	if joined, ok := o.lateJoins[participantID]; ok && joined > effectiveStart {
		effectiveStart = joined
	}
	timeTaken := nowMs - effectiveStart
	if timeTaken < 0 {
		timeTaken = 0
	}

	sub := domain.Submission{
		ProblemID:     problemID,
		ParticipantID: participantID,
		TimeTakenMs:   timeTaken,
		SubmittedAt:   nowMs,
	}
	if option != nil {
		chosen := *option
		sub.OptionSelected = &chosen
		sub.IsCorrect = chosen == p.Answer
		u.TotalAnswered++
		u.TotalTimeTakenMs += timeTaken
		if sub.IsCorrect {
			u.CorrectAnswers++
			u.Points += p.Score
		}
	}
	p.Submissions = append(p.Submissions, sub)

	o.advanceLocked()
	return true
}

// BulkSubmit handles a total-mode finish: the participant's complete
// answer sheet, accepted at most once. Unknown problem ids are skipped,
// duplicate entries for the same problem keep the first. Accepting a bulk
// submission ends the quiz for the whole room.
func (o *Orchestrator) BulkSubmit(participantID string, answers []domain.BulkAnswer) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || o.status != domain.StatusQuestion || o.config.DurationType != domain.DurationTotal {
		return false
	}
	u := o.participantLocked(participantID)
	if u == nil {
		return false
	}
	for _, p := range o.problems {
		for _, s := range p.Submissions {
			if s.ParticipantID == participantID {
				return false
			}
		}
	}

	nowMs := o.now().UnixMilli()
	for _, a := range answers {
		p := o.problemLocked(a.ProblemID)
		if p == nil {
			continue
		}
		if hasSubmission(p, participantID) {
			continue
		}

		timeTaken := nowMs - p.StartTime
		if a.TimeTakenMs != nil && *a.TimeTakenMs >= 0 {
			timeTaken = *a.TimeTakenMs
		}
		if timeTaken < 0 {
			timeTaken = 0
		}

		chosen := a.OptionSelected
		sub := domain.Submission{
			ProblemID:      p.ID,
			ParticipantID:  participantID,
			OptionSelected: &chosen,
			IsCorrect:      chosen == p.Answer,
			TimeTakenMs:    timeTaken,
			SubmittedAt:    nowMs,
		}
		p.Submissions = append(p.Submissions, sub)

		u.TotalAnswered++
		u.TotalTimeTakenMs += timeTaken
		if sub.IsCorrect {
			u.CorrectAnswers++
			u.Points += p.Score
		}
	}

	// First finisher ends the quiz for everyone.
	o.endLocked()
	return true
}

func (o *Orchestrator) participantLocked(id string) *domain.Participant {
	for _, u := range o.participants {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (o *Orchestrator) problemLocked(id string) *domain.Problem {
	for _, p := range o.problems {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func hasSubmission(p *domain.Problem, participantID string) bool {
	for _, s := range p.Submissions {
		if s.ParticipantID == participantID {
			return true
		}
	}
	return false
}

// Submissions returns everything one participant has submitted in this
// room.
func (o *Orchestrator) Submissions(participantID string) ([]domain.Submission, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.participantLocked(participantID) == nil {
		return nil, domain.ErrParticipantNotFound
	}
	var subs []domain.Submission
	for _, p := range o.problems {
		for _, s := range p.Submissions {
			if s.ParticipantID == participantID {
				subs = append(subs, s)
			}
		}
	}
	return subs, nil
}

// AllSubmissions returns every submission in the room, grouped by problem
// order, for export.
func (o *Orchestrator) AllSubmissions() []domain.Submission {
	o.mu.Lock()
	defer o.mu.Unlock()

	var subs []domain.Submission
	for _, p := range o.problems {
		subs = append(subs, p.Submissions...)
	}
	return subs
}
