package quiz

import (
	"github.com/shivapreetham/quiz-application/internal/domain"
)

// Problem bank mutations. All of them are guarded by the same editable
// predicate: once the quiz has left not_started/scheduled the bank is
// frozen.

func (o *Orchestrator) editableLocked() bool {
	if o.closed {
		return false
	}
	return o.status == domain.StatusNotStarted || o.status == domain.StatusScheduled
}

// addProblems appends pre-validated problems with assigned ids. The
// registry validates input and generates ids; this only enforces the
// lifecycle guard so the check and the append happen under one lock.
func (o *Orchestrator) addProblems(problems []*domain.Problem) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.editableLocked() {
		return domain.Statef("problems cannot be modified after the quiz has started")
	}
	for _, p := range problems {
		p.Score = o.config.ProblemScore(p.Score)
		o.problems = append(o.problems, p)
	}
	return nil
}

// UpdateProblem applies a partial update to one problem.
func (o *Orchestrator) UpdateProblem(problemID string, patch domain.ProblemPatch) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.editableLocked() {
		return domain.Statef("problems cannot be modified after the quiz has started")
	}
	p := o.problemLocked(problemID)
	if p == nil {
		return domain.ErrProblemNotFound
	}

	next := domain.ProblemInput{
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Options:     p.Options,
		Answer:      p.Answer,
		Score:       p.Score,
	}
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Image != nil {
		next.Image = *patch.Image
	}
	if patch.Options != nil {
		next.Options = patch.Options
	}
	if patch.Answer != nil {
		next.Answer = *patch.Answer
	}
	if patch.Score != nil {
		next.Score = *patch.Score
	}
	if err := next.Validate(); err != nil {
		return err
	}

	p.Title = next.Title
	p.Description = next.Description
	p.Image = next.Image
	p.Options = append([]domain.Option(nil), next.Options...)
	p.Answer = next.Answer
	p.Score = o.config.ProblemScore(next.Score)
	return nil
}

// DeleteProblem removes one problem from the bank.
func (o *Orchestrator) DeleteProblem(problemID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.editableLocked() {
		return domain.Statef("problems cannot be modified after the quiz has started")
	}
	for i, p := range o.problems {
		if p.ID == problemID {
			o.problems = append(o.problems[:i], o.problems[i+1:]...)
			return nil
		}
	}
	return domain.ErrProblemNotFound
}

// ReorderProblems rearranges the bank to match ids, which must be a
// permutation of the current problem ids.
func (o *Orchestrator) ReorderProblems(ids []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.editableLocked() {
		return domain.Statef("problems cannot be modified after the quiz has started")
	}
	if len(ids) != len(o.problems) {
		return domain.Validationf("reorder must list all %d problems", len(o.problems))
	}
	reordered := make([]*domain.Problem, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return domain.Validationf("duplicate problem id %q in reorder", id)
		}
		seen[id] = struct{}{}
		p := o.problemLocked(id)
		if p == nil {
			return domain.ErrProblemNotFound
		}
		reordered = append(reordered, p)
	}
	o.problems = reordered
	return nil
}

// Problems returns copies of the room's problems in order, including
// answers and submissions. Admin-only surface.
func (o *Orchestrator) Problems() []domain.Problem {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]domain.Problem, 0, len(o.problems))
	for _, p := range o.problems {
		cp := *p
		cp.Options = append([]domain.Option(nil), p.Options...)
		cp.Submissions = append([]domain.Submission(nil), p.Submissions...)
		out = append(out, cp)
	}
	return out
}
