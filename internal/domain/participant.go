package domain

// Participant is one leaderboard row in a room. The submission path is the
// only writer of the aggregate fields.
type Participant struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Points           int    `json:"points"`
	TotalTimeTakenMs int64  `json:"totalTimeTaken"`
	CorrectAnswers   int    `json:"correctAnswers"`
	TotalAnswered    int    `json:"totalAnswered"`
}

// Submission records one answer (or an explicit skip) by one participant
// for one problem. At most one exists per (problem, participant) pair.
type Submission struct {
	ProblemID      string `json:"problemId"`
	ParticipantID  string `json:"userId"`
	OptionSelected *int   `json:"optionSelected,omitempty"`
	IsCorrect      bool   `json:"isCorrect"`
	TimeTakenMs    int64  `json:"timeTaken"`
	SubmittedAt    int64  `json:"submittedAt"`
}

// Skipped reports whether the participant passed on the problem.
func (s Submission) Skipped() bool { return s.OptionSelected == nil }

// BulkAnswer is one entry of a total-mode bulk submission. TimeTakenMs is
// the client-measured duration; when nil the server derives it from the
// problem's start time.
type BulkAnswer struct {
	ProblemID      string `json:"problemId"`
	OptionSelected int    `json:"optionSelected"`
	TimeTakenMs    *int64 `json:"timeTaken,omitempty"`
}
