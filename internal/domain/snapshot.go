package domain

// Snapshot is the discriminated room state broadcast to clients. Each
// lifecycle shape is its own type so that a per-question payload cannot
// carry total-mode fields and vice versa.
type Snapshot interface {
	Kind() string
}

type NotStartedSnapshot struct{}

func (NotStartedSnapshot) Kind() string { return "not_started" }

type ScheduledSnapshot struct {
	ScheduledStartTime int64 `json:"scheduledStartTime"`
}

func (ScheduledSnapshot) Kind() string { return "scheduled" }

// QuestionSnapshot is the per_question-mode active state: one problem at a
// time, with an absolute deadline so clients count down locally.
type QuestionSnapshot struct {
	Problem           ProblemView `json:"problem"`
	QuestionIndex     int         `json:"questionIndex"`
	TotalQuestions    int         `json:"totalQuestions"`
	Config            QuizConfig  `json:"config"`
	QuestionDeadline  int64       `json:"questionDeadline"`
	QuizStartTime     int64       `json:"quizStartTime"`
	JoinWindowEndTime *int64      `json:"joinWindowEndTime,omitempty"`
}

func (QuestionSnapshot) Kind() string { return "question" }

// FreeAttemptSnapshot is the total-mode active state: every problem open
// at once under a single quiz-wide deadline.
type FreeAttemptSnapshot struct {
	Problems          []ProblemView `json:"problems"`
	TotalQuestions    int           `json:"totalQuestions"`
	Config            QuizConfig    `json:"config"`
	QuizDeadline      int64         `json:"quizDeadline"`
	QuizStartTime     int64         `json:"quizStartTime"`
	JoinWindowEndTime *int64        `json:"joinWindowEndTime,omitempty"`
}

func (FreeAttemptSnapshot) Kind() string { return "free_attempt" }

type EndedSnapshot struct {
	Leaderboard []Participant `json:"leaderboard"`
}

func (EndedSnapshot) Kind() string { return "ended" }

// RoomNotFoundSnapshot is returned (never broadcast) when a lookup fails.
type RoomNotFoundSnapshot struct{}

func (RoomNotFoundSnapshot) Kind() string { return "room_not_found" }

// WireSnapshot pairs a snapshot with its discriminator for transport.
type WireSnapshot struct {
	Type    string   `json:"type"`
	Payload Snapshot `json:"payload"`
}

func Wire(s Snapshot) WireSnapshot {
	return WireSnapshot{Type: s.Kind(), Payload: s}
}
