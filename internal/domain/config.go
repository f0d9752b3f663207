package domain

// DurationType selects the timing discipline of a quiz.
type DurationType string

const (
	// DurationPerQuestion runs an independent timer per question; the room
	// advances in lockstep.
	DurationPerQuestion DurationType = "per_question"
	// DurationTotal runs one shared timer for the whole quiz; participants
	// answer in any order and submit once at the end.
	DurationTotal DurationType = "total"
)

// PointsType selects how problem scores are assigned.
type PointsType string

const (
	PointsSame   PointsType = "same"
	PointsCustom PointsType = "custom"
)

// DefaultPoints is applied when no explicit score is configured.
const DefaultPoints = 10

// Status is the lifecycle state of a room.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusScheduled  Status = "scheduled"
	StatusQuestion   Status = "question"
	StatusEnded      Status = "ended"
)

// QuizConfig is fixed at room creation, except for the scheduled and
// actual start times which the orchestrator stamps as the room moves
// through its lifecycle. Durations are in seconds, timestamps epoch ms.
type QuizConfig struct {
	DurationType        DurationType `json:"durationType"`
	DurationPerQuestion int          `json:"durationPerQuestion,omitempty"`
	TotalDuration       int          `json:"totalDuration,omitempty"`
	ScheduledStartTime  int64        `json:"scheduledStartTime,omitempty"`
	PointsType          PointsType   `json:"pointsType,omitempty"`
	DefaultPoints       int          `json:"defaultPoints,omitempty"`
	JoinWindowDuration  int          `json:"joinWindowDuration,omitempty"`
	ActualStartTime     int64        `json:"actualStartTime,omitempty"`
}

// Validate rejects configs that could not drive a quiz.
func (c QuizConfig) Validate() error {
	switch c.DurationType {
	case DurationPerQuestion:
		if c.DurationPerQuestion <= 0 {
			return Validationf("durationPerQuestion must be positive for per_question quizzes")
		}
	case DurationTotal:
		if c.TotalDuration <= 0 {
			return Validationf("totalDuration must be positive for total quizzes")
		}
	default:
		return Validationf("unknown duration type %q", c.DurationType)
	}
	switch c.PointsType {
	case "", PointsSame, PointsCustom:
	default:
		return Validationf("unknown points type %q", c.PointsType)
	}
	if c.DefaultPoints < 0 || c.JoinWindowDuration < 0 {
		return Validationf("durations and points must not be negative")
	}
	return nil
}

// Normalized fills in defaults for optional fields.
func (c QuizConfig) Normalized() QuizConfig {
	if c.PointsType == "" {
		c.PointsType = PointsSame
	}
	if c.DefaultPoints == 0 {
		c.DefaultPoints = DefaultPoints
	}
	return c
}

// ProblemScore resolves the effective score for a problem under this
// config: custom quizzes honor the per-problem value, everything else
// falls back to the configured default.
func (c QuizConfig) ProblemScore(requested int) int {
	if c.PointsType == PointsCustom && requested > 0 {
		return requested
	}
	return c.DefaultPoints
}
