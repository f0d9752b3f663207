package domain

// Option represents one selectable answer for a problem.
type Option struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// ProblemInput is the admin-supplied shape of a problem, before the
// registry assigns an identifier.
type ProblemInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image,omitempty"`
	Options     []Option `json:"options"`
	Answer      int      `json:"answer"`
	Score       int      `json:"score,omitempty"`
}

// Validate checks the admin-facing constraints on a problem.
func (in ProblemInput) Validate() error {
	if in.Title == "" || in.Description == "" {
		return Validationf("problem must have title and description")
	}
	if len(in.Options) < 2 {
		return Validationf("problem must have at least 2 options")
	}
	seen := make(map[int]struct{}, len(in.Options))
	for _, opt := range in.Options {
		if _, dup := seen[opt.ID]; dup {
			return Validationf("duplicate option id %d", opt.ID)
		}
		seen[opt.ID] = struct{}{}
	}
	if _, ok := seen[in.Answer]; !ok {
		return Validationf("answer %d does not match any option", in.Answer)
	}
	if in.Score < 0 {
		return Validationf("score must not be negative")
	}
	return nil
}

// Problem is a question owned by exactly one room. StartTime is stamped
// (epoch ms) when the problem becomes active.
type Problem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Image       string       `json:"image,omitempty"`
	Options     []Option     `json:"options"`
	Answer      int          `json:"answer"`
	Score       int          `json:"score"`
	StartTime   int64        `json:"startTime"`
	Submissions []Submission `json:"submissions"`
}

// NewProblem builds a Problem from validated input and an assigned id.
func NewProblem(id string, in ProblemInput) *Problem {
	return &Problem{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		Options:     append([]Option(nil), in.Options...),
		Answer:      in.Answer,
		Score:       in.Score,
	}
}

// ProblemView is the client-safe projection broadcast to rooms. It omits
// the correct answer and the submission list.
type ProblemView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image,omitempty"`
	Options     []Option `json:"options"`
	Score       int      `json:"score"`
	StartTime   int64    `json:"startTime"`
}

func (p *Problem) View() ProblemView {
	return ProblemView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Options:     append([]Option(nil), p.Options...),
		Score:       p.Score,
		StartTime:   p.StartTime,
	}
}

// ProblemPatch carries a partial update; nil fields are left unchanged.
type ProblemPatch struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Options     []Option `json:"options,omitempty"`
	Answer      *int     `json:"answer,omitempty"`
	Score       *int     `json:"score,omitempty"`
}

// ProblemSet is a reusable, named collection of problems stored in the
// problem-set library.
type ProblemSet struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Problems []ProblemInput `json:"problems"`
}
