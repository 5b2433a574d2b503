package domain

import "time"

// QuestionType discriminates how a question is answered and scored.
type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
)

// Choice is one selectable option of a question.
type Choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Question models one quiz question. SingleChoice questions carry exactly one
// correct answer; MultipleChoice questions may earn partial credit.
type Question struct {
	Type           QuestionType `json:"type"`
	Prompt         string       `json:"prompt,omitempty"`
	Choices        []Choice     `json:"choices"`
	CorrectAnswers []string     `json:"correctAnswers"`
	Points         int          `json:"points"`
}

// QuizDefinition is the immutable description of a quiz. Optional limits use
// zero values for "absent": TimeLimitMinutes == 0 means untimed,
// MaxAttempts == 0 means unbounded, PassingScore == nil means ungraded.
type QuizDefinition struct {
	ID               string     `json:"id"`
	Title            string     `json:"title,omitempty"`
	Questions        []Question `json:"questions"`
	TimeLimitMinutes int        `json:"timeLimitMinutes,omitempty"`
	PassingScore     *int       `json:"passingScore,omitempty"`
	MaxAttempts      int        `json:"maxAttempts,omitempty"`
}

// MaxScore is the sum of all question points, exposed for percentage
// computation by callers.
func (q QuizDefinition) MaxScore() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// AttemptStatus tracks an attempt through its lifecycle.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptAbandoned  AttemptStatus = "abandoned"
	AttemptExpired    AttemptStatus = "expired"
)

// Terminal reports whether no further transitions are permitted.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptCompleted || s == AttemptAbandoned || s == AttemptExpired
}

// QuestionScore is the scored outcome of a single question.
type QuestionScore struct {
	EarnedPoints int  `json:"earnedPoints"`
	MaxPoints    int  `json:"maxPoints"`
	Correct      bool `json:"correct"`
}

// Attempt is one learner's run through a quiz. It references the quiz and
// student by id and exclusively owns its answer and score maps.
type Attempt struct {
	ID               string                `json:"id"`
	QuizID           string                `json:"quizId"`
	StudentID        string                `json:"studentId"`
	AttemptNumber    int                   `json:"attemptNumber"`
	Status           AttemptStatus         `json:"status"`
	StartedAt        time.Time             `json:"startedAt"`
	ExpiresAt        *time.Time            `json:"expiresAt,omitempty"`
	CompletedAt      *time.Time            `json:"completedAt,omitempty"`
	Answers          map[int][]string      `json:"answers"`
	QuestionScores   map[int]QuestionScore `json:"questionScores,omitempty"`
	TotalScore       int                   `json:"totalScore"`
	TimeSpentSeconds int                   `json:"timeSpentSeconds"`
	Passed           *bool                 `json:"passed,omitempty"`
}

// Terminal reports whether the attempt has reached a final state.
func (a Attempt) Terminal() bool {
	return a.Status.Terminal()
}
