package domain

import "time"

// NextAttemptNumber assigns the ordinal for a new attempt and enforces the
// max-attempts rule. Prior attempts count regardless of their outcome.
func NextAttemptNumber(quiz QuizDefinition, prior []Attempt) (int, error) {
	next := len(prior) + 1
	if quiz.MaxAttempts > 0 && next > quiz.MaxAttempts {
		return 0, &AttemptNotAllowedError{QuizID: quiz.ID, MaxAttempts: quiz.MaxAttempts}
	}
	return next, nil
}

// StartAttempt creates a new in-progress attempt if the student is still
// eligible. The caller supplies now; the engine never reads the clock itself.
func StartAttempt(quiz QuizDefinition, studentID string, prior []Attempt, now time.Time) (Attempt, error) {
	number, err := NextAttemptNumber(quiz, prior)
	if err != nil {
		return Attempt{}, err
	}
	attempt := Attempt{
		QuizID:        quiz.ID,
		StudentID:     studentID,
		AttemptNumber: number,
		Status:        AttemptInProgress,
		StartedAt:     now,
		Answers:       map[int][]string{},
	}
	if quiz.TimeLimitMinutes > 0 {
		expires := now.Add(time.Duration(quiz.TimeLimitMinutes) * time.Minute)
		attempt.ExpiresAt = &expires
	}
	return attempt, nil
}

// SubmitAnswer records the submitted choices for a question, overwriting any
// prior answer for that index. If the attempt's deadline has passed the
// attempt expires instead and the answer is discarded; answers are never
// accepted once now is past expiresAt.
func SubmitAnswer(attempt Attempt, quiz QuizDefinition, questionIndex int, choices []string, now time.Time) (Attempt, error) {
	if attempt.Terminal() {
		return Attempt{}, ErrAttemptTerminal
	}
	if pastDeadline(attempt, now) {
		return expire(attempt, quiz, now), nil
	}
	if questionIndex < 0 || questionIndex >= len(quiz.Questions) {
		return Attempt{}, ErrUnknownQuestion
	}

	answers := make(map[int][]string, len(attempt.Answers)+1)
	for i, a := range attempt.Answers {
		answers[i] = a
	}
	answers[questionIndex] = dedupe(choices)
	attempt.Answers = answers
	return attempt, nil
}

// CompleteAttempt finishes the attempt on explicit submission: all answers
// are scored, time spent is recorded (capped at the time limit), and the
// pass flag is derived from the quiz's passing score. A completion past the
// deadline expires the attempt instead.
func CompleteAttempt(attempt Attempt, quiz QuizDefinition, now time.Time) (Attempt, error) {
	if attempt.Terminal() {
		return Attempt{}, ErrAttemptTerminal
	}
	if pastDeadline(attempt, now) {
		return expire(attempt, quiz, now), nil
	}

	attempt = scored(attempt, quiz)
	attempt.Status = AttemptCompleted
	attempt.CompletedAt = &now
	attempt.TimeSpentSeconds = elapsedSeconds(attempt, quiz, now)
	attempt.Passed = EvaluatePass(attempt.TotalScore, quiz)
	return attempt, nil
}

// AbandonAttempt terminates the attempt early. Partial answers are still
// scored so partial credit stays visible, but an abandoned attempt never
// counts as a pass regardless of the score.
func AbandonAttempt(attempt Attempt, quiz QuizDefinition, now time.Time) (Attempt, error) {
	if attempt.Terminal() {
		return Attempt{}, ErrAttemptTerminal
	}
	if pastDeadline(attempt, now) {
		return expire(attempt, quiz, now), nil
	}

	attempt = scored(attempt, quiz)
	attempt.Status = AttemptAbandoned
	attempt.CompletedAt = &now
	attempt.TimeSpentSeconds = elapsedSeconds(attempt, quiz, now)
	failed := false
	attempt.Passed = &failed
	return attempt, nil
}

// SweepExpired expires the attempt if its deadline has passed. It is a no-op
// on attempts that are already terminal or still within their deadline, so
// re-sweeping is always safe.
func SweepExpired(attempt Attempt, quiz QuizDefinition, now time.Time) (Attempt, error) {
	if attempt.Terminal() || !pastDeadline(attempt, now) {
		return attempt, nil
	}
	return expire(attempt, quiz, now), nil
}

// expire scores whatever was answered before the deadline. The full time
// allotment counts as consumed and the attempt can no longer pass.
func expire(attempt Attempt, quiz QuizDefinition, now time.Time) Attempt {
	attempt = scored(attempt, quiz)
	attempt.Status = AttemptExpired
	attempt.CompletedAt = &now
	attempt.TimeSpentSeconds = quiz.TimeLimitMinutes * 60
	failed := false
	attempt.Passed = &failed
	return attempt
}

// scored runs the scorer against whatever was answered at the moment of
// termination. Every terminal transition goes through here so question
// scores are always populated on a finished attempt.
func scored(attempt Attempt, quiz QuizDefinition) Attempt {
	attempt.QuestionScores, attempt.TotalScore = ScoreAttempt(quiz, attempt.Answers)
	return attempt
}

func pastDeadline(attempt Attempt, now time.Time) bool {
	return attempt.ExpiresAt != nil && now.After(*attempt.ExpiresAt)
}

func elapsedSeconds(attempt Attempt, quiz QuizDefinition, now time.Time) int {
	elapsed := int(now.Sub(attempt.StartedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	if quiz.TimeLimitMinutes > 0 && elapsed > quiz.TimeLimitMinutes*60 {
		elapsed = quiz.TimeLimitMinutes * 60
	}
	return elapsed
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
