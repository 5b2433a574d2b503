package domain

import "math"

// QuestionResult is the outcome of scoring a single submission.
type QuestionResult struct {
	EarnedPoints int
	Correct      bool
}

// ScoreQuestion computes the points earned for one question. An exact match
// of the correct set earns full points. Multi-select questions earn partial
// credit of max(0, (hits - misses) / |correct|) of the points, rounded
// half-up; this never goes negative and never exceeds the question's points.
// Single-choice questions are all-or-nothing.
func ScoreQuestion(question Question, submitted []string) QuestionResult {
	selected := toSet(submitted)
	if len(selected) == 0 {
		return QuestionResult{}
	}

	correct := toSet(question.CorrectAnswers)
	if setsEqual(selected, correct) {
		return QuestionResult{EarnedPoints: question.Points, Correct: true}
	}

	if len(correct) > 1 {
		hits, misses := 0, 0
		for id := range selected {
			if _, ok := correct[id]; ok {
				hits++
			} else {
				misses++
			}
		}
		raw := float64(hits-misses) / float64(len(correct))
		if raw < 0 {
			raw = 0
		}
		earned := int(math.Floor(raw*float64(question.Points) + 0.5))
		return QuestionResult{EarnedPoints: earned}
	}
	return QuestionResult{}
}

// ScoreAttempt scores every question of the quiz against the submitted
// answers. Questions with no submission score zero. It is pure: the same
// inputs always produce the same scores.
func ScoreAttempt(quiz QuizDefinition, answers map[int][]string) (map[int]QuestionScore, int) {
	scores := make(map[int]QuestionScore, len(quiz.Questions))
	total := 0
	for i, question := range quiz.Questions {
		result := ScoreQuestion(question, answers[i])
		scores[i] = QuestionScore{
			EarnedPoints: result.EarnedPoints,
			MaxPoints:    question.Points,
			Correct:      result.Correct,
		}
		total += result.EarnedPoints
	}
	return scores, total
}

// EvaluatePass compares a total score against the quiz's passing score.
// It returns nil for ungraded quizzes (no passing score defined).
func EvaluatePass(totalScore int, quiz QuizDefinition) *bool {
	if quiz.PassingScore == nil {
		return nil
	}
	passed := totalScore >= *quiz.PassingScore
	return &passed
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
