package domain

import "testing"

func multiQuestion(points int, correct ...string) Question {
	return Question{
		Type: MultipleChoice,
		Choices: []Choice{
			{ID: "w", Label: "W"}, {ID: "x", Label: "X"},
			{ID: "y", Label: "Y"}, {ID: "z", Label: "Z"},
		},
		CorrectAnswers: correct,
		Points:         points,
	}
}

func singleQuestion(points int, correct string) Question {
	return Question{
		Type: SingleChoice,
		Choices: []Choice{
			{ID: "a", Label: "A"}, {ID: "b", Label: "B"}, {ID: "c", Label: "C"},
		},
		CorrectAnswers: []string{correct},
		Points:         points,
	}
}

func TestScoreQuestionSingleChoice(t *testing.T) {
	q := singleQuestion(5, "a")

	got := ScoreQuestion(q, []string{"a"})
	if got.EarnedPoints != 5 || !got.Correct {
		t.Fatalf("expected full credit, got %+v", got)
	}

	got = ScoreQuestion(q, []string{"b"})
	if got.EarnedPoints != 0 || got.Correct {
		t.Fatalf("expected zero for wrong choice, got %+v", got)
	}

	got = ScoreQuestion(q, nil)
	if got.EarnedPoints != 0 || got.Correct {
		t.Fatalf("expected zero for empty submission, got %+v", got)
	}
}

func TestScoreQuestionMultiPartialCredit(t *testing.T) {
	tests := []struct {
		name      string
		correct   []string
		submitted []string
		points    int
		earned    int
		isCorrect bool
	}{
		{name: "exact set", correct: []string{"x", "y"}, submitted: []string{"y", "x"}, points: 10, earned: 10, isCorrect: true},
		{name: "one hit of two", correct: []string{"x", "y"}, submitted: []string{"x"}, points: 10, earned: 5},
		{name: "hit plus miss cancel", correct: []string{"x", "y"}, submitted: []string{"x", "z"}, points: 10, earned: 0},
		{name: "all wrong", correct: []string{"x", "y"}, submitted: []string{"w", "z"}, points: 10, earned: 0},
		{name: "never negative", correct: []string{"x", "y", "z"}, submitted: []string{"w"}, points: 9, earned: 0},
		{name: "round half up", correct: []string{"x", "y"}, submitted: []string{"x"}, points: 5, earned: 3},
		{name: "two of three", correct: []string{"x", "y", "z"}, submitted: []string{"x", "y"}, points: 10, earned: 7},
		{name: "duplicates collapse", correct: []string{"x", "y"}, submitted: []string{"x", "x"}, points: 10, earned: 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := multiQuestion(tc.points, tc.correct...)
			got := ScoreQuestion(q, tc.submitted)
			if got.EarnedPoints != tc.earned {
				t.Fatalf("expected earned=%d, got %d", tc.earned, got.EarnedPoints)
			}
			if got.Correct != tc.isCorrect {
				t.Fatalf("expected correct=%v, got %v", tc.isCorrect, got.Correct)
			}
			if got.EarnedPoints < 0 || got.EarnedPoints > tc.points {
				t.Fatalf("earned points %d outside [0,%d]", got.EarnedPoints, tc.points)
			}
		})
	}
}

func TestScoreAttemptSumsAndCaps(t *testing.T) {
	quiz := QuizDefinition{
		ID: "quiz-1",
		Questions: []Question{
			singleQuestion(5, "a"),
			multiQuestion(10, "x", "y"),
		},
	}

	scores, total := ScoreAttempt(quiz, map[int][]string{
		0: {"a"},
		1: {"x"},
	})
	if total != 10 {
		t.Fatalf("expected total 10, got %d", total)
	}
	if s := scores[0]; s.EarnedPoints != 5 || !s.Correct || s.MaxPoints != 5 {
		t.Fatalf("unexpected score for q0: %+v", s)
	}
	if s := scores[1]; s.EarnedPoints != 5 || s.Correct || s.MaxPoints != 10 {
		t.Fatalf("unexpected score for q1: %+v", s)
	}
	if total > quiz.MaxScore() {
		t.Fatalf("total %d exceeds max %d", total, quiz.MaxScore())
	}
}

func TestScoreAttemptMissingAnswersScoreZero(t *testing.T) {
	quiz := QuizDefinition{
		Questions: []Question{singleQuestion(5, "a"), multiQuestion(10, "x", "y")},
	}
	scores, total := ScoreAttempt(quiz, nil)
	if total != 0 {
		t.Fatalf("expected total 0, got %d", total)
	}
	if len(scores) != 2 {
		t.Fatalf("expected a score entry per question, got %d", len(scores))
	}
}

func TestEvaluatePass(t *testing.T) {
	quiz := QuizDefinition{Questions: []Question{singleQuestion(5, "a")}}
	if got := EvaluatePass(5, quiz); got != nil {
		t.Fatalf("expected nil pass flag for ungraded quiz, got %v", *got)
	}

	passing := 10
	quiz.PassingScore = &passing
	if got := EvaluatePass(10, quiz); got == nil || !*got {
		t.Fatalf("expected pass at threshold")
	}
	if got := EvaluatePass(9, quiz); got == nil || *got {
		t.Fatalf("expected fail below threshold")
	}
}
