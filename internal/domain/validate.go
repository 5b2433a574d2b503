package domain

// ValidateQuiz guarantees a quiz definition is well-formed before any attempt
// may reference it. It has no side effects; callers run it at authoring time
// so the scoring path never sees a malformed question.
func ValidateQuiz(quiz QuizDefinition) error {
	if len(quiz.Questions) == 0 {
		return &ValidationError{QuestionIndex: -1, Reason: "quiz has no questions"}
	}
	if quiz.TimeLimitMinutes < 0 {
		return &ValidationError{QuestionIndex: -1, Reason: "time limit must be positive"}
	}
	if quiz.PassingScore != nil && *quiz.PassingScore < 0 {
		return &ValidationError{QuestionIndex: -1, Reason: "passing score must not be negative"}
	}
	if quiz.MaxAttempts < 0 {
		return &ValidationError{QuestionIndex: -1, Reason: "max attempts must be positive"}
	}

	for i, question := range quiz.Questions {
		if reason := validateQuestion(question); reason != "" {
			return &ValidationError{QuestionIndex: i, Reason: reason}
		}
	}
	return nil
}

func validateQuestion(question Question) string {
	switch question.Type {
	case SingleChoice, MultipleChoice:
	default:
		return "unknown question type " + string(question.Type)
	}
	if question.Points <= 0 {
		return "points must be positive"
	}
	if len(question.Choices) == 0 {
		return "question has no choices"
	}

	choiceIDs := make(map[string]struct{}, len(question.Choices))
	for _, choice := range question.Choices {
		if choice.ID == "" {
			return "choice id must not be empty"
		}
		if _, dup := choiceIDs[choice.ID]; dup {
			return "duplicate choice id " + choice.ID
		}
		choiceIDs[choice.ID] = struct{}{}
	}

	if len(question.CorrectAnswers) == 0 {
		return "question has no correct answers"
	}
	seen := make(map[string]struct{}, len(question.CorrectAnswers))
	for _, id := range question.CorrectAnswers {
		if _, ok := choiceIDs[id]; !ok {
			return "correct answer " + id + " is not a choice"
		}
		if _, dup := seen[id]; dup {
			return "duplicate correct answer " + id
		}
		seen[id] = struct{}{}
	}
	if question.Type == SingleChoice && len(question.CorrectAnswers) != 1 {
		return "single choice question must have exactly one correct answer"
	}
	return ""
}
