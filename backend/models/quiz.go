package models

import "encoding/json"

// QuizQuestion is the canonical quiz shape. Stored data exists in two
// historical field namings: {question, options, correctAnswer} and
// {prompt, choices, answerIndex}. Both decode into this one struct so
// consumers never branch on field presence.
type QuizQuestion struct {
	Prompt      string   `json:"prompt"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answerIndex"`
}

func (q *QuizQuestion) UnmarshalJSON(data []byte) error {
	var raw struct {
		Prompt      string   `json:"prompt"`
		Choices     []string `json:"choices"`
		AnswerIndex *int     `json:"answerIndex"`

		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer *int     `json:"correctAnswer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	q.Prompt = raw.Prompt
	if q.Prompt == "" {
		q.Prompt = raw.Question
	}
	q.Choices = raw.Choices
	if len(q.Choices) == 0 {
		q.Choices = raw.Options
	}
	switch {
	case raw.AnswerIndex != nil:
		q.AnswerIndex = *raw.AnswerIndex
	case raw.CorrectAnswer != nil:
		q.AnswerIndex = *raw.CorrectAnswer
	default:
		q.AnswerIndex = 0
	}
	return nil
}
