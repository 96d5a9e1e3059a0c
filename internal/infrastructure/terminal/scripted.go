package terminal

import (
	"context"
	"io"

	"MovieCatalog/internal/ports"
)

// Scripted replays fixed answers in order and records every question asked.
// Running out of answers is io.EOF, like a closed terminal.
type Scripted struct {
	answers   []string
	Questions []string
}

var _ ports.Prompter = (*Scripted)(nil)

// NewScripted queues answers.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

// Confirm consumes one answer.
func (s *Scripted) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := s.Ask(ctx, question)
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

// Ask consumes one answer.
func (s *Scripted) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.Questions = append(s.Questions, question)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// Remaining reports how many answers were not consumed.
func (s *Scripted) Remaining() int {
	return len(s.answers)
}
