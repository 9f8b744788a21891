package ui

import "fmt"

// Script replays canned answers, for driving the session in tests. Choices
// are matched by option label so tests don't depend on menu ordering.
type Script struct {
	Choices []string
	Inputs  []string

	ci, ii int
}

func (s *Script) Choose(title string, options []string) (int, error) {
	if s.ci >= len(s.Choices) {
		return 0, fmt.Errorf("script exhausted at menu %q: %w", title, ErrAborted)
	}
	want := s.Choices[s.ci]
	s.ci++
	for i, opt := range options {
		if opt == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("option %q not present in menu %q (have %v)", want, title, options)
}

func (s *Script) Input(prompt, placeholder string) (string, error) {
	if s.ii >= len(s.Inputs) {
		return "", fmt.Errorf("script exhausted at prompt %q: %w", prompt, ErrAborted)
	}
	answer := s.Inputs[s.ii]
	s.ii++
	return answer, nil
}
