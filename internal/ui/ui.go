// Package ui provides the operator interaction surface: arrow-key menus and
// line prompts. The session core depends only on the UI interface so it can
// be driven by a script in tests.
package ui

import "errors"

// ErrAborted is returned when the operator backs out of a menu or prompt.
var ErrAborted = errors.New("aborted")

// UI is the capability interface the session consumes.
type UI interface {
	// Choose presents options and returns the selected index.
	Choose(title string, options []string) (int, error)
	// Input asks for a single line of text.
	Input(prompt, placeholder string) (string, error)
}
