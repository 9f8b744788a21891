package run

import (
	"fmt"
	"strings"
)

// Confirmer obtains an explicit operator decision for a production-flagged
// request. Implementations range from the interactive phrase prompt to the
// scripted confirmers used in tests, so the gate itself stays terminal-free.
type Confirmer interface {
	Confirm(req *Request) (bool, error)
}

// Gate decides whether a request may proceed to the executor. Requests
// without the production flag pass straight through; flagged requests require
// an affirmative answer from the confirmer in this session. Nothing is
// persisted between runs.
func Gate(req *Request, c Confirmer) (bool, error) {
	if !req.RequiresConfirmation {
		return true, nil
	}
	ok, err := c.Confirm(req)
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return ok, nil
}

// PhraseConfirmer requires the operator to type a literal phrase. Ask is the
// interaction point; anything other than the exact phrase declines the run.
type PhraseConfirmer struct {
	Phrase string
	Ask    func(prompt string) (string, error)
}

func (p *PhraseConfirmer) Confirm(req *Request) (bool, error) {
	prompt := fmt.Sprintf("You are about to run %s against %s. Type %q to continue",
		req.Playbook.Name, req.Inventory.Name, p.Phrase)
	answer, err := p.Ask(prompt)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(answer) == p.Phrase, nil
}

// Accept approves every request. For tests and non-interactive automation.
type Accept struct{}

func (Accept) Confirm(*Request) (bool, error) { return true, nil }

// Deny declines every request. For tests.
type Deny struct{}

func (Deny) Confirm(*Request) (bool, error) { return false, nil }
