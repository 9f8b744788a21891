package run

// State tracks one run through its lifecycle. Declined and Completed are
// terminal; AwaitingConfirmation is skipped when the request carries no
// production flag.
type State int

const (
	Selecting State = iota
	Built
	AwaitingConfirmation
	Confirmed
	Declined
	Executing
	Completed
)

func (s State) String() string {
	switch s {
	case Selecting:
		return "selecting"
	case Built:
		return "built"
	case AwaitingConfirmation:
		return "awaiting-confirmation"
	case Confirmed:
		return "confirmed"
	case Declined:
		return "declined"
	case Executing:
		return "executing"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool {
	return s == Declined || s == Completed
}
