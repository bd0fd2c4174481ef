package reschedule

// Category classifies a rejected change request. Every failure the resolver
// can produce is an input-validation failure; the tool layer turns the Detail
// text into a clarification question for the user.
type Category int

const (
	BadTimeFormat Category = iota + 1
	BadLength
	Contradiction
	EndBeforeStart
)

// Error carries a machine-checkable category and a stable human-readable
// detail. Errors with the same category match under errors.Is, so callers can
// branch on the category while surfacing the detail.
type Error struct {
	Category Category
	Detail   string
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Category == e.Category
}

var (
	ErrBadTimeFormat  = &Error{Category: BadTimeFormat, Detail: "invalid time format"}
	ErrBadLength      = &Error{Category: BadLength, Detail: "invalid length"}
	ErrContradiction  = &Error{Category: Contradiction, Detail: "contradictory combination of changes"}
	ErrEndBeforeStart = &Error{Category: EndBeforeStart, Detail: "the new end would be earlier than the start"}
)

func badTimeFormat(detail string) *Error {
	return &Error{Category: BadTimeFormat, Detail: detail}
}

func contradiction(detail string) *Error {
	return &Error{Category: Contradiction, Detail: detail}
}
