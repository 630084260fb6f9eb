package ticket

type Status string

const (
	// StatusValid is the only state a credential can be redeemed from.
	StatusValid Status = "valid"
	// StatusUsed and StatusCancelled are terminal: no further transitions,
	// no ownership changes.
	StatusUsed      Status = "used"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusValid, StatusUsed, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusUsed || s == StatusCancelled
}
