package user

// CompletionStatus tracks how far a user got through onboarding. It only moves
// forward, one step at a time.
type CompletionStatus string

const (
	StatusInitial               CompletionStatus = "INITIAL"
	StatusPersonalInfoCompleted CompletionStatus = "PERSONAL_INFO_COMPLETED"
	StatusInterestsCompleted    CompletionStatus = "INTERESTS_COMPLETED"
	StatusCompleted             CompletionStatus = "COMPLETED"
)

var statusOrder = []CompletionStatus{
	StatusInitial,
	StatusPersonalInfoCompleted,
	StatusInterestsCompleted,
	StatusCompleted,
}

func (s CompletionStatus) rank() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s CompletionStatus) Valid() bool {
	return s.rank() >= 0
}

// Next returns the following state, or s itself for COMPLETED and unknown values.
func (s CompletionStatus) Next() CompletionStatus {
	r := s.rank()
	if r < 0 || r == len(statusOrder)-1 {
		return s
	}
	return statusOrder[r+1]
}

// AdvanceIf moves the profile from `from` to `to` and reports whether it did.
// Nothing happens unless the profile is currently in `from` and `to` is the
// state right after it.
func (p *UserProfile) AdvanceIf(from, to CompletionStatus) bool {
	// COMPLETED is its own Next, so from == to must be rejected explicitly.
	if p.CompletionStatus != from || from == to || from.Next() != to {
		return false
	}
	p.CompletionStatus = to
	return true
}
