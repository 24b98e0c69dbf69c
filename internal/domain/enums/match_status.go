package enums

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusMutual   MatchStatus = "mutual"
	MatchStatusDeclined MatchStatus = "declined"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusPending, MatchStatusMutual, MatchStatusDeclined:
		return true
	default:
		return false
	}
}

// Terminal reports whether no transition leaves the status.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusMutual || s == MatchStatusDeclined
}
