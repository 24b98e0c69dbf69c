package enums

// MatchAction is what a user does to a candidate in the queue.
type MatchAction string

const (
	MatchActionLike MatchAction = "like"
	MatchActionPass MatchAction = "pass"
)

func (a MatchAction) Valid() bool {
	switch a {
	case MatchActionLike, MatchActionPass:
		return true
	default:
		return false
	}
}
