package enums

// MatchOutcome describes what a like or pass did to the pair.
type MatchOutcome string

const (
	MatchOutcomePending   MatchOutcome = "pending"
	MatchOutcomeMutual    MatchOutcome = "mutual"
	MatchOutcomeDeclined  MatchOutcome = "declined"
	MatchOutcomeUnchanged MatchOutcome = "unchanged"
)
