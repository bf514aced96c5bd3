package enums

// BetStatus is the lifecycle state of a wager as tracked downstream.
type BetStatus string

const (
	BetPending   BetStatus = "pending"
	BetPlaced    BetStatus = "placed"
	BetWon       BetStatus = "won"
	BetLost      BetStatus = "lost"
	BetCancelled BetStatus = "cancelled"
	BetFailed    BetStatus = "failed"
)

// String returns string representation
func (s BetStatus) String() string {
	return string(s)
}
