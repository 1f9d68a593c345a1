package engine

// PotResult is one pot layer's outcome: the amount in that layer and the
// seats that split it.
type PotResult struct {
	Amount  int64
	Winners []WinnerShare
}

// SettlementResult is the full outcome of one completed hand, in pot
// order (main pot first, then side pots as they were layered).
type SettlementResult struct {
	NoShowdown     bool
	Pots           []PotResult
	RevealedChairs []uint16
}

// TotalAwarded sums every pot layer's amount, for sanity-checking against
// the chips committed this hand.
func (r *SettlementResult) TotalAwarded() int64 {
	if r == nil {
		return 0
	}
	var total int64
	for _, p := range r.Pots {
		total += p.Amount
	}
	return total
}
