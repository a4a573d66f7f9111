package inventory

// StockCheck is the result of an availability check
type StockCheck struct {
	Sufficient bool `json:"sufficient"`
	Available  int  `json:"available"`
	Requested  int  `json:"requested"`
}

// CheckAvailability decides whether the summary can cover the requested
// quantity for the given condition. A nil summary or a condition with no
// entry means nothing is available. Never returns an error; the check is
// advisory at creation time and the negative-balance guard in
// ApplyTransaction is the authoritative protection at commit time.
func CheckAvailability(summary *InventorySummary, condition Condition, requestedQty int) StockCheck {
	available := 0
	if summary != nil {
		if entry := summary.EntryFor(condition); entry != nil {
			available = entry.Available()
		}
	}

	return StockCheck{
		Sufficient: available >= requestedQty,
		Available:  available,
		Requested:  requestedQty,
	}
}
