package embed

// BreakCriterion is the default stopping rule: the run ends when the
// newest committed cost fails to improve on the previous cycle's (or on
// the zero-embedding baseline after the first cycle), in which case the
// offending column is rejected, or when the cycle budget is spent.
type BreakCriterion struct{}

func (BreakCriterion) Stop(lg *Log, cycle, maxCycles int, lInit float64) Decision {
	last := lg.L(lg.Len() - 1)
	prev := lInit
	if cycle > 1 {
		prev = lg.L(lg.Len() - 2)
	}
	if last >= prev {
		return Decision{Stop: true, RejectLast: true, Reason: "L-statistic stopped improving"}
	}
	if cycle >= maxCycles {
		return Decision{Stop: true, Reason: "cycle budget reached"}
	}
	return Decision{}
}
