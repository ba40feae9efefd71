package embed

// Log is the append-only record of committed embedding decisions: one
// entry per trajectory column, holding the lag, the source channel and the
// L-statistic of the cycle that committed it. Entries never change once
// committed; stopping only ever takes a prefix.
type Log struct {
	delays   []int
	channels []int
	ls       []float64
}

// Commit appends one column to the log.
func (l *Log) Commit(delay, channel int, cost float64) {
	l.delays = append(l.delays, delay)
	l.channels = append(l.channels, channel)
	l.ls = append(l.ls, cost)
}

// Truncate keeps the first n entries.
func (l *Log) Truncate(n int) {
	if n < 0 || n >= len(l.delays) {
		return
	}
	l.delays = l.delays[:n]
	l.channels = l.channels[:n]
	l.ls = l.ls[:n]
}

func (l *Log) Len() int { return len(l.delays) }

// L returns the cost recorded for entry i.
func (l *Log) L(i int) float64 { return l.ls[i] }

// Delays returns a copy of the committed lags.
func (l *Log) Delays() []int {
	out := make([]int, len(l.delays))
	copy(out, l.delays)
	return out
}

// Channels returns a copy of the committed source channels.
func (l *Log) Channels() []int {
	out := make([]int, len(l.channels))
	copy(out, l.channels)
	return out
}

// Ls returns a copy of the committed costs.
func (l *Log) Ls() []float64 {
	out := make([]float64, len(l.ls))
	copy(out, l.ls)
	return out
}
