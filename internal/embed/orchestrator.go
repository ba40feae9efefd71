package embed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/san-kum/takens/internal/series"
)

// Orchestrator owns one embedding search: the cross-cycle commit log, the
// peak nomination and the winner selection. It holds no state between
// runs, so a single instance may serve sequential runs.
type Orchestrator struct {
	engine  ContinuityEngine
	cost    CostFunc
	stopper Stopper
	opts    Options
}

func New(engine ContinuityEngine, cost CostFunc, stopper Stopper, opts Options) (*Orchestrator, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Orchestrator{engine: engine, cost: cost, stopper: stopper, opts: opts}, nil
}

// nominee is one channel's best candidate for a cycle. A channel with no
// scorable peak stays !ok and never competes.
type nominee struct {
	ok      bool
	lag     int
	channel int
	l       float64
	score   float64
}

// Run executes the full search on raw and returns the reconstruction in
// original units. Cancellation aborts the whole run; no partial result is
// returned, since a cycle's winner is only valid once every channel has
// been scored.
func (o *Orchestrator) Run(ctx context.Context, raw series.Set) (*Result, error) {
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("invalid series: %w", err)
	}
	horizon := o.opts.HorizonFactor * o.opts.TheilerWindow
	minLen := o.opts.MaxDelay() + horizon + o.opts.MaxNeighbors + 2*o.opts.TheilerWindow + 2
	if raw.Len() <= minLen {
		return nil, fmt.Errorf("series of length %d too short for the given options, need > %d", raw.Len(), minLen)
	}

	norm, err := raw.Normalize()
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	lInits, err := o.baseline(norm)
	if err != nil {
		return nil, err
	}
	lInit, baseCh := math.Inf(1), 0
	for ch, l := range lInits {
		if l < lInit {
			lInit, baseCh = l, ch
		}
	}

	score := ScoringFor(norm.Channels())
	lg := &Log{}
	var snapshots [][][]float64
	var reason string

	trials, err := o.runTrials(ctx, norm, score)
	if err != nil {
		return nil, err
	}
	best, snap, trialErr := reduceTrials(trials)
	if !best.ok && allFailed(trials) {
		return nil, fmt.Errorf("first embedding cycle: %w", trialErr)
	}
	switch {
	case !best.ok:
		// Nothing nominated anywhere: fall back to the cheapest 1-D
		// baseline so the run always returns at least one column.
		if snap != nil {
			snapshots = append(snapshots, snap)
		}
		lg.Commit(o.opts.Delays[0], baseCh, lInits[baseCh])
		reason = "no continuity peaks in any channel"
		if trialErr != nil {
			reason = fmt.Sprintf("continuity engine: %v", trialErr)
		}
	default:
		snapshots = append(snapshots, snap)
		lg.Commit(o.opts.Delays[0], best.trial, lInits[best.trial])
		lg.Commit(best.lag, best.channel, best.l)
		if d := o.stopper.Stop(lg, 1, o.opts.MaxCycles, lInit); d.Stop {
			if d.RejectLast {
				lg.Truncate(lg.Len() - 1)
			}
			reason = d.Reason
		}
	}

	for cycle := 2; reason == ""; cycle++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// The budget bounds the loop regardless of what the stopper
		// decides.
		if cycle > o.opts.MaxCycles {
			reason = "cycle budget reached"
			break
		}
		y, err := series.Genembed(norm, lg.delays, lg.channels)
		if err != nil {
			return nil, err
		}
		nom, snap, err := o.runCycle(y, norm, lg.delays, lg.channels, cycle, 0, score)
		if err != nil {
			// The committed history is still a valid reconstruction;
			// an engine failure mid-run ends the search, it does not
			// void it.
			reason = fmt.Sprintf("continuity engine: %v", err)
			break
		}
		if !nom.ok {
			reason = "no continuity peaks in any channel"
			break
		}
		snapshots = append(snapshots, snap)
		lg.Commit(nom.lag, nom.channel, nom.l)
		if d := o.stopper.Stop(lg, cycle, o.opts.MaxCycles, lInit); d.Stop {
			if d.RejectLast {
				lg.Truncate(lg.Len() - 1)
			}
			reason = d.Reason
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Replay the committed history against the raw series so the returned
	// trajectory is in original units.
	traj, err := series.Genembed(raw, lg.delays, lg.channels)
	if err != nil {
		return nil, err
	}
	return &Result{
		Trajectory: traj,
		Delays:     lg.Delays(),
		Channels:   lg.Channels(),
		Ls:         lg.Ls(),
		Snapshots:  snapshots,
		LInit:      lInit,
		Stopped:    reason,
	}, nil
}

// baseline prices every channel's own zero-delay 1-D embedding. The
// channels are independent, so they are scored concurrently and reduced
// in index order.
func (o *Orchestrator) baseline(norm series.Set) ([]float64, error) {
	lInits := make([]float64, norm.Channels())
	errs := make([]error, norm.Channels())
	var wg sync.WaitGroup
	for ch := 0; ch < norm.Channels(); ch++ {
		wg.Add(1)
		go func(ch int) {
			defer wg.Done()
			y := series.Embed(norm[ch], 0)
			lInits[ch], errs[ch] = o.cost.L(y, o.rngFor(0, 0, ch+1))
		}(ch)
	}
	wg.Wait()
	for ch, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("baseline cost of channel %d: %w", ch, err)
		}
	}
	return lInits, nil
}

// trialResult carries a cycle-1 trial outcome: the winning nominee for
// that starting channel plus the snapshot it was drawn from.
type trialResult struct {
	nom  nominee
	snap [][]float64
	err  error
}

// runTrials searches over every candidate starting channel. Each trial
// runs a full cycle against that channel's 1-D embedding. Trials run
// concurrently into an index-addressed slice so the later reduction is
// order-independent.
func (o *Orchestrator) runTrials(ctx context.Context, norm series.Set, score ScoreFunc) ([]trialResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := norm.Channels()
	trials := make([]trialResult, m)
	var wg sync.WaitGroup
	for t := 0; t < m; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			y := series.Embed(norm[t], o.opts.Delays[0])
			nom, snap, err := o.runCycle(y, norm, []int{o.opts.Delays[0]}, []int{t}, 1, t, score)
			trials[t] = trialResult{nom: nom, snap: snap, err: err}
		}(t)
	}
	wg.Wait()
	return trials, nil
}

// reduceTrials scans in channel order so exact ties fall to the lowest
// starting channel. When nothing nominated it still returns the lowest
// scored channel's snapshot and the first trial error, so the caller can
// record the attempted cycle and report why it ended.
func reduceTrials(trials []trialResult) (trialNominee, [][]float64, error) {
	best := trialNominee{trial: -1}
	var snap [][]float64
	var firstErr error
	for t, tr := range trials {
		if tr.err != nil {
			if firstErr == nil {
				firstErr = tr.err
			}
			continue
		}
		if snap == nil {
			snap = tr.snap
		}
		if tr.nom.ok && (best.trial < 0 || tr.nom.score < best.score) {
			best = trialNominee{nominee: tr.nom, trial: t}
		}
	}
	if best.trial >= 0 {
		snap = trials[best.trial].snap
	}
	return best, snap, firstErr
}

// trialNominee pairs a nominee with the starting channel it competed for.
type trialNominee struct {
	nominee
	trial int
}

func allFailed(trials []trialResult) bool {
	for _, tr := range trials {
		if tr.err == nil {
			return false
		}
	}
	return true
}

// runCycle performs one embedding cycle against working trajectory y built
// from history (histLags, histChans): one continuity snapshot, then a
// per-channel nomination, reduced across channels in index order.
func (o *Orchestrator) runCycle(y series.Trajectory, norm series.Set, histLags, histChans []int, cycle, trial int, score ScoreFunc) (nominee, [][]float64, error) {
	snap, err := o.engine.Snapshot(y, norm, o.opts.Delays, o.rngFor(cycle, trial, 0))
	if err != nil {
		return nominee{}, nil, err
	}
	m := norm.Channels()
	noms := make([]nominee, m)
	var wg sync.WaitGroup
	for ch := 0; ch < m; ch++ {
		wg.Add(1)
		go func(ch int) {
			defer wg.Done()
			noms[ch] = o.nominate(norm, histLags, histChans, snap, ch, cycle, trial, score)
		}(ch)
	}
	wg.Wait()

	best := nominee{}
	for _, nom := range noms {
		// Strict < keeps the lowest channel index on exact ties.
		if nom.ok && (!best.ok || nom.score < best.score) {
			best = nom
		}
	}
	return best, snap, nil
}

// scoreTol is the relative margin a later peak must clear to displace an
// earlier one within a channel. Lags a full period apart reconstruct the
// same geometry and price within noise of each other; the smallest such
// lag is the one worth committing.
const scoreTol = 0.05

// nominate picks one channel's cheapest peak for the cycle. Peaks whose
// trial trajectory cannot be priced (too short for the horizon at that
// lag) are skipped, which can leave the channel without a nominee.
func (o *Orchestrator) nominate(norm series.Set, histLags, histChans []int, snap [][]float64, ch, cycle, trial int, score ScoreFunc) nominee {
	curve := make([]float64, len(o.opts.Delays))
	for li := range curve {
		curve[li] = snap[li][ch]
	}
	peaks := ExtractPeaks(curve, o.opts.Delays)
	rng := o.rngFor(cycle, trial, ch+1)

	best := nominee{}
	for _, pk := range peaks {
		lags := append(append([]int{}, histLags...), pk.Lag)
		chans := append(append([]int{}, histChans...), ch)
		y, err := series.Genembed(norm, lags, chans)
		if err != nil {
			continue
		}
		l, err := o.cost.L(y, rng)
		if err != nil {
			continue
		}
		// Peaks arrive in increasing lag order; a later peak must beat
		// the incumbent by more than the tolerance to displace it.
		if sc := score(l, pk.Height); !best.ok || sc < best.score-scoreTol*math.Abs(best.score) {
			best = nominee{ok: true, lag: pk.Lag, channel: ch, l: l, score: sc}
		}
	}
	return best
}

// rngFor derives a deterministic sampling source for one collaborator
// call. Every (cycle, trial, consumer) triple gets its own generator, so
// concurrent scheduling cannot change what any call samples and the
// continuity engine never shares a stream with the cost function.
func (o *Orchestrator) rngFor(cycle, trial, consumer int) *rand.Rand {
	seed := o.opts.Seed + int64(cycle)*1_000_003 + int64(trial)*10_007 + int64(consumer)*101
	return rand.New(rand.NewSource(seed))
}
