// Package embed drives the automated phase-space reconstruction search.
//
// Starting from a multivariate series, each embedding cycle scores every
// candidate (channel, lag) pair with a continuity statistic, nominates the
// statistic's peaks, prices each nominee with the Uzal trajectory cost,
// and commits the cheapest one as the next trajectory column. The search
// ends when the cost stops improving, when no channel offers a peak, or
// when the cycle budget runs out.
//
// Typical use:
//
//	res, err := embed.Reconstruct(ctx, s, embed.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Delays, res.Channels)
//
// The collaborators (continuity engine, cost function, stopping rule) are
// interfaces; Reconstruct wires the defaults from internal/continuity and
// internal/uzal, while New accepts custom implementations.
package embed
