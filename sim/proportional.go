// Proportional-share policies: Lottery and Stride. Both re-select every quantum.

package sim

import (
	"math"
	"math/rand"
)

// lottery draws a winning ticket each quantum. Draws come from rng, so the
// same seed reproduces the same timeline.
func (r *runtime) lottery(quantum float64, rng *rand.Rand) Timeline {
	return r.loop(func(ready []*procState) (*procState, float64) {
		s := drawTicket(ready, rng)
		return s, math.Min(quantum, s.remaining)
	})
}

// drawTicket picks a ready process with probability proportional to its tickets.
func drawTicket(ready []*procState, rng *rand.Rand) *procState {
	total := 0
	for _, s := range ready {
		total += s.tickets
	}
	draw := rng.Float64() * float64(total)
	for _, s := range ready {
		draw -= float64(s.tickets)
		if draw <= 0 {
			return s
		}
	}
	return ready[len(ready)-1]
}

// stride runs the ready process with the smallest pass, then advances its
// pass by its stride. Pass values start at 0.
func (r *runtime) stride(quantum float64) Timeline {
	return r.loop(func(ready []*procState) (*procState, float64) {
		s := selectBest(ready, func(a, b *procState) bool {
			return a.pass < b.pass
		})
		s.pass += s.stride
		return s, math.Min(quantum, s.remaining)
	})
}
