package sim

import "github.com/sirupsen/logrus"

// fcfsIO serves CPU phases in the order processes became ready, either by
// arriving or by finishing an I/O phase. A process is blocked for the I/O
// time that follows each CPU phase and never holds the CPU while blocked.
func (r *runtime) fcfsIO() Timeline {
	for r.pending() {
		ready := r.ready()
		if len(ready) == 0 {
			if !r.idle() {
				break
			}
			continue
		}
		s := selectBest(ready, func(a, b *procState) bool {
			return a.readySince < b.readySince
		})
		r.dispatch(s, s.remaining)
		r.advancePhase(s)
	}
	return r.timeline
}

// advancePhase moves s past a completed CPU phase into its I/O wait.
func (r *runtime) advancePhase(s *procState) {
	if s.phase >= len(s.phases)-1 {
		return
	}
	io := s.phases[s.phase][1]
	s.phase++
	s.remaining = s.phases[s.phase][0]
	s.blockedUntil = r.clock + io
	s.readySince = s.blockedUntil
	s.skipEmptyPhases(s.blockedUntil)
	logrus.Debugf("[%s] P%d blocked on I/O until %v (phase %d)", r.policy, s.pid(), s.blockedUntil, s.phase)
}
