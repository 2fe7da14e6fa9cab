package particles

import (
	"sync"

	"github.com/pthm-cable/wavemesh/wave"
)

// defaultParallelThreshold is the minimum particle count to split updates
// across workers. Below this, a single goroutine is faster.
const defaultParallelThreshold = 4096

// updateParticles runs per-particle updates, chunked across workers when
// the set is large enough. Each chunk writes only its own particle and
// vertex slots, so no locking is needed; the caller must not touch the mesh
// until this returns.
func (s *System) updateParticles(w wave.Func, p Params, elapsed float64) {
	n := len(s.particles)
	if s.workers <= 1 || n < s.threshold {
		s.updateRange(0, n, w, p, elapsed)
		return
	}

	chunk := (n + s.workers - 1) / s.workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			s.updateRange(start, end, w, p, elapsed)
		}(start, end)
	}
	wg.Wait()
}
