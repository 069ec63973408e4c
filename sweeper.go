package campus

import (
	"sync"
	"time"
)

// sweeper periodically drops archived clusters from the live registry.
type sweeper struct {
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func startSweeper(x *Index, interval time.Duration) *sweeper {
	s := &sweeper{
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run(x)
	return s
}

func (s *sweeper) run(x *Index) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			return
		case <-s.ticker.C:
			x.Sweep()
		}
	}
}

// stop halts the worker and waits for an in-progress sweep to finish.
func (s *sweeper) stop() {
	s.ticker.Stop()
	close(s.stopCh)
	s.wg.Wait()
}
