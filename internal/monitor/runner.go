package monitor

import (
	"context"
	"time"
)

// Run ticks once immediately and then every interval until ctx is cancelled
// or RequestQuit has been called. onTick, when non-nil, receives each status.
//
// Run executes on the caller's goroutine, so once it returns no further tick
// can happen. Hosts call RequestQuit after Run returns, never during.
func (m *Monitor) Run(ctx context.Context, interval time.Duration, onTick func(Status)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	emit := func() {
		st := m.Tick()
		if onTick != nil {
			onTick(st)
		}
	}

	emit()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info().Dur("interval", interval).Msg("Monitor started")
	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("Monitor stopped")
			return ctx.Err()
		case <-m.quit:
			m.logger.Info().Msg("Monitor stopped after quit")
			return nil
		case <-ticker.C:
			// Quit or cancel may have raced the ticker.
			if m.sess.Ended() || ctx.Err() != nil {
				continue
			}
			emit()
		}
	}
}
