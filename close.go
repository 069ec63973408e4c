package campus

// Close stops the background sweeper. Afterwards every insert and search
// returns ErrClosed. Close is idempotent and always returns nil.
func (x *Index) Close() error {
	if x == nil {
		return nil
	}
	x.closeOnce.Do(func() {
		x.closed.Store(true)
		if x.sweeper != nil {
			x.sweeper.stop()
		}
		x.logger.Debug("index closed")
	})
	return nil
}
