package ledger

import "time"

// SetClock replaces the timestamp source.
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }
