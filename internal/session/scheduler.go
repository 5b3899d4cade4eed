package session

import "time"

// Scheduler arranges for fn to run no earlier than d from now. The returned
// cancel stops a pending call; it is a no-op once fn has started.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler is the wall-clock Scheduler used in production.
type TimerScheduler struct{}

// Schedule runs fn on a time.AfterFunc timer.
func (TimerScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
