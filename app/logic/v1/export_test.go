package v1

import "time"

// SetNowFunc pins the clock used for workspace ids and returns a func restoring it.
func SetNowFunc(f func() time.Time) func() {
	prev := nowFunc
	nowFunc = f
	return func() { nowFunc = prev }
}
