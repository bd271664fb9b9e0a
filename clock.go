package memberjwt

import "time"

// Clock supplies the current time. Production code uses RealClock; tests
// inject a fake to step across renewal thresholds and expiry.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns a Clock backed by time.Now.
func RealClock() Clock { return realClock{} }
