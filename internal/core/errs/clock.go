package errs

import "time"

// Clock provides the pipeline's time source, substitutable for
// deterministic throttle and statistics tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
