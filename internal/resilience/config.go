package resilience

import (
	"time"
)

// FromDelaySecs builds the unbounded fixed-delay policy from a configured
// number of seconds. Non-positive values fall back to def.
func FromDelaySecs(secs int, def time.Duration) RetryConfig {
	if secs > 0 {
		return Forever(time.Duration(secs) * time.Second)
	}
	return Forever(def)
}
