package cache

import "fmt"

// TableKey is the cache key for the canonical tracking table. There is one
// logical table per deployment, so the key is fixed.
func TableKey() string {
	return "tracking:table"
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
