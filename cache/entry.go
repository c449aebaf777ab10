package cache

import "time"

// entry is the stored form of a cached value: the payload is already
// encoded, so both tiers are type-erased and only the caller knows the
// concrete type. The same shape is persisted verbatim as the disk envelope.
type entry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
