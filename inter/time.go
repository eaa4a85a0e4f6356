package inter

import (
	"time"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
)

// Timestamp is a UTC time in nanoseconds since the Unix epoch.
type Timestamp uint64

// FromTime converts a wall clock reading.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// FromUnix converts seconds since the epoch.
func FromUnix(sec int64) Timestamp {
	return Timestamp(sec) * Timestamp(time.Second)
}

// Unix returns whole seconds since the epoch.
func (t Timestamp) Unix() int64 {
	return int64(t) / int64(time.Second)
}

// Time returns the timestamp as a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t)).UTC()
}

// Bytes is the big-endian form, used where a timestamp is hashed.
func (t Timestamp) Bytes() []byte {
	return bigendian.Uint64ToBytes(uint64(t))
}

func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339Nano)
}
