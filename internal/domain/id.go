package domain

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the stored form of createdAt columns. Fixed width keeps
// lexical and chronological order identical.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var ids struct {
	sync.Mutex
	last int64
}

// NewID returns a millisecond timestamp id. Ids issued by this process are
// strictly increasing, so two creates in the same millisecond never collide.
func NewID() string {
	return nextID(time.Now())
}

func nextID(now time.Time) string {
	ms := now.UnixMilli()

	ids.Lock()
	defer ids.Unlock()
	if ms <= ids.last {
		ms = ids.last + 1
	}
	ids.last = ms

	return strconv.FormatInt(ms, 10)
}

// NewSlotID returns an id for a slot inserted in bulk for a class:
// <classID>-<millis>-<random>.
func NewSlotID(classID string) string {
	return fmt.Sprintf("%s-%d-%s", classID, time.Now().UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// FormatTimestamp renders t in TimestampLayout (UTC)
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a stored timestamp. RFC 3339 values written by
// other tools are accepted too.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
