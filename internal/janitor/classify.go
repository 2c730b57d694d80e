package janitor

import "time"

// Disposition is the per-entry verdict of a pass.
type Disposition int

const (
	Retain Disposition = iota
	RemoveExpired
	RemoveEmptyStale
	RemoveUnfinishedStale
)

// Dispositions lists every disposition in rule order.
var Dispositions = []Disposition{Retain, RemoveExpired, RemoveEmptyStale, RemoveUnfinishedStale}

func (d Disposition) String() string {
	switch d {
	case Retain:
		return "retain"
	case RemoveExpired:
		return "remove_expired"
	case RemoveEmptyStale:
		return "remove_empty_stale"
	case RemoveUnfinishedStale:
		return "remove_unfinished_stale"
	default:
		return "unknown"
	}
}

// Removes reports whether the disposition deletes the entry.
func (d Disposition) Removes() bool {
	return d != Retain
}

const (
	DefaultExpireAfter     = 10 * 24 * time.Hour
	DefaultEmptyGrace      = 5 * time.Minute
	DefaultUnfinishedGrace = 30 * time.Minute
)

// Thresholds are the age limits used by Classify. Zero fields take the
// defaults.
type Thresholds struct {
	// ExpireAfter bounds the time since last access, for any kind of entry.
	ExpireAfter time.Duration
	// EmptyGrace bounds the age of a working file that never got any bytes.
	EmptyGrace time.Duration
	// UnfinishedGrace bounds the age of a working file that has data but was
	// never promoted.
	UnfinishedGrace time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ExpireAfter:     DefaultExpireAfter,
		EmptyGrace:      DefaultEmptyGrace,
		UnfinishedGrace: DefaultUnfinishedGrace,
	}
}

func (t Thresholds) withDefaults() Thresholds {
	if t.ExpireAfter <= 0 {
		t.ExpireAfter = DefaultExpireAfter
	}
	if t.EmptyGrace <= 0 {
		t.EmptyGrace = DefaultEmptyGrace
	}
	if t.UnfinishedGrace <= 0 {
		t.UnfinishedGrace = DefaultUnfinishedGrace
	}
	return t
}

// Classify judges a single entry against now. Rules are checked in order and
// the first match wins, whatever the relative size of the thresholds.
func Classify(e Entry, now time.Time, t Thresholds) Disposition {
	t = t.withDefaults()

	if now.Sub(e.LastAccess) > t.ExpireAfter {
		return RemoveExpired
	}
	if e.Kind != KindWorking {
		return Retain
	}

	age := now.Sub(e.Created)
	if e.Size == 0 && age > t.EmptyGrace {
		return RemoveEmptyStale
	}
	if e.Size > 0 && age > t.UnfinishedGrace {
		return RemoveUnfinishedStale
	}
	return Retain
}
