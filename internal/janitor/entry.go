package janitor

import (
	"os"
	"strings"
	"time"

	"github.com/djherbis/times"
)

// DefaultWorkingSuffix marks an in-progress write. The producer renames
// "<key>.working" to "<key>" once the result is complete.
const DefaultWorkingSuffix = ".working"

// Kind separates finished results from in-progress writes.
type Kind int

const (
	KindCompleted Kind = iota
	KindWorking
)

func (k Kind) String() string {
	switch k {
	case KindCompleted:
		return "completed"
	case KindWorking:
		return "working"
	default:
		return "unknown"
	}
}

// Entry is the metadata of one file in the cache directory.
type Entry struct {
	Name       string
	LastAccess time.Time
	Created    time.Time
	Size       int64
	Kind       Kind
}

// Convention is the naming rule linking a working file to its completed
// result.
type Convention struct {
	WorkingSuffix string
}

func (c Convention) suffix() string {
	if c.WorkingSuffix == "" {
		return DefaultWorkingSuffix
	}
	return c.WorkingSuffix
}

// KindOf derives the kind of an entry from its name.
func (c Convention) KindOf(name string) Kind {
	if strings.HasSuffix(name, c.suffix()) {
		return KindWorking
	}
	return KindCompleted
}

// CompletedNameOf strips the working suffix. It reports false when name is
// not a working file or nothing is left after stripping.
func (c Convention) CompletedNameOf(name string) (string, bool) {
	trimmed, ok := strings.CutSuffix(name, c.suffix())
	if !ok || trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// CompletedNameOf applies the default convention.
func CompletedNameOf(workingName string) (string, bool) {
	return Convention{}.CompletedNameOf(workingName)
}

// entryFromInfo reads access and creation times from the platform stat data.
// Filesystems without stat data (in-memory ones) only carry a modification
// time, which then stands in for both.
func entryFromInfo(name string, info os.FileInfo, conv Convention) Entry {
	e := Entry{
		Name:       name,
		LastAccess: info.ModTime(),
		Created:    info.ModTime(),
		Size:       info.Size(),
		Kind:       conv.KindOf(name),
	}
	if info.Sys() == nil {
		return e
	}

	ts := times.Get(info)
	e.LastAccess = ts.AccessTime()
	switch {
	case ts.HasBirthTime():
		e.Created = ts.BirthTime()
	case ts.HasChangeTime():
		e.Created = ts.ChangeTime()
	}
	return e
}
