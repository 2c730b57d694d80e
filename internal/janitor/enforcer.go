package janitor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Outcome is the state an entry is left in after enforcement.
type Outcome string

const (
	Retained Outcome = "Retained"
	Removed  Outcome = "Removed"
)

// Result describes what enforcement did to one entry.
type Result struct {
	Outcome Outcome
	// Vanished is set when the file was already gone at removal time.
	Vanished bool
	// RemoveErr holds a removal failure other than not-found.
	RemoveErr error
	// Inconsistent wraps ErrInconsistentState when a stale working file had
	// a completed result next to it, named by Completed.
	Inconsistent error
	Completed    string
}

// Enforcer executes dispositions inside one cache directory.
type Enforcer struct {
	fs     afero.Fs
	dir    string
	conv   Convention
	dryRun bool
}

func NewEnforcer(fs afero.Fs, dir string, conv Convention, dryRun bool) *Enforcer {
	return &Enforcer{fs: fs, dir: dir, conv: conv, dryRun: dryRun}
}

// Enforce retains or removes e according to d. A file that disappeared
// before removal counts as removed, so enforcing twice is harmless.
func (en *Enforcer) Enforce(e Entry, d Disposition) Result {
	if !d.Removes() {
		return Result{Outcome: Retained}
	}

	res := Result{Outcome: Removed}
	if !en.dryRun {
		if err := en.fs.Remove(filepath.Join(en.dir, e.Name)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				res.Vanished = true
			} else {
				res.Outcome = Retained
				res.RemoveErr = fmt.Errorf("remove %s: %w", e.Name, err)
			}
		}
	}

	if d == RemoveUnfinishedStale {
		if completed, ok := en.completedPresent(e.Name); ok {
			res.Completed = completed
			res.Inconsistent = fmt.Errorf("%w: %s present alongside %s", ErrInconsistentState, completed, e.Name)
		}
	}
	return res
}

func (en *Enforcer) completedPresent(workingName string) (string, bool) {
	completed, ok := en.conv.CompletedNameOf(workingName)
	if !ok {
		return "", false
	}
	info, err := en.fs.Stat(filepath.Join(en.dir, completed))
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return completed, true
}
