// Package janitor cleans a result cache directory: it expires entries that
// have not been read for a while and removes working files left behind by a
// producer that died before finishing them.
package janitor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Options configure a Janitor. Only Dir is required.
type Options struct {
	Dir           string
	Thresholds    Thresholds
	WorkingSuffix string
	Exclude       []string
	DryRun        bool

	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Now is read once at the start of every pass.
	Now    func() time.Time
	Logger logrus.FieldLogger
}

// Report summarises a pass.
type Report struct {
	Started       time.Time
	Duration      time.Duration
	Scanned       int
	Retained      int
	Removed       int
	Errors        int
	Inconsistent  int
	ByDisposition map[Disposition]int
}

// Decision pairs an entry with its verdict, as produced by Plan.
type Decision struct {
	Entry       Entry
	Disposition Disposition
}

type Janitor struct {
	dir        string
	fs         afero.Fs
	now        func() time.Time
	thresholds Thresholds
	conv       Convention
	exclude    []string
	dryRun     bool
	log        decisionLogger
}

func New(opts Options) (*Janitor, error) {
	if opts.Dir == "" {
		return nil, errors.New("cache directory is not set")
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		opts.Logger = discard
	}

	return &Janitor{
		dir:        filepath.Clean(opts.Dir),
		fs:         opts.Fs,
		now:        opts.Now,
		thresholds: opts.Thresholds.withDefaults(),
		conv:       Convention{WorkingSuffix: opts.WorkingSuffix},
		exclude:    opts.Exclude,
		dryRun:     opts.DryRun,
		log:        decisionLogger{log: opts.Logger, dryRun: opts.DryRun},
	}, nil
}

// Run performs one pass. Only an unavailable directory or a cancelled
// context ends the pass early; entry-level failures are logged and counted.
func (j *Janitor) Run(ctx context.Context) (Report, error) {
	started := time.Now()
	now := j.now()
	report := Report{Started: now, ByDisposition: make(map[Disposition]int)}

	lister, err := OpenLister(j.fs, j.dir, j.exclude)
	if err != nil {
		return report, err
	}
	defer lister.Close()

	j.log.passStarted(j.dir, now)
	enforcer := NewEnforcer(j.fs, j.dir, j.conv, j.dryRun)

	err = j.walk(ctx, lister, now, func(e Entry, d Disposition) {
		res := enforcer.Enforce(e, d)
		j.log.diagnostics(e, d, res)
		j.log.outcome(e, d, res)

		report.Scanned++
		report.ByDisposition[d]++
		switch res.Outcome {
		case Removed:
			report.Removed++
		default:
			report.Retained++
		}
		if res.RemoveErr != nil {
			report.Errors++
		}
		if res.Inconsistent != nil {
			report.Inconsistent++
		}
	}, func() { report.Errors++ })

	report.Duration = time.Since(started)
	j.log.summary(report)
	return report, err
}

// Plan classifies every entry without touching the directory.
func (j *Janitor) Plan(ctx context.Context) ([]Decision, error) {
	lister, err := OpenLister(j.fs, j.dir, j.exclude)
	if err != nil {
		return nil, err
	}
	defer lister.Close()

	var decisions []Decision
	err = j.walk(ctx, lister, j.now(), func(e Entry, d Disposition) {
		decisions = append(decisions, Decision{Entry: e, Disposition: d})
	}, func() {})
	return decisions, err
}

func (j *Janitor) walk(ctx context.Context, lister *Lister, now time.Time, visit func(Entry, Disposition), statFailed func()) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		name, err := lister.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		info, err := j.fs.Stat(filepath.Join(j.dir, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				j.log.vanished(name)
				continue
			}
			j.log.statFailed(name, err)
			statFailed()
			continue
		}
		if info.IsDir() {
			continue
		}

		e := entryFromInfo(name, info, j.conv)
		visit(e, Classify(e, now, j.thresholds))
	}
}
