package janitor

import (
	"time"

	"github.com/sirupsen/logrus"
)

// decisionLogger writes the audit trail of a pass. logrus reports sink write
// failures on stderr and returns, so a broken sink never stops a pass.
type decisionLogger struct {
	log    logrus.FieldLogger
	dryRun bool
}

func (l decisionLogger) passStarted(dir string, now time.Time) {
	l.log.WithFields(logrus.Fields{
		"cache_dir": dir,
		"now":       now.Format(time.RFC3339),
		"dry_run":   l.dryRun,
	}).Info("Running Cache Cleanup")
}

func (l decisionLogger) vanished(name string) {
	l.log.WithField("entry", name).Debug("Entry vanished before stat")
}

func (l decisionLogger) statFailed(name string, err error) {
	l.log.WithField("entry", name).WithError(err).Error("Stat failed")
}

// diagnostics precede the outcome record of a working file judged stale.
func (l decisionLogger) diagnostics(e Entry, d Disposition, res Result) {
	fields := logrus.Fields{"entry": e.Name, "size": e.Size, "disposition": d.String()}
	switch d {
	case RemoveEmptyStale:
		l.log.WithFields(fields).Errorf("Working File: %s Empty", e.Name)
	case RemoveUnfinishedStale:
		l.log.WithFields(fields).Errorf("Working File: %s Full, Not Compressed", e.Name)
	}

	if res.Inconsistent != nil {
		l.log.WithFields(fields).WithError(res.Inconsistent).
			Errorf("Associated Cache File: %s Is Present", res.Completed)
	}
	if res.RemoveErr != nil {
		l.log.WithFields(fields).WithError(res.RemoveErr).Error("Remove failed")
	}
}

func (l decisionLogger) outcome(e Entry, d Disposition, res Result) {
	fields := logrus.Fields{
		"entry":       e.Name,
		"last_access": e.LastAccess.Format(time.RFC3339),
		"outcome":     string(res.Outcome),
		"disposition": d.String(),
		"size":        e.Size,
	}
	if res.Vanished {
		fields["vanished"] = true
	}
	if l.dryRun && d.Removes() {
		fields["dry_run"] = true
	}
	l.log.WithFields(fields).Infof("%s last accessed on %s - %s",
		e.Name, e.LastAccess.Format(time.RFC3339), res.Outcome)
}

func (l decisionLogger) summary(r Report) {
	l.log.WithFields(logrus.Fields{
		"scanned":      r.Scanned,
		"retained":     r.Retained,
		"removed":      r.Removed,
		"errors":       r.Errors,
		"inconsistent": r.Inconsistent,
		"duration":     r.Duration.String(),
	}).Info("Cache Cleanup finished")
}
