// internal/obslog/obslog.go
// Structured logging for the engine components. The teacher injects a
// *log.Logger into every service (see services.TournamentService); the rest
// of the retrieved corpus (backend-go's internal/shared/logger) shows the
// idiomatic upgrade of that same pattern to structured fields via logrus.
// Every engine component here takes a *logrus.Logger the way the teacher
// takes a *log.Logger; For derives an entry pre-seeded with the fields
// relevant to one run.

package obslog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a base logger at the given level ("debug", "info", "warn",
// "error"); callers derive scoped entries with For.
func New(level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return l
}

// For returns a logger entry scoped to one engine operation, carrying the
// correlation fields that recur across the placement/runtime/reschedule
// packages (tournament_id, version_id, run_id).
func For(l *logrus.Logger, component string, fields logrus.Fields) *logrus.Entry {
	merged := logrus.Fields{"component": component}
	for k, v := range fields {
		merged[k] = v
	}
	return l.WithFields(merged)
}
