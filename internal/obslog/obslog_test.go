package obslog_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"tournament-planner/internal/obslog"
)

func TestNewDefaultsToInfoOnInvalidLevel(t *testing.T) {
	l := obslog.New("not-a-level")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestNewParsesValidLevel(t *testing.T) {
	l := obslog.New("debug")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}

func TestForMergesComponentAndCallerFields(t *testing.T) {
	l := obslog.New("info")
	entry := obslog.For(l, "engine", logrus.Fields{"run_id": "abc123"})
	assert.Equal(t, "engine", entry.Data["component"])
	assert.Equal(t, "abc123", entry.Data["run_id"])
}
