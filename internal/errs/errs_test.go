package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament-planner/internal/errs"
)

func TestNewBuildsFormattedError(t *testing.T) {
	err := errs.New(errs.NotFound, "match %d not found", 42)
	assert.Equal(t, errs.NotFound, err.Kind)
	assert.Equal(t, "match 42 not found", err.Msg)
	assert.Equal(t, "NOT_FOUND: match 42 not found", err.Error())
}

func TestWithDetailAttachesContext(t *testing.T) {
	err := errs.New(errs.Conflict, "already final").WithDetail(map[string]any{"match_id": int64(7)})
	assert.Equal(t, int64(7), err.Detail["match_id"])
}

func TestErrorsIsMatchesOnKindOnly(t *testing.T) {
	err := errs.New(errs.VersionNotDraft, "version 1 is not a draft")
	sentinel := &errs.Error{Kind: errs.VersionNotDraft}
	assert.True(t, errors.Is(err, sentinel))

	other := &errs.Error{Kind: errs.Conflict}
	assert.False(t, errors.Is(err, other))
}

func TestErrorsAsExtractsKind(t *testing.T) {
	wrapped := errors.Join(errs.New(errs.Capacity, "no room"))
	var e *errs.Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, errs.Capacity, e.Kind)
}

func TestNewWarningFormatsMessage(t *testing.T) {
	w := errs.NewWarning(errs.WarnSlotLocked, map[string]any{"match_code": "SF1"}, "slot %d is locked", 5)
	assert.Equal(t, errs.WarnSlotLocked, w.Code)
	assert.Equal(t, "slot 5 is locked", w.Message)
	assert.Equal(t, "SLOT_LOCKED: slot 5 is locked", w.String())
}
