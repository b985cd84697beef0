// internal/errs/errs.go
// Typed errors and non-fatal warnings per the error handling design (§7).
// Follows the teacher's services.Err* sentinel style but wraps a Kind so
// callers can errors.As instead of string-matching.

package errs

import "fmt"

// Kind enumerates the fatal error categories. A Kind aborts the enclosing
// transaction; warnings (below) do not.
type Kind string

const (
	NotFound           Kind = "NOT_FOUND"
	VersionNotDraft    Kind = "VERSION_NOT_DRAFT"
	DuplicateMatchCode Kind = "DUPLICATE_MATCH_CODE"
	Validation         Kind = "VALIDATION"
	Capacity           Kind = "CAPACITY"
	Conflict           Kind = "CONFLICT"
	Internal           Kind = "INTERNAL"
)

// Error is a fatal, typed error.
type Error struct {
	Kind   Kind
	Msg    string
	Detail map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New builds a fatal error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WithDetail attaches structured context (e.g. {"match_code": "..."}).
func (e *Error) WithDetail(detail map[string]any) *Error {
	e.Detail = detail
	return e
}

// Is lets errors.Is match any *Error target with the same Kind, so
// &Error{Kind: k} works as a sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WarningCode enumerates the non-fatal warning codes returned alongside a
// successful operation result (§7, §8).
type WarningCode string

const (
	WarnConflictExistingTeam       WarningCode = "CONFLICT_EXISTING_TEAM"
	WarnSlotLocked                 WarningCode = "SLOT_LOCKED"
	WarnDownstreamAlreadyFinal     WarningCode = "DOWNSTREAM_ALREADY_FINAL"
	WarnWFR1AvoidGroupConflict     WarningCode = "W_WF_R1_AVOID_GROUP_CONFLICT"
	WarnWFR2AvoidGroupPotential    WarningCode = "W_WF_R2_AVOID_GROUP_POTENTIAL_CONFLICT"
	WarnScoreParseFailed           WarningCode = "SCORE_PARSE_FAILED"
	WarnNoAvailableSlot            WarningCode = "NO_AVAILABLE_SLOT"
	WarnDayCapExceeded             WarningCode = "DAY_CAP_EXCEEDED"
	WarnRestWFToScoring            WarningCode = "REST_WF_TO_SCORING"
	WarnRestScoringToScoring       WarningCode = "REST_SCORING_TO_SCORING"
	WarnRestUniversalFloor         WarningCode = "REST_UNIVERSAL_FLOOR"
	WarnTeamOverDailyCap           WarningCode = "TEAM_OVER_DAILY_CAP"
	WarnFairnessSecondBeforeFirst  WarningCode = "FAIRNESS_SECOND_BEFORE_ALL_FIRST"
	WarnUnresolvedUpstreamNotBefore WarningCode = "UNRESOLVED_UPSTREAM_NOT_BEFORE"
	WarnConsolationPartialRound    WarningCode = "CONSOLATION_PARTIAL_ROUND"
	WarnSpareCourtViolation        WarningCode = "SPARE_COURT_VIOLATION"
	WarnUnsupportedFieldSize      WarningCode = "UNSUPPORTED_FIELD_SIZE"
)

// Warning is a structured, non-fatal diagnostic returned alongside a
// successful operation.
type Warning struct {
	Code    WarningCode    `json:"code"`
	Message string         `json:"message"`
	Detail  map[string]any `json:"detail,omitempty"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// NewWarning builds a Warning.
func NewWarning(code WarningCode, detail map[string]any, format string, args ...any) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...), Detail: detail}
}
