// internal/utils/helpers.go
// General utility functions shared across the engine packages.

package utils

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// GenerateUUID generates a new correlation id for externally-facing
// operations (desk draft creation, policy runs). Entity ids themselves are
// stable integers assigned by the store, per the data model.
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateRunID generates a unique id for a single engine invocation, used
// to correlate log lines for one generate/place/verify/finalize call.
func GenerateRunID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.New().String())
}

// MustMarshalJSON marshals data to JSON or panics. Used only for values the
// caller controls and that are known-marshalable (internal score/plan blobs).
func MustMarshalJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal JSON: %v", err))
	}
	return json.RawMessage(data)
}

// MinInt returns the minimum of two integers.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MaxInt returns the maximum of two integers.
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// StringPtr returns a pointer to a string.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to an int.
func IntPtr(i int) *int {
	return &i
}

// Int64Ptr returns a pointer to an int64.
func Int64Ptr(i int64) *int64 {
	return &i
}
