package entity

import "github.com/google/uuid"

// ProgressEvent is one update emitted during a long-running operation.
// Within one operation percentages are monotonically non-decreasing and the
// stream always ends with a terminal event: either 100% with Result set, or
// Err set.
type ProgressEvent struct {
	Slot        string    `json:"slot"`
	OperationID uuid.UUID `json:"operation_id"`
	Percentage  int       `json:"percentage"`
	Message     string    `json:"message"`
	Terminal    bool      `json:"terminal"`

	// Result holds the ClassificationResult or VideoResult on terminal
	// success; Err holds the failure on terminal error. Both are nil on
	// intermediate events.
	Result any   `json:"-"`
	Err    error `json:"-"`
}
