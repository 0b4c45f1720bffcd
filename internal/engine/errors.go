package engine

import (
	"errors"
	"fmt"
)

// ErrScanInFlight is returned by RunOnce when a previous scan still holds the
// single-flight guard. The caller treats it as a no-op, not a failure.
var ErrScanInFlight = errors.New("scan already in progress")

// ScheduleFormatError marks a record whose date/time/zone fields cannot be
// resolved. The record is skipped and logged; the batch continues.
type ScheduleFormatError struct {
	EventID string
	Field   string
	Value   string
}

func (e *ScheduleFormatError) Error() string {
	return fmt.Sprintf("invalid schedule %s %q on reminder %s", e.Field, e.Value, e.EventID)
}

// DeliveryError marks a failed or timed-out outbound send. No delivery-log
// row is written and the record is not completed.
type DeliveryError struct {
	Target string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Target, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// StoreError marks a failed record-store operation. During the candidate
// fetch it aborts the scan; during per-record reads/writes it only skips
// that record.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
