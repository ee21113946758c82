package errtrack

// ErrorTracking is the per-message record persisted by a Tracker.
// Values are never modified in place: AddError and MarkAsFinal return new
// records, so the "read current, compute next, write next" cycle stays explicit.
type ErrorTracking struct {
	// Errors holds one entry per failed attempt, oldest first.
	Errors []ExceptionInfo
	// Final is set once the message must not be retried again. It is never cleared.
	Final bool
}

// ErrorCount returns the number of recorded errors.
func (t ErrorTracking) ErrorCount() int { return len(t.Errors) }

// AddError returns a copy of t with info appended. Final is preserved.
func (t ErrorTracking) AddError(info ExceptionInfo) ErrorTracking {
	errs := make([]ExceptionInfo, len(t.Errors), len(t.Errors)+1)
	copy(errs, t.Errors)
	return ErrorTracking{Errors: append(errs, info), Final: t.Final}
}

// MarkAsFinal returns a copy of t with Final set.
func (t ErrorTracking) MarkAsFinal() ErrorTracking {
	return ErrorTracking{Errors: cloneInfos(t.Errors), Final: true}
}

// Exceeds reports whether the message should be given up on.
func (t ErrorTracking) Exceeds(maxDeliveryAttempts int) bool {
	return t.Final || t.ErrorCount() >= maxDeliveryAttempts
}

func cloneInfos(in []ExceptionInfo) []ExceptionInfo {
	out := make([]ExceptionInfo, len(in))
	copy(out, in)
	return out
}
