package application

// CalendarAction is the calendar side effect attempted after a status change.
type CalendarAction string

const (
	CalendarActionNone   CalendarAction = "none"
	CalendarActionCreate CalendarAction = "create"
	CalendarActionDelete CalendarAction = "delete"
)

// CalendarSyncResult reports the best-effort calendar side effect of a transition.
// Err is set when the call failed; the status change itself is already committed.
type CalendarSyncResult struct {
	Action  CalendarAction
	EventID string
	Err     error
}

// Attempted reports whether a calendar call was made.
func (r CalendarSyncResult) Attempted() bool {
	return r.Action != CalendarActionNone && r.Action != ""
}

// Failed reports whether the calendar call failed.
func (r CalendarSyncResult) Failed() bool {
	return r.Err != nil
}

// Status summarizes the result as skipped, synced or failed.
func (r CalendarSyncResult) Status() string {
	switch {
	case !r.Attempted():
		return "skipped"
	case r.Failed():
		return "failed"
	default:
		return "synced"
	}
}
