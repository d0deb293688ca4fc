package model

// EventKind discriminates the progress events emitted by a duplication run.
// Events are emitted in this order (optional stages may be absent):
//
//	copy-start → [skip-notice] → copy-done
//	→ reset-start → reset-done
//	→ [clean-start → clean-done]
//	→ [branch-start → branch-done | pr-start → pr-done]
//	→ [install-skip | install-start → install-done]
//	→ done
type EventKind string

const (
	EventCopyStart    EventKind = "copy-start"
	EventCopyDone     EventKind = "copy-done"
	EventSkipNotice   EventKind = "skip-notice"
	EventResetStart   EventKind = "reset-start"
	EventResetDone    EventKind = "reset-done"
	EventCleanStart   EventKind = "clean-start"
	EventCleanDone    EventKind = "clean-done"
	EventBranchStart  EventKind = "branch-start"
	EventBranchDone   EventKind = "branch-done"
	EventPRStart      EventKind = "pr-start"
	EventPRDone       EventKind = "pr-done"
	EventInstallStart EventKind = "install-start"
	EventInstallDone  EventKind = "install-done"
	EventInstallSkip  EventKind = "install-skip"
	EventDone         EventKind = "done"
)

// AllEventKinds lists every event kind in emission order. Consumers use it
// in tests to check that a switch over Kind handles every case.
func AllEventKinds() []EventKind {
	return []EventKind{
		EventCopyStart, EventSkipNotice, EventCopyDone,
		EventResetStart, EventResetDone,
		EventCleanStart, EventCleanDone,
		EventBranchStart, EventBranchDone,
		EventPRStart, EventPRDone,
		EventInstallSkip, EventInstallStart, EventInstallDone,
		EventDone,
	}
}

// String returns the string representation of EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Skip reasons carried by EventInstallSkip.
const (
	SkipReasonInstallDisabled  = "install disabled by option"
	SkipReasonNoPackageManager = "no package manager available"
)

// Event is a single progress milestone. Kind selects which of the payload
// fields are meaningful:
//
//   - EventSkipNotice: Reason names the excluded directory
//   - EventBranchStart/Done: Branch
//   - EventPRStart/Done: PR, Remote, Branch (the local pr-<n> reference)
//   - EventInstallStart/Done: Manager
//   - EventInstallSkip: Reason
type Event struct {
	Kind        EventKind `json:"kind" yaml:"kind"`
	Destination string    `json:"destination" yaml:"destination"`
	Branch      string    `json:"branch,omitempty" yaml:"branch,omitempty"`
	PR          int       `json:"pr,omitempty" yaml:"pr,omitempty"`
	Remote      string    `json:"remote,omitempty" yaml:"remote,omitempty"`
	Manager     string    `json:"manager,omitempty" yaml:"manager,omitempty"`
	Reason      string    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// EventFunc receives progress events synchronously, in emission order.
// It runs on the duplication goroutine, so slow handlers slow the run.
type EventFunc func(Event)

// Emit calls f with e when f is non-nil.
func (f EventFunc) Emit(e Event) {
	if f != nil {
		f(e)
	}
}
