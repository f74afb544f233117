package types

import "time"

// TaskKind is the kind of a ScheduledTask (GLOSSARY: PreFetch / Submit /
// Retry are the three task kinds of the ClaimScheduler state machine).
type TaskKind int

const (
	// PreFetch primes the sequence cache shortly before unlock.
	PreFetch TaskKind = iota
	// Submit builds, signs, and submits the claim+payment transaction.
	Submit
	// Retry re-arms a Submit after a classified, retryable failure.
	Retry
)

func (k TaskKind) String() string {
	switch k {
	case PreFetch:
		return "PreFetch"
	case Submit:
		return "Submit"
	case Retry:
		return "Retry"
	default:
		return "Unknown"
	}
}

// Canceler cancels a single armed task. Implementations must make
// cancellation idempotent and must guarantee that, once Cancel returns,
// the task body will not subsequently run (spec.md §4.4: "Cancellation is
// idempotent and must not run the task body").
type Canceler interface {
	Cancel()
}

// ScheduledTask is the handle spec.md §3 describes: {balanceId, kind,
// deadline, cancel}. For each balance at most one task of each kind may be
// armed at a time; BalanceRegistry enforces that invariant by keying its
// task map on (BalanceID, TaskKind).
type ScheduledTask struct {
	BalanceID BalanceID
	Kind      TaskKind
	Deadline  time.Time
	Cancel    Canceler
}
