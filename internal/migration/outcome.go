// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

// FailureKind classifies how a sender run ended. Each kind maps to exactly
// one cleanup action set in the orchestrator; in particular only
// [FailurePreGo] ever triggers an automatic resume of the source domain.
type FailureKind int

const (
	// FailureNone means the migration completed and the source copy has
	// been destroyed.
	FailureNone FailureKind = iota

	// FailureProtocol is a sentinel mismatch before any irreversible
	// action. The source domain is left untouched.
	FailureProtocol

	// FailureSuspendTimeout is a suspend that timed out. The guest may
	// still be alive, so it is left untouched rather than resumed.
	FailureSuspendTimeout

	// FailurePreGo is any other suspend, transport or rename failure
	// before the go message. The source domain is resumed locally.
	FailurePreGo

	// FailurePostGo is any failure after the go write. Domain state is
	// undefined; no automatic corrective action is taken.
	FailurePostGo

	// FailureRemoteStartup means the receiver reported it could not start
	// the domain and granted the sender permission to resume. The sender
	// has already renamed back and resumed.
	FailureRemoteStartup
)

// String implements the [fmt.Stringer] interface.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "success"
	case FailureProtocol:
		return "protocol violation"
	case FailureSuspendTimeout:
		return "suspend timeout"
	case FailurePreGo:
		return "failure before handover"
	case FailurePostGo:
		return "failure after handover"
	case FailureRemoteStartup:
		return "remote startup failure"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a sender run.
type Outcome struct {
	Kind FailureKind
	Err  error
}

// Failed reports whether the outcome is a failure.
func (o Outcome) Failed() bool {
	return o.Kind != FailureNone
}
