package acse

import "github.com/thinkgos/go-dlms-cosem/dlms"

// State is a client-side association lifecycle state.
type State int

const (
	Idle State = iota
	AwaitAARE
	Associated
	AwaitRLRE
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitAARE:
		return "await-aare"
	case Associated:
		return "associated"
	case AwaitRLRE:
		return "await-rlre"
	default:
		return "unknown"
	}
}

// Machine tracks one client-side association's lifecycle:
//
//	Idle --send(AARQ)--> AwaitAARE --recv(AARE accepted)--> Associated
//	                               --recv(AARE rejected)--> Idle
//	Associated --send(RLRQ)--> AwaitRLRE --recv(RLRE)--> Idle
//
// It does not itself perform I/O; callers drive it from their transport
// loop and consult it before issuing services.
type Machine struct {
	state State
}

// NewMachine returns a Machine in the Idle state.
func NewMachine() *Machine { return &Machine{state: Idle} }

// State reports the current lifecycle state.
func (m *Machine) State() State { return m.state }

// SentAARQ transitions Idle -> AwaitAARE. Fails if not currently Idle.
func (m *Machine) SentAARQ() error {
	if m.state != Idle {
		return dlms.Newf(dlms.KindUnexpectedAPDU, "acse: cannot send AARQ from state %s", m.state)
	}
	m.state = AwaitAARE
	return nil
}

// ReceivedAARE transitions AwaitAARE -> Associated on acceptance, or back
// to Idle on rejection. Fails if not currently AwaitAARE.
func (m *Machine) ReceivedAARE(result AssociationResult) error {
	if m.state != AwaitAARE {
		return dlms.Newf(dlms.KindUnexpectedAPDU, "acse: unexpected AARE in state %s", m.state)
	}
	if result == Accepted {
		m.state = Associated
		return nil
	}
	m.state = Idle
	return dlms.Newf(dlms.KindAssociationRejected, "acse: association rejected: %s", result)
}

// SentRLRQ transitions Associated -> AwaitRLRE. Fails if not currently
// Associated.
func (m *Machine) SentRLRQ() error {
	if m.state != Associated {
		return dlms.Newf(dlms.KindUnexpectedAPDU, "acse: cannot send RLRQ from state %s", m.state)
	}
	m.state = AwaitRLRE
	return nil
}

// ReceivedRLRE transitions to Idle regardless of the release reason
// carried, per the release procedure: once the peer has answered, the
// association is gone either way.
func (m *Machine) ReceivedRLRE() {
	m.state = Idle
}

// Reset forces the machine back to Idle, e.g. after a transport failure
// that makes the current association unusable.
func (m *Machine) Reset() { m.state = Idle }

// RequireAssociated fails unless the machine is currently Associated,
// guarding service calls that require an active association.
func (m *Machine) RequireAssociated() error {
	if m.state != Associated {
		return dlms.Newf(dlms.KindUnexpectedAPDU, "acse: not associated (state %s)", m.state)
	}
	return nil
}
