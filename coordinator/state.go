package coordinator

import "sync/atomic"

// State is the lifecycle of one coordinator run.
type State int32

const (
	StateIdle State = iota
	StateDispatching
	StateRunning
	StateCollecting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateRunning:
		return "running"
	case StateCollecting:
		return "collecting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// stateMachine holds the observable run state. Failed is reachable from
// Running or Collecting only; transitions out of a terminal state are
// ignored except the reset to Idle at the start of the next run.
type stateMachine struct {
	v atomic.Int32
}

func (m *stateMachine) get() State {
	return State(m.v.Load())
}

func (m *stateMachine) set(s State) {
	if cur := m.get(); cur.Terminal() && s != StateIdle {
		return
	}
	m.v.Store(int32(s))
}
