package vm

// Status is the run state reported by the controller after every call.
type Status byte

const (
	StatusRunning Status = iota
	StatusWaitingForInput
	StatusHalted
)

func (s Status) String() string {
	var out string
	switch s {
	case StatusRunning:
		out = "running"
	case StatusWaitingForInput:
		out = "waiting"
	case StatusHalted:
		out = "halted"
	default:
		out = "unknown"
	}
	return out
}

// Blocked reports whether the host has to intervene before the vm can make
// progress.
func (s Status) Blocked() bool {
	return s == StatusWaitingForInput || s == StatusHalted
}
