package diag

// Code identifies a diagnostic kind. The String form is the stable identifier
// surfaced to IDE clients and must never change for a shipped code.
type Code uint16

const (
	UnknownCode Code = 0

	// Flow analysis (4000-4999)
	FlowUnreachable Code = 4001
	FlowUnassigned  Code = 4002
	FlowNullDeref   Code = 4003
)

func (c Code) String() string {
	switch c {
	case FlowUnreachable:
		return "FLOW_UNREACHABLE"
	case FlowUnassigned:
		return "FLOW_UNASSIGNED"
	case FlowNullDeref:
		return "FLOW_NULL_DEREF"
	default:
		return "FLOW_UNKNOWN"
	}
}
