package adapter

// State is the lifecycle stage of a simulation in an adapter.
type State int

// The states of a simulation.
const (
	Unprepared State = iota
	Prepared
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Unprepared:
		return "unprepared"
	case Prepared:
		return "prepared"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
