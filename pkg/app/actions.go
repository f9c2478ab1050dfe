package app

// Action is an entry of the main menu.
type Action int

const (
	List Action = iota
	Add
	Done
	Start
	Stop
	Delete
	Open
	Mod
	Wait
	Annotate
	Schedule
	Exit
)

func (a Action) String() string {
	switch a {
	case Add:
		return "Add"
	case Delete:
		return "Delete"
	case Done:
		return "Done"
	case List:
		return "List"
	case Start:
		return "Start"
	case Stop:
		return "Stop"
	case Open:
		return "Open"
	case Mod:
		return "Mod"
	case Wait:
		return "Wait"
	case Annotate:
		return "Annotate"
	case Schedule:
		return "Schedule"
	case Exit:
		return "Exit (Escape)"
	default:
		return "Unknown"
	}
}

// Actions returns the main menu entries in display order. Schedule is only
// offered when a calendar is configured.
func Actions(withSchedule bool) []Action {
	actions := []Action{List, Add, Done, Start, Stop, Delete, Open, Mod, Wait, Annotate}
	if withSchedule {
		actions = append(actions, Schedule)
	}
	return append(actions, Exit)
}
