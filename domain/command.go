package domain

// Opcode identifies a deferred topology operation applied by the dispatcher.
type Opcode int

const (
	CreateRoom Opcode = iota + 1
	DeleteRoom
	Subscribe
	ListSystemRooms
	UnsubscribeAll
	ListSubscribedRooms
)

func (o Opcode) String() string {
	switch o {
	case CreateRoom:
		return "create-room"
	case DeleteRoom:
		return "delete-room"
	case Subscribe:
		return "subscribe"
	case ListSystemRooms:
		return "list-system-rooms"
	case UnsubscribeAll:
		return "unsubscribe-all"
	case ListSubscribedRooms:
		return "list-subscribed-rooms"
	default:
		return "unknown"
	}
}

// Command is consumed exactly once by the dispatcher, then discarded.
// Session is nil for commands issued by the server itself at startup.
type Command struct {
	Op      Opcode
	Session *Session
	Arg     string
}
