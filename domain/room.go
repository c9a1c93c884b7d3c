package domain

// Room is a named broadcast group. Members holds usernames and is only
// read or written under the registry lock.
type Room struct {
	Name    string
	Members Set
}

func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		Members: make(Set),
	}
}
