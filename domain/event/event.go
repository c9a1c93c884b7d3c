package event

import (
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	RoomName() string
}

// MessagePosted is emitted once per room a broadcast was delivered to.
type MessagePosted struct {
	ID         uuid.UUID
	Room       string
	Author     string
	Content    string
	Recipients int
	At         time.Time
}

func (m MessagePosted) RoomName() string {
	return m.Room
}
