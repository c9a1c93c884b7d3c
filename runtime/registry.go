package runtime

import (
	"slices"
	"sync"

	"schat/domain"
	"schat/errors"

	"github.com/samber/lo"
)

// Delivery is one (room, recipient) pair of a broadcast snapshot.
type Delivery struct {
	Room    string
	Session *domain.Session
}

// Registry owns the session registry (username -> session) and the room
// registry (room name -> room) behind a single lock.
//
// Membership is stored on both sides as names only: a session lists the rooms
// it is subscribed to, a room lists the usernames of its members. Both sides
// are always updated in the same critical section, so no caller can observe
// one side without the other.
//
// Lock order: the registry lock may be held while a session write lock is
// taken, never the reverse.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	rooms    map[string]*domain.Room
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*domain.Session),
		rooms:    make(map[string]*domain.Room),
	}
}

// Claim binds name to the session if nobody else holds it.
// Check and insert happen atomically, so two racing claims cannot both win.
func (r *Registry) Claim(session *domain.Session, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.sessions[name]; taken {
		return errors.ErrUsernameTaken
	}
	session.Name = name
	r.sessions[name] = session
	return nil
}

// Release unsubscribes the session from every room and removes it from the
// session registry. It returns false when the session was not registered,
// which makes it safe to call from every exit path of a handler.
func (r *Registry) Release(session *domain.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.registered(session) {
		return false
	}
	r.unsubscribeAll(session)
	delete(r.sessions, session.Name)
	return true
}

func (r *Registry) CreateRoom(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[name]; ok {
		return errors.ErrRoomExists
	}
	r.rooms[name] = domain.NewRoom(name)
	return nil
}

// DeleteRoom removes the room from every member's subscribed set before the
// room itself goes away. Members are not notified.
func (r *Registry) DeleteRoom(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[name]
	if !ok {
		return errors.ErrRoomNotFound
	}
	for member := range room.Members {
		if session, ok := r.sessions[member]; ok {
			session.Rooms.Remove(name)
		}
	}
	delete(r.rooms, name)
	return nil
}

func (r *Registry) Subscribe(session *domain.Session, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.registered(session) {
		return errors.ErrSessionNotFound
	}
	room, ok := r.rooms[name]
	if !ok {
		return errors.ErrRoomNotFound
	}
	if room.Members.Has(session.Name) {
		return errors.ErrAlreadySubscribed
	}
	room.Members.Add(session.Name)
	session.Rooms.Add(name)
	return nil
}

func (r *Registry) UnsubscribeAll(session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.registered(session) {
		return errors.ErrSessionNotFound
	}
	r.unsubscribeAll(session)
	return nil
}

func (r *Registry) HasRoom(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[name]
	return ok
}

func (r *Registry) RoomNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.rooms)
	slices.Sort(names)
	return names
}

func (r *Registry) SubscribedRooms(session *domain.Session) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.registered(session) {
		return nil, errors.ErrSessionNotFound
	}
	return session.Rooms.Sorted(), nil
}

// Members lists the usernames subscribed to a room.
func (r *Registry) Members(name string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[name]
	if !ok {
		return nil, errors.ErrRoomNotFound
	}
	return room.Members.Sorted(), nil
}

func (r *Registry) Usernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.sessions)
	slices.Sort(names)
	return names
}

// Recipients snapshots, for every room the sender belongs to, the sessions
// subscribed to it (sender included). The caller writes to them after the
// registry lock has been released.
func (r *Registry) Recipients(sender *domain.Session) []Delivery {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.registered(sender) {
		return nil
	}
	var deliveries []Delivery
	for _, roomName := range sender.Rooms.Sorted() {
		room, ok := r.rooms[roomName]
		if !ok {
			continue
		}
		for _, member := range room.Members.Sorted() {
			if session, ok := r.sessions[member]; ok {
				deliveries = append(deliveries, Delivery{Room: roomName, Session: session})
			}
		}
	}
	return deliveries
}

func (r *Registry) Counts() (sessions, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), len(r.rooms)
}

// Drain empties both registries and hands back the sessions that were still
// registered. Only the shutdown path uses it.
func (r *Registry) Drain() []*domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := lo.Values(r.sessions)
	for _, session := range sessions {
		session.Rooms = make(domain.Set)
	}
	r.sessions = make(map[string]*domain.Session)
	r.rooms = make(map[string]*domain.Room)
	return sessions
}

func (r *Registry) registered(session *domain.Session) bool {
	if session == nil {
		return false
	}
	current, ok := r.sessions[session.Name]
	return ok && current == session
}

func (r *Registry) unsubscribeAll(session *domain.Session) {
	for roomName := range session.Rooms {
		if room, ok := r.rooms[roomName]; ok {
			room.Members.Remove(session.Name)
		}
	}
	session.Rooms = make(domain.Set)
}
