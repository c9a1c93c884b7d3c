// Package domain contains core concepts of the chat system.
// This file defines the Session entity: one connected client owning one socket.
package domain

import (
	"io"
	"sync"

	"schat/errors"

	"github.com/google/uuid"
)

// Session is one connected, named client bound to one handler goroutine.
//
// Name is written once by the registry when the username is claimed and never
// changes afterwards. Rooms is owned by the registry and must only be touched
// under its lock. Writes to the connection are serialized by the session's own
// mutex, so a line written through Send is never interleaved with another one.
type Session struct {
	ID     uuid.UUID
	Name   string
	Remote string
	Rooms  Set

	mu     sync.Mutex
	conn   io.WriteCloser
	closed bool
}

func NewSession(conn io.WriteCloser, remote string) *Session {
	return &Session{
		ID:     uuid.New(),
		Remote: remote,
		Rooms:  make(Set),
		conn:   conn,
	}
}

// Send performs one write on the connection while holding the session lock.
func (s *Session) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrSessionClosed
	}
	_, err := s.conn.Write(payload)
	return err
}

func (s *Session) SendString(payload string) error {
	return s.Send([]byte(payload))
}

// Terminate writes the termination sentinel and closes the connection.
func (s *Session) Terminate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	_, writeErr := s.conn.Write([]byte{Sentinel})
	if err := s.conn.Close(); err != nil {
		return err
	}
	return writeErr
}

// Close releases the connection without notifying the client. Safe to call twice.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
