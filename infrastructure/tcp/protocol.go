package tcp

import (
	"strings"

	"schat/domain"
)

type RequestKind int

const (
	Unknown RequestKind = iota
	Empty
	Message
	Queued
	Users
	Quit
	InvalidRoom
)

// Request is one classified client line. Queued requests carry the opcode
// handed to the dispatcher; Message carries the text as typed.
type Request struct {
	Kind RequestKind
	Op   domain.Opcode
	Arg  string
}

var roomVerbs = map[string]domain.Opcode{
	"create":    domain.CreateRoom,
	"delete":    domain.DeleteRoom,
	"subscribe": domain.Subscribe,
}

var bareVerbs = map[string]Request{
	"system-rooms":    {Kind: Queued, Op: domain.ListSystemRooms},
	"my-rooms":        {Kind: Queued, Op: domain.ListSubscribedRooms},
	"unsubscribe-all": {Kind: Queued, Op: domain.UnsubscribeAll},
	"users":           {Kind: Users},
	"quit":            {Kind: Quit},
}

// ParseRequest classifies a line read from a session, without its newline.
// A trailing carriage return is ignored. Blank lines are Empty and get no reply.
func ParseRequest(line string) Request {
	line = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(line) == "" {
		return Request{Kind: Empty}
	}

	verb, rest, hasArg := strings.Cut(line, " ")
	if verb == "message" {
		if !hasArg {
			return Request{Kind: Unknown}
		}
		return Request{Kind: Message, Arg: rest}
	}

	if op, ok := roomVerbs[verb]; ok {
		if !hasArg {
			return Request{Kind: Unknown}
		}
		room := strings.TrimSpace(rest)
		if err := domain.ValidateRoomName(room); err != nil {
			return Request{Kind: InvalidRoom, Arg: room}
		}
		return Request{Kind: Queued, Op: op, Arg: room}
	}

	if req, ok := bareVerbs[strings.TrimRight(verb, " \t")]; ok {
		if strings.TrimSpace(rest) != "" {
			return Request{Kind: Unknown}
		}
		return req
	}
	return Request{Kind: Unknown}
}

// ParseUsername extracts the requested name from a handshake line.
func ParseUsername(line string) string {
	return strings.TrimSuffix(line, "\r")
}
