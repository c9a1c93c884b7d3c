package domain

import (
	stderrors "errors"
	"fmt"
	"strings"

	"schat/errors"
)

// Sentinel tells the client to print its farewell and disconnect.
// Clients compare it against the byte value of a C EOF char.
const Sentinel byte = 0xFF

const (
	PromptUsernameTaken   = "that username already exists, please enter another one:\n"
	PromptInvalidUsername = "invalid username, please enter another one:\n"

	ReplyRoomExists        = "\nroom already exists.\n\n"
	ReplyRoomNotFound      = "\nroom does not exist.\n\n"
	ReplyAlreadySubscribed = "\nalready subscribed.\n\n"
	ReplyInvalidRoom       = "invalid room name\n"
	ReplyNotRecognized     = "command not recognized\n"

	SystemRoomsTitle     = "SYSTEM ROOMS"
	SubscribedRoomsTitle = "SUBSCRIBED ROOMS"
	SystemUsersTitle     = "SYSTEM USERS"
)

// ReplyFor maps a protocol-level error to the inline reply sent to the
// offending session. ok is false for errors the client never sees.
func ReplyFor(err error) (reply string, ok bool) {
	switch {
	case stderrors.Is(err, errors.ErrRoomExists):
		return ReplyRoomExists, true
	case stderrors.Is(err, errors.ErrRoomNotFound):
		return ReplyRoomNotFound, true
	case stderrors.Is(err, errors.ErrAlreadySubscribed):
		return ReplyAlreadySubscribed, true
	case stderrors.Is(err, errors.ErrInvalidName):
		return ReplyInvalidRoom, true
	case stderrors.Is(err, errors.ErrUnknownOpcode):
		return ReplyNotRecognized, true
	default:
		return "", false
	}
}

// FormatBroadcast renders one delivered line: "<sender>@<room>: <text>".
func FormatBroadcast(sender, room, text string) []byte {
	return []byte(fmt.Sprintf("%s@%s: %s\n", sender, room, text))
}

// FormatRoomListing renders a titled list of quoted room names.
func FormatRoomListing(title string, rooms []string) []byte {
	var b strings.Builder
	writeTitle(&b, title)
	for _, room := range rooms {
		fmt.Fprintf(&b, "\"%s\"\n", room)
	}
	b.WriteString("\n")
	return []byte(b.String())
}

func FormatUserListing(users []string) []byte {
	var b strings.Builder
	writeTitle(&b, SystemUsersTitle)
	for _, user := range users {
		b.WriteString(user)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

func writeTitle(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len(title)))
	b.WriteString("\n")
}
