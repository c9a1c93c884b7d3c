package tcp

import (
	"testing"

	"schat/domain"

	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Request
	}{
		{"message", "message hello world", Request{Kind: Message, Arg: "hello world"}},
		{"message keeps inner spacing", "message  two  spaces ", Request{Kind: Message, Arg: " two  spaces "}},
		{"message with carriage return", "message hi\r", Request{Kind: Message, Arg: "hi"}},
		{"message without text", "message", Request{Kind: Unknown}},
		{"create", "create games", Request{Kind: Queued, Op: domain.CreateRoom, Arg: "games"}},
		{"delete", "delete games", Request{Kind: Queued, Op: domain.DeleteRoom, Arg: "games"}},
		{"subscribe with trailing blanks", "subscribe games  \r", Request{Kind: Queued, Op: domain.Subscribe, Arg: "games"}},
		{"create without room", "create", Request{Kind: Unknown}},
		{"create with blank room", "create   ", Request{Kind: InvalidRoom, Arg: ""}},
		{"room with a space", "subscribe two words", Request{Kind: InvalidRoom, Arg: "two words"}},
		{"system rooms", "system-rooms", Request{Kind: Queued, Op: domain.ListSystemRooms}},
		{"my rooms", "my-rooms", Request{Kind: Queued, Op: domain.ListSubscribedRooms}},
		{"unsubscribe all", "unsubscribe-all\r", Request{Kind: Queued, Op: domain.UnsubscribeAll}},
		{"users", "users", Request{Kind: Users}},
		{"users with trailing space", "users ", Request{Kind: Users}},
		{"quit", "quit", Request{Kind: Quit}},
		{"quit with argument", "quit now", Request{Kind: Unknown}},
		{"blank line", "   ", Request{Kind: Empty}},
		{"empty line", "", Request{Kind: Empty}},
		{"unknown verb", "dance", Request{Kind: Unknown}},
		{"verbs are case sensitive", "USERS", Request{Kind: Unknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseRequest(tt.line))
		})
	}
}

func TestParseUsername(t *testing.T) {
	req := require.New(t)
	req.Equal("alice", ParseUsername("alice\r"))
	req.Equal("alice", ParseUsername("alice"))
}
