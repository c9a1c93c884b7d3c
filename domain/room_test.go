package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoom_Members_Set(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")

	room.Members.Add("carol")
	room.Members.Add("alice")
	room.Members.Add("alice")

	req.True(room.Members.Has("alice"))
	req.Equal([]string{"alice", "carol"}, room.Members.Sorted())

	room.Members.Remove("alice")
	room.Members.Remove("nobody")
	req.False(room.Members.Has("alice"))
	req.Equal([]string{"carol"}, room.Members.Sorted())
}
