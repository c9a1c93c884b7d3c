package tcp

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"schat/domain"
	"schat/errors"
	"schat/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type pipeClient struct {
	conn   net.Conn
	reader *bufio.Reader
	done   chan struct{}
}

func (c pipeClient) send(t *testing.T, line string) {
	t.Helper()
	require.NoError(t, c.conn.SetWriteDeadline(time.Now().Add(time.Second)))
	_, err := io.WriteString(c.conn, line+"\n")
	require.NoError(t, err)
}

func (c pipeClient) read(t *testing.T, n int) string {
	t.Helper()
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(time.Second)))
	buf := make([]byte, n)
	_, err := io.ReadFull(c.reader, buf)
	require.NoError(t, err)
	return string(buf)
}

func (c pipeClient) waitDone(t *testing.T) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(time.Second):
		require.Fail(t, "handler did not return")
	}
}

func startHandler(t *testing.T, chat *mocks.MockIChatService, initial, maxLine int) pipeClient {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { _ = client.Close() })

	handler := NewHandler(logs.GetLoggerFromLevel(slog.LevelDebug), chat, initial, maxLine)
	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.Handle(context.Background(), server)
	}()
	return pipeClient{conn: client, reader: bufio.NewReader(client), done: done}
}

func TestHandler_Handshake_Retries_Until_Name_Is_Free(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockIChatService(ctrl)

	chat.EXPECT().DefaultRoom().Return("lobby").AnyTimes()
	// Given "alice" already taken
	gomock.InOrder(
		chat.EXPECT().Join(gomock.Any(), "alice").Return(errors.ErrUsernameTaken),
		chat.EXPECT().Join(gomock.Any(), "bob").Return(nil),
		chat.EXPECT().Leave(gomock.Any()).Return(true),
	)

	client := startHandler(t, chat, 16, 1024)

	// When the client asks for a taken name
	client.send(t, "alice")
	req.Equal(domain.PromptUsernameTaken, client.read(t, len(domain.PromptUsernameTaken)))

	// Then an invalid name is also refused
	client.send(t, "two words")
	req.Equal(domain.PromptInvalidUsername, client.read(t, len(domain.PromptInvalidUsername)))

	// And a free name ends the handshake
	client.send(t, "bob\r")
	client.send(t, "quit")
	req.Equal(string([]byte{domain.Sentinel}), client.read(t, 1))
	client.waitDone(t)
}

func TestHandler_Routes_Requests(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockIChatService(ctrl)

	chat.EXPECT().DefaultRoom().Return("lobby").AnyTimes()
	chat.EXPECT().Join(gomock.Any(), "alice").Return(nil)

	posted := make(chan string, 1)
	chat.EXPECT().
		Post(gomock.Any(), gomock.Any(), "hello world").
		DoAndReturn(func(_ context.Context, _ *domain.Session, text string) int {
			posted <- text
			return 1
		})

	queued := make(chan domain.Command, 2)
	chat.EXPECT().
		Enqueue(gomock.Any()).
		DoAndReturn(func(cmd domain.Command) error {
			queued <- cmd
			return nil
		}).
		Times(2)
	chat.EXPECT().Users().Return([]string{"alice", "bob"})
	chat.EXPECT().Leave(gomock.Any()).Return(true)

	client := startHandler(t, chat, 16, 1024)
	client.send(t, "alice")

	// Message runs on the handler
	client.send(t, "message hello world")
	req.Equal("hello world", <-posted)

	// Topology commands are queued with the session attached
	client.send(t, "create games")
	client.send(t, "my-rooms")
	create := <-queued
	req.Equal(domain.CreateRoom, create.Op)
	req.Equal("games", create.Arg)
	req.NotNil(create.Session)
	listing := <-queued
	req.Equal(domain.ListSubscribedRooms, listing.Op)
	req.Same(create.Session, listing.Session)

	// Users is answered inline
	client.send(t, "")
	client.send(t, "users")
	users := string(domain.FormatUserListing([]string{"alice", "bob"}))
	req.Equal(users, client.read(t, len(users)))

	// Bad input gets a reply and nothing else
	client.send(t, "dance")
	req.Equal(domain.ReplyNotRecognized, client.read(t, len(domain.ReplyNotRecognized)))
	client.send(t, "subscribe two words")
	req.Equal(domain.ReplyInvalidRoom, client.read(t, len(domain.ReplyInvalidRoom)))

	client.send(t, "quit")
	req.Equal(string([]byte{domain.Sentinel}), client.read(t, 1))
	client.waitDone(t)
}

func TestHandler_Disconnect_Releases_Session(t *testing.T) {
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockIChatService(ctrl)

	chat.EXPECT().DefaultRoom().Return("lobby").AnyTimes()
	chat.EXPECT().Join(gomock.Any(), "alice").Return(nil)
	// Then the implicit quit releases the session exactly once
	chat.EXPECT().Leave(gomock.Any()).Return(true).Times(1)

	client := startHandler(t, chat, 16, 1024)
	client.send(t, "alice")

	// When the client goes away without quit
	require.NoError(t, client.conn.Close())
	client.waitDone(t)
}

func TestHandler_Oversized_Line_Aborts_Session(t *testing.T) {
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockIChatService(ctrl)

	chat.EXPECT().DefaultRoom().Return("lobby").AnyTimes()
	chat.EXPECT().Join(gomock.Any(), "alice").Return(nil)
	chat.EXPECT().Leave(gomock.Any()).Return(true).Times(1)

	client := startHandler(t, chat, 16, 32)
	client.send(t, "alice")

	// When a line exceeds the bound, the handler stops reading mid-write
	go func() {
		_, _ = io.WriteString(client.conn, "message "+strings.Repeat("x", 200)+"\n")
	}()

	// Then the session is released and closed
	client.waitDone(t)
}

func TestHandler_Disconnect_During_Handshake(t *testing.T) {
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockIChatService(ctrl)

	// Nothing was claimed, so nothing is released
	client := startHandler(t, chat, 16, 1024)
	require.NoError(t, client.conn.Close())
	client.waitDone(t)
}
