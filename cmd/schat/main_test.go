package main

import (
	"bytes"
	"flag"
	"net"
	"syscall"
	"testing"
	"time"

	"schat/errors"

	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	t.Run("Port and room", func(t *testing.T) {
		req := require.New(t)
		opts, err := parseFlags([]string{"-p", "9000", "-s", "lobby"}, &bytes.Buffer{})
		req.NoError(err)
		req.Equal(Options{Port: 9000, Room: "lobby"}, opts)
	})

	t.Run("Default room", func(t *testing.T) {
		req := require.New(t)
		opts, err := parseFlags([]string{"-p", "1024"}, &bytes.Buffer{})
		req.NoError(err)
		req.Equal("actual", opts.Room)
	})

	t.Run("Missing port", func(t *testing.T) {
		req := require.New(t)
		var out bytes.Buffer
		_, err := parseFlags(nil, &out)
		req.ErrorIs(err, errors.ErrInvalidPort)
		req.Contains(out.String(), "usage: schat -p <port> [-s <room>]")
	})

	t.Run("Port out of range", func(t *testing.T) {
		for _, port := range []string{"1023", "65536", "-1"} {
			_, err := parseFlags([]string{"-p", port}, &bytes.Buffer{})
			require.ErrorIs(t, err, errors.ErrInvalidPort, port)
		}
	})

	t.Run("Invalid room", func(t *testing.T) {
		_, err := parseFlags([]string{"-p", "9000", "-s", "two words"}, &bytes.Buffer{})
		require.ErrorIs(t, err, errors.ErrInvalidName)
	})

	t.Run("Unknown flag", func(t *testing.T) {
		_, err := parseFlags([]string{"-x"}, &bytes.Buffer{})
		require.Error(t, err)
	})

	t.Run("Help", func(t *testing.T) {
		_, err := parseFlags([]string{"-h"}, &bytes.Buffer{})
		require.ErrorIs(t, err, flag.ErrHelp)
	})

	t.Run("Extra arguments", func(t *testing.T) {
		_, err := parseFlags([]string{"-p", "9000", "extra"}, &bytes.Buffer{})
		require.Error(t, err)
	})
}

func TestConfig_CharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := Config{CharReplacement: "#"}.CharacterRune()
	req.NoError(err)
	req.Equal('#', r)

	_, err = Config{CharReplacement: "##"}.CharacterRune()
	req.ErrorIs(err, errors.ErrInvalidReplacement)
	_, err = Config{CharReplacement: ""}.CharacterRune()
	req.ErrorIs(err, errors.ErrInvalidReplacement)
}

func TestConfig_Words(t *testing.T) {
	req := require.New(t)
	req.Equal([]string{"badger", "snake"}, Config{CensoredWords: " badger, ,snake,"}.Words())
	req.Empty(Config{}.Words())
}

func TestRun_Fails_Fast_When_Port_Is_Taken(t *testing.T) {
	req := require.New(t)
	t.Setenv("TRANSCRIPT_PATH", "")
	t.Setenv("LOG_LEVEL", "ERROR")

	// Given the port is already held by another listener
	held, err := net.Listen("tcp4", ":0")
	req.NoError(err)
	defer held.Close()
	port := held.Addr().(*net.TCPAddr).Port

	// When the server is started on it
	errChan := make(chan error, 1)
	go func() {
		errChan <- run(Options{Port: port, Room: "lobby"})
	}()

	// Then run returns the bind failure instead of hanging
	select {
	case err := <-errChan:
		req.ErrorIs(err, syscall.EADDRINUSE)
		req.ErrorContains(err, "failed to listen")
	case <-time.After(2 * time.Second):
		req.Fail("run did not return on a taken port")
	}
}
