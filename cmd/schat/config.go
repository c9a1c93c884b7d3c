package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"schat/domain"
	"schat/errors"

	"github.com/samber/lo"
)

type Config struct {
	Backlog              int           `env:"BACKLOG,default=5"`
	MaxLineLength        int           `env:"MAX_LINE_LENGTH,default=65536"`
	InitialLineBuffer    int           `env:"INITIAL_LINE_BUFFER,default=512"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	StatsInterval        time.Duration `env:"STATS_INTERVAL,default=30s"`
	TranscriptPath       string        `env:"TRANSCRIPT_PATH"`
	TranscriptBufferSize int           `env:"TRANSCRIPT_BUFFER_SIZE,default=256"`
	CensoredWords        string        `env:"CENSORED_WORDS"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
}

func (c Config) CharacterRune() (rune, error) {
	r := []rune(c.CharReplacement)
	if len(r) != 1 {
		return 0, fmt.Errorf("%w: CHARACTER_REPLACEMENT=%q", errors.ErrInvalidReplacement, c.CharReplacement)
	}
	return r[0], nil
}

// Words splits CENSORED_WORDS on commas, dropping blanks.
func (c Config) Words() []string {
	words := lo.Map(strings.Split(c.CensoredWords, ","), func(word string, _ int) string {
		return strings.TrimSpace(word)
	})
	return lo.Compact(words)
}

// Options are the command line arguments: schat -p <port> [-s <room>].
type Options struct {
	Port int
	Room string
}

func parseFlags(args []string, output io.Writer) (Options, error) {
	var opts Options
	fs := flag.NewFlagSet("schat", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&opts.Port, "p", 0, "port to listen on, between 1024 and 65535 (required)")
	fs.StringVar(&opts.Room, "s", "actual", "default room every user joins")
	fs.Usage = func() {
		_, _ = fmt.Fprintln(fs.Output(), "usage: schat -p <port> [-s <room>]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return Options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.Port < 1024 || opts.Port > 65535 {
		fs.Usage()
		return Options{}, fmt.Errorf("%w: got %d", errors.ErrInvalidPort, opts.Port)
	}
	if err := domain.ValidateRoomName(opts.Room); err != nil {
		fs.Usage()
		return Options{}, err
	}
	return opts, nil
}
