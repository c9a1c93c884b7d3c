package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"schat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	Path string `envconfig:"TRANSCRIPT_PATH"`
	// TRANSCRIPT_COLOURS colours the room headers
	Colours bool `envconfig:"TRANSCRIPT_COLOURS" default:"true"`
}

func main() {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	defaultPath := config.Path
	if defaultPath == "" {
		defaultPath = database.DefaultPath
	}

	dbPath := flag.String("db", defaultPath, "Path to the transcript journal")
	room := flag.String("room", "", "Only print this room (all rooms when empty)")
	limit := flag.Int("limit", 20, "Entries per room, newest first (0 for all)")
	flag.Parse()

	// Read-only: the server may hold the lock
	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLogger(nil))
	if err != nil {
		log.Fatalf("Failed to open transcript: %v", err)
	}
	defer db.Close()

	repository := repositories.NewTranscriptRepository(db, logs.GetLoggerFromString("ERROR"))
	rooms := []string{*room}
	if *room == "" {
		if rooms, err = repository.Rooms(); err != nil {
			log.Fatalf("Failed to list rooms: %v", err)
		}
	}
	if err := render(os.Stdout, repository, rooms, *limit, config.Colours); err != nil {
		log.Fatal(err)
	}
}

// render prints one table per room.
func render(w io.Writer, repository repositories.ITranscriptRepository, rooms []string, limit int, colours bool) error {
	for _, room := range rooms {
		entries, err := repository.Recent(room, limit)
		if err != nil {
			return fmt.Errorf("reading room %q: %w", room, err)
		}

		header := fmt.Sprintf("  ====== %s (%d) ======", room, len(entries))
		if colours {
			header = color.New(color.BgBlack, color.FgGreen).Render(header)
		}
		_, _ = fmt.Fprintln(w, header)

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"At", "Author", "Lang", "Recipients", "Content"})
		table.SetAutoWrapText(false)
		table.SetAutoFormatHeaders(true)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetCenterSeparator("")
		table.SetColumnSeparator("")
		table.SetRowSeparator("")
		table.SetHeaderLine(false)
		table.SetBorder(false)
		table.SetTablePadding("\t")

		for _, entry := range entries {
			table.Append([]string{
				entry.At.Format("2006-01-02 15:04:05"),
				entry.Author,
				entry.Lang,
				strconv.Itoa(entry.Recipients),
				entry.Content,
			})
		}
		table.Render()
	}
	return nil
}
