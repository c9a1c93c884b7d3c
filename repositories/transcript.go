//go:generate go run go.uber.org/mock/mockgen -source=transcript.go -destination=../mocks/mock_transcript_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	transcriptPrefix = "msg:"
	// roomSeparator ends the room part of a key. Room names never contain it,
	// so the prefix of one room is never the prefix of another.
	roomSeparator = "\x00"
)

type ITranscriptRepository interface {
	Store(entry TranscriptEntry) error
	Recent(room string, limit int) ([]TranscriptEntry, error)
	Rooms() ([]string, error)
}

// TranscriptEntry is one delivered room message as written to the journal.
type TranscriptEntry struct {
	ID         uuid.UUID `json:"id"`
	Room       string    `json:"room"`
	Author     string    `json:"author"`
	Content    string    `json:"content"`
	Lang       string    `json:"lang,omitempty"`
	Recipients int       `json:"recipients"`
	At         time.Time `json:"at"`
}

type TranscriptRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewTranscriptRepository(db *badger.DB, log *slog.Logger) TranscriptRepository {
	return TranscriptRepository{db: db, log: log}
}

// Store persists an entry in BadgerDB.
// The key is formatted as "msg:{room}\x00{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using the UUID as a tie breaker if two messages
//     arrive at the same nanosecond.
func (r TranscriptRepository) Store(entry TranscriptEntry) error {
	key := fmt.Sprintf("%s%019d:%s", roomPrefix(entry.Room), entry.At.UnixNano(), entry.ID)
	bytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// Recent returns at most limit entries of a room, newest first.
// A limit of zero or less returns the whole room.
func (r TranscriptRepository) Recent(room string, limit int) ([]TranscriptEntry, error) {
	var values [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(roomPrefix(room))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		// Reverse iteration starts from the greatest key of the room
		for it.Seek(append(prefix, 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(values) == limit {
				r.log.Debug(fmt.Sprintf("Maximum of %d entries reached", limit), "room", room)
				break
			}
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries := make([]TranscriptEntry, 0, len(values))
	for _, value := range values {
		var entry TranscriptEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Rooms lists every room having at least one entry, in key order.
// Only keys are read; each room is skipped over with a single seek.
func (r TranscriptRepository) Rooms() ([]string, error) {
	var rooms []string
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(transcriptPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); {
			key := string(it.Item().Key())
			room, _, found := strings.Cut(strings.TrimPrefix(key, transcriptPrefix), roomSeparator)
			if !found {
				r.log.Warn("Unexpected transcript key", "key", key)
				it.Next()
				continue
			}
			rooms = append(rooms, room)
			// Jump past every key of this room
			it.Seek([]byte(transcriptPrefix + room + "\x01"))
		}
		return nil
	})
	return lo.Uniq(rooms), err
}

func roomPrefix(room string) string {
	return transcriptPrefix + room + roomSeparator
}
