// Package journal keeps an append-only history of derivations in a bolt
// database file.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "github.com/coreos/bbolt"
	"github.com/google/uuid"
)

const (
	Perm        = 0600
	openTimeout = 3 * time.Second
)

var bucketName = []byte("derivations")

// ErrClosed is returned by operations on a closed journal.
var ErrClosed = errors.New("journal closed")

// Entry is one recorded derivation.
type Entry struct {
	ID        string    `json:"id"`
	Seq       uint64    `json:"seq"`
	Input     string    `json:"input"`
	Variable  string    `json:"variable"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Journal is safe for concurrent use; bolt serializes writers.
type Journal struct {
	db *bolt.DB
}

// Open opens or creates the journal file at path.
func Open(path string) (*Journal, error) {
	db, err := bolt.Open(path, Perm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing journal %s: %w", path, err)
	}
	return &Journal{db: db}, nil
}

// Append stores e, filling in ID, Seq and Timestamp when unset. It returns
// the stored entry.
func (j *Journal) Append(e Entry) (Entry, error) {
	if j.db == nil {
		return e, ErrClosed
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	err := j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		e.Seq = seq
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), data)
	})
	return e, err
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if j.db == nil {
		return nil, ErrClosed
	}
	var entries []Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decoding entry %d: %w", binary.BigEndian.Uint64(k), err)
			}
			entries = append(entries, e)
		}
		return nil
	})
	return entries, err
}

// Len returns the number of stored entries.
func (j *Journal) Len() (int, error) {
	if j.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := j.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return n, err
}

func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
