package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Store wraps BoltDB to keep historical leaderboard snapshots on local disk.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

var _ repository.SnapshotRepository = (*Store)(nil)

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "snapshots"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Save stores a snapshot under a period-prefixed, time-ordered key.
func (s *Store) Save(_ context.Context, snap *domain.Snapshot) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if snap == nil || snap.Period == "" {
		return domain.ErrInvalidPayload
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now()
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(buildKey(snap), payload)
	})
}

// List returns up to limit snapshots for the period, newest first.
func (s *Store) List(_ context.Context, period domain.Period, limit int) ([]domain.Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 20
	}

	prefix := periodPrefix(period)
	var snaps []domain.Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()

		// Position on the last key carrying the prefix, then walk backwards.
		k, v := c.Seek(prefixEnd(prefix))
		if k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}
		for ; k != nil && bytes.HasPrefix(k, prefix) && len(snaps) < limit; k, v = c.Prev() {
			var snap domain.Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				continue
			}
			snaps = append(snaps, snap)
		}
		return nil
	})
	return snaps, err
}

// Cleanup removes snapshots taken before olderThan and reports how many were dropped.
func (s *Store) Cleanup(_ context.Context, olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var snap domain.Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				continue
			}
			if snap.TakenAt.Before(olderThan) {
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	return removed, err
}

// Size returns the number of stored snapshots.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func periodPrefix(period domain.Period) []byte {
	return []byte(string(period) + "/")
}

// prefixEnd returns the smallest key greater than every key with the prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	end[len(end)-1]++
	return end
}

func buildKey(snap *domain.Snapshot) []byte {
	return []byte(fmt.Sprintf("%s/%020d_%s", snap.Period, snap.TakenAt.UnixNano(), snap.ID))
}
