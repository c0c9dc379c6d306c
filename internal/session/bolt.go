package session

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cgast/chkwrite/pkg/lesson"
)

const sessionsBucket = "sessions"

// BoltStore is a bbolt-backed Store. Sessions are stored as JSON under
// their id in a single bucket.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the session database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(sessionsBucket)); err != nil {
			return fmt.Errorf("create bucket %s: %w", sessionsBucket, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Get(id string) (*lesson.Session, error) {
	var s lesson.Session
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(sessionsBucket)).Get([]byte(id))
		if data == nil {
			return ErrSessionNotFound
		}
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal session %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (b *BoltStore) Put(s *lesson.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", s.ID, err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionsBucket)).Put([]byte(s.ID), data)
	})
}

func (b *BoltStore) Delete(id string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionsBucket)).Delete([]byte(id))
	})
}

// List returns every session in key order.
func (b *BoltStore) List() ([]*lesson.Session, error) {
	var out []*lesson.Session
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionsBucket)).ForEach(func(k, v []byte) error {
			var s lesson.Session
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("unmarshal session %s: %w", string(k), err)
			}
			out = append(out, &s)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}
