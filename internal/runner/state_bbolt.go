package runner

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var filesBucket = []byte("files")

type FileStatus string

const (
	StatusDone     FileStatus = "done"
	StatusRetrying FileStatus = "retrying"
	StatusFailed   FileStatus = "failed"
)

// FileRecord is the processing history kept for one watched file. It is
// informational: change detection never reads it.
type FileRecord struct {
	Path      string     `json:"path"`
	Output    string     `json:"output"`
	Status    FileStatus `json:"status"`
	Runs      int        `json:"runs"`     // completed runs
	Attempts  int        `json:"attempts"` // failed attempts since the last completed run
	LastError string     `json:"last_error,omitempty"`
	Modified  time.Time  `json:"modified"` // source modification time of the last completed run
	RunID     string     `json:"run_id,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Mark describes one processing result to fold into a FileRecord.
type Mark struct {
	Output    string
	Status    FileStatus
	LastError string
	Modified  time.Time
	RunID     string
}

type StateStore interface {
	Close() error
	Put(rec *FileRecord) error
	Get(path string) (*FileRecord, error)
	Mark(path string, m Mark) error
}

type BBoltStore struct {
	db *bolt.DB
}

func OpenBBolt(path string) (*BBoltStore, error) {
	if path == "" {
		return nil, errors.New("bbolt path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir state dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(filesBucket)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BBoltStore{db: db}, nil
}

func (s *BBoltStore) Close() error {
	return s.db.Close()
}

func key(path string) []byte {
	sum := sha256.Sum256([]byte(path))
	return sum[:]
}

func (s *BBoltStore) Put(rec *FileRecord) error {
	rec.UpdatedAt = time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(filesBucket), key(rec.Path), rec)
	})
}

func (s *BBoltStore) Get(path string) (*FileRecord, error) {
	var out *FileRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(filesBucket).Get(key(path))
		if v == nil {
			return nil
		}
		var rec FileRecord
		if e := json.Unmarshal(v, &rec); e != nil {
			return e
		}
		out = &rec
		return nil
	})
	return out, err
}

// Mark folds m into the record for path, creating it if missing. A done mark
// counts a run and clears the failure streak; anything else extends it.
func (s *BBoltStore) Mark(path string, m Mark) error {
	k := key(path)
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(filesBucket)
		rec := FileRecord{Path: path}
		if v := bkt.Get(k); v != nil {
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
		}
		now := time.Now()
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		rec.Output = m.Output
		rec.Status = m.Status
		rec.LastError = m.LastError
		rec.RunID = m.RunID
		if m.Status == StatusDone {
			rec.Runs++
			rec.Attempts = 0
			rec.Modified = m.Modified
		} else {
			rec.Attempts++
		}
		return putJSON(bkt, k, rec)
	})
}

func putJSON(b *bolt.Bucket, k []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(k, data)
}
