// Package detailsstore keeps the last fetched Details of torrents in a Bolt database file.
package detailsstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/rainbridge/internal/torrentdetails"
	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned from Get when no Details is stored for a torrent.
var ErrNotFound = errors.New("details not found")

var defaultBucket = []byte("details")

// Keys in the bucket of a torrent.
var Keys = struct {
	Details   []byte
	FetchedAt []byte
}{
	Details:   []byte("details"),
	FetchedAt: []byte("fetched_at"),
}

// Store saves Details in a bucket. Each torrent has a sub-bucket named after its hash.
type Store struct {
	db      *bolt.DB
	bucket  []byte
	closeDB bool
}

// Open opens or creates the database file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o640, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	s, err := New(db, defaultBucket)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.closeDB = true
	return s, nil
}

// New returns a Store keeping its data in bucket of db.
func New(db *bolt.DB, bucket []byte) (*Store, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err2 := tx.CreateBucketIfNotExists(bucket)
		return err2
	})
	if err != nil {
		return nil, err
	}
	return &Store{
		db:     db,
		bucket: bucket,
	}, nil
}

// Close the database if it was opened by Open.
func (s *Store) Close() error {
	if !s.closeDB {
		return nil
	}
	return s.db.Close()
}

// Put replaces the stored Details of the torrent with hash.
func (s *Store) Put(hash string, d *torrentdetails.Details, fetchedAt time.Time) error {
	value, err := d.MarshalBinary()
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(s.bucket).CreateBucketIfNotExists([]byte(hash))
		if err != nil {
			return err
		}
		err = b.Put(Keys.Details, value)
		if err != nil {
			return err
		}
		return b.Put(Keys.FetchedAt, []byte(fetchedAt.UTC().Format(time.RFC3339)))
	})
}

// Get returns the stored Details of the torrent with hash and the time it was fetched.
func (s *Store) Get(hash string) (*torrentdetails.Details, time.Time, error) {
	var d *torrentdetails.Details
	var fetchedAt time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket).Bucket([]byte(hash))
		if b == nil {
			return ErrNotFound
		}
		value := b.Get(Keys.Details)
		if value == nil {
			return fmt.Errorf("key not found: %q", string(Keys.Details))
		}
		var err error
		// Value is only valid during the transaction. ReadParcel copies everything it reads.
		d, err = torrentdetails.UnmarshalBinary(value)
		if err != nil {
			return err
		}
		value = b.Get(Keys.FetchedAt)
		if value != nil {
			fetchedAt, err = time.Parse(time.RFC3339, string(value))
		}
		return err
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return d, fetchedAt, nil
}

// Delete removes the stored Details of the torrent with hash. Deleting a missing torrent is not an error.
func (s *Store) Delete(hash string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.Bucket(s.bucket).DeleteBucket([]byte(hash))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

// List returns hashes of the torrents that have stored Details, in ascending order.
func (s *Store) List() ([]string, error) {
	var hashes []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, v []byte) error {
			if v == nil {
				hashes = append(hashes, string(k))
			}
			return nil
		})
	})
	return hashes, err
}
