package persist

import (
	"bytes"
	"time"

	bolt "github.com/rivine/bbolt"
)

var (
	metadataBucketName = []byte("Metadata")
	headerKey          = []byte("Header")
	versionKey         = []byte("Version")
)

// openTimeout bounds how long bolt.Open waits for the file lock. Without a
// timeout a crashed process still holding the lock would hang piclaimd
// indefinitely on startup.
const openTimeout = 3 * time.Second

// BoltDatabase pairs a bolt handle with the Metadata it was opened with, so
// every store layered on top (BoltWalletStore, BoltBalanceStore) can trust
// it's reading the database it thinks it is instead of silently decoding
// whatever bytes happen to be in the wrong file.
type BoltDatabase struct {
	Metadata
	*bolt.DB
}

// OpenDatabase opens (creating if absent) the bolt file at filename and
// reconciles it against md: a fresh file is stamped with md, an existing
// one is checked against it and rejected on mismatch.
func OpenDatabase(md Metadata, filename string) (*BoltDatabase, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, err
	}
	boltDB := &BoltDatabase{Metadata: md, DB: db}
	if err := boltDB.reconcileMetadata(); err != nil {
		db.Close()
		return nil, err
	}
	return boltDB, nil
}

// reconcileMetadata stamps db.Metadata into a freshly created database, or
// verifies it against what's already stored.
func (db *BoltDatabase) reconcileMetadata() error {
	return db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(metadataBucketName)
		if bucket == nil {
			return db.stampMetadata(tx)
		}
		if got := bucket.Get(headerKey); !bytes.Equal(got, []byte(db.Header)) {
			return ErrBadHeader
		}
		if got := bucket.Get(versionKey); !bytes.Equal(got, []byte(db.Version)) {
			return ErrBadVersion
		}
		return nil
	})
}

// stampMetadata writes db.Metadata into a newly created metadata bucket.
func (db *BoltDatabase) stampMetadata(tx *bolt.Tx) error {
	bucket, err := tx.CreateBucketIfNotExists(metadataBucketName)
	if err != nil {
		return err
	}
	if err := bucket.Put(headerKey, []byte(db.Header)); err != nil {
		return err
	}
	return bucket.Put(versionKey, []byte(db.Version))
}

// Close closes the underlying bolt database.
func (db *BoltDatabase) Close() error {
	return db.DB.Close()
}
