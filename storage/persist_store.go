package storage

import (
	"errors"
	"fmt"

	"github.com/colorfulnotion/intcode/common"
	"github.com/syndtr/goleveldb/leveldb"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// PersistenceStore wraps LevelDB for raw key-value persistence.
// LevelDB handles its own synchronization.
type PersistenceStore struct {
	db *leveldb.DB
}

// NewPersistenceStore opens or creates a LevelDB database at the given path.
// If path is empty, uses in-memory storage.
func NewPersistenceStore(path string) (*PersistenceStore, error) {
	var db *leveldb.DB
	var err error

	if path == "" {
		db, err = leveldb.Open(leveldbstorage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	return &PersistenceStore{db: db}, nil
}

// NewMemoryPersistenceStore creates an in-memory PersistenceStore for testing.
func NewMemoryPersistenceStore() (*PersistenceStore, error) {
	return NewPersistenceStore("")
}

// Get retrieves a value by key. Returns (nil, false, nil) if not found.
func (ps *PersistenceStore) Get(key []byte) ([]byte, bool, error) {
	data, err := ps.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Get %x: %w", key, err)
	}
	return data, true, nil
}

func (ps *PersistenceStore) Put(key []byte, value []byte) error {
	return ps.db.Put(key, value, nil)
}

func (ps *PersistenceStore) Delete(key []byte) error {
	return ps.db.Delete(key, nil)
}

// Has reports whether key is present.
func (ps *PersistenceStore) Has(key []byte) (bool, error) {
	return ps.db.Has(key, nil)
}

// GetWithPrefix returns all key-value pairs with the given prefix in key
// order.
func (ps *PersistenceStore) GetWithPrefix(prefix []byte) ([][2][]byte, error) {
	iter := ps.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var results [][2][]byte
	for iter.Next() {
		// the iterator reuses its buffers
		keyCopy := append([]byte(nil), iter.Key()...)
		valueCopy := append([]byte(nil), iter.Value()...)
		results = append(results, [2][]byte{keyCopy, valueCopy})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("GetWithPrefix %x: %w", prefix, err)
	}
	return results, nil
}

// Batch groups writes that must land together.
type Batch struct {
	b leveldb.Batch
}

func (b *Batch) Put(key, value []byte) {
	b.b.Put(key, value)
}

func (b *Batch) Delete(key []byte) {
	b.b.Delete(key)
}

func (b *Batch) Len() int {
	return b.b.Len()
}

// Write applies the batch atomically.
func (ps *PersistenceStore) Write(b *Batch) error {
	return ps.db.Write(&b.b, nil)
}

// GetHash returns error if not found (unlike Get which returns found=false).
func (ps *PersistenceStore) GetHash(key common.Hash) ([]byte, error) {
	return ps.db.Get(key.Bytes(), nil)
}

func (ps *PersistenceStore) PutHash(key common.Hash, value []byte) error {
	return ps.db.Put(key.Bytes(), value, nil)
}

func (ps *PersistenceStore) Close() error {
	return ps.db.Close()
}
