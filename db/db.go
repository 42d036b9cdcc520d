package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"querygpt/models"
)

const schemaPrefix = "schema:"

// DB records the schema identifiers uploaded through this frontend.
type DB struct {
	badgerDB *badger.DB
}

func New(dbPath string) (*DB, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable badger logging for cleaner output
	return open(opts)
}

// NewInMemory opens a registry that lives only for the life of the process.
func NewInMemory() (*DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*DB, error) {
	badgerDB, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &DB{badgerDB: badgerDB}, nil
}

func (d *DB) Close() error {
	return d.badgerDB.Close()
}

// StoreSchema records a successful upload. Re-uploading an identifier
// replaces its record, as the backend replaces the collection.
func (d *DB) StoreSchema(rec models.SchemaRecord) error {
	if strings.TrimSpace(rec.Identifier) == "" {
		return errors.New("schema identifier is required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return d.badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(schemaPrefix+rec.Identifier), data)
	})
}

// GetSchema returns the record for identifier, or nil if none exists.
func (d *DB) GetSchema(identifier string) (*models.SchemaRecord, error) {
	var rec *models.SchemaRecord
	err := d.badgerDB.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(schemaPrefix + identifier))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec = &models.SchemaRecord{}
			return json.Unmarshal(val, rec)
		})
	})
	return rec, err
}

// ListSchemas returns all records, most recently uploaded first.
func (d *DB) ListSchemas() ([]models.SchemaRecord, error) {
	var records []models.SchemaRecord

	err := d.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(schemaPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec models.SchemaRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UploadedAt.After(records[j].UploadedAt)
	})
	return records, nil
}

// Identifiers returns the known schema identifiers, most recent first.
func (d *DB) Identifiers() ([]string, error) {
	records, err := d.ListSchemas()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Identifier
	}
	return names, nil
}
