package product

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const (
	catalogBucketName   = "products"
	inventoryBucketName = "inventory"
)

// Catalog defines the read-only reference table the fallback tier queries
type Catalog interface {
	// Find returns the entry exactly matching a code, or ErrCatalogMiss
	Find(code string) (*CatalogEntry, error)
}

// DB defines the interface for inventory database operations
type DB interface {
	// SaveItem saves an item to the database
	SaveItem(item *Item) error

	// GetItem retrieves an item by ID
	GetItem(id string) (*Item, error)

	// ListItems returns all items, newest first
	ListItems() ([]*Item, error)

	// SearchItems returns items whose product name or barcode contains the
	// query, newest first
	SearchItems(query string) ([]*Item, error)

	// DeleteItem removes an item from the database
	DeleteItem(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB and Catalog interfaces using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	// Create buckets if they don't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(catalogBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(inventoryBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// Find returns the catalog entry exactly matching a code
func (b *BoltDB) Find(code string) (*CatalogEntry, error) {
	var entry *CatalogEntry
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(catalogBucketName))
		data := bucket.Get([]byte(code))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrCatalogMiss, code)
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// PutEntry writes a catalog entry, replacing any existing entry for the code
func (b *BoltDB) PutEntry(entry *CatalogEntry) error {
	if strings.TrimSpace(entry.Code) == "" {
		return fmt.Errorf("catalog entry code is required")
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(catalogBucketName))
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling catalog entry: %w", err)
		}
		return bucket.Put([]byte(entry.Code), data)
	})
}

// ImportCatalog loads reference entries from a JSON file into the catalog
// bucket, returning how many entries were written
func (b *BoltDB) ImportCatalog(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading catalog file: %w", err)
	}

	var entries []*CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("unmarshaling catalog file: %w", err)
	}

	for i, entry := range entries {
		if err := b.PutEntry(entry); err != nil {
			return i, fmt.Errorf("importing entry %q: %w", entry.Code, err)
		}
	}
	return len(entries), nil
}

// SaveItem saves an item to the database
func (b *BoltDB) SaveItem(item *Item) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(inventoryBucketName))
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshaling item: %w", err)
		}
		return bucket.Put([]byte(item.ID), data)
	})
}

// GetItem retrieves an item by ID
func (b *BoltDB) GetItem(id string) (*Item, error) {
	var item *Item
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(inventoryBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		return json.Unmarshal(data, &item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns all items, newest first
func (b *BoltDB) ListItems() ([]*Item, error) {
	items := make([]*Item, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(inventoryBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshaling item: %w", err)
			}
			items = append(items, &item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortItemsNewestFirst(items)
	return items, nil
}

// SearchItems returns items whose product name or barcode contains the query
func (b *BoltDB) SearchItems(query string) ([]*Item, error) {
	items, err := b.ListItems()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items, nil
	}

	matches := make([]*Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.ProductName), query) ||
			strings.Contains(strings.ToLower(item.Barcode), query) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

// DeleteItem removes an item from the database
func (b *BoltDB) DeleteItem(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(inventoryBucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}

func sortItemsNewestFirst(items []*Item) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
