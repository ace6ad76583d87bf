package product

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IDGenerator generates unique IDs for inventory items
type IDGenerator interface {
	Generate() string
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// ItemStore is the persistence gateway the scan coordinator saves accepted
// results through
type ItemStore interface {
	AddItem(item NewItem) (*Item, error)
}

// Inventory handles saved-item operations
type Inventory struct {
	db          DB
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewInventory creates a new Inventory with default ID generator and time source
func NewInventory(db DB) *Inventory {
	return &Inventory{
		db:          db,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewInventoryWithDeps creates a new Inventory with custom dependencies for testing
func NewInventoryWithDeps(db DB, idGen IDGenerator, timeSrc TimeSource) *Inventory {
	return &Inventory{
		db:          db,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// AddItem saves a new item to the inventory
func (i *Inventory) AddItem(item NewItem) (*Item, error) {
	if strings.TrimSpace(item.ProductName) == "" {
		return nil, fmt.Errorf("product name is required")
	}

	category := strings.TrimSpace(item.Category)
	if category == "" {
		category = defaultCategory
	}

	now := i.timeSource.Now()
	stored := &Item{
		ID:          i.idGenerator.Generate(),
		Barcode:     strings.TrimSpace(item.Barcode),
		ProductName: strings.TrimSpace(item.ProductName),
		Category:    category,
		ExpiryDate:  strings.TrimSpace(item.ExpiryDate),
		Confidence:  item.Confidence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := i.db.SaveItem(stored); err != nil {
		return nil, fmt.Errorf("saving item: %w", err)
	}
	return stored, nil
}

// GetItem retrieves an item by ID
func (i *Inventory) GetItem(id string) (*Item, error) {
	item, err := i.db.GetItem(id)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items, newest first
func (i *Inventory) ListItems() ([]*Item, error) {
	items, err := i.db.ListItems()
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// SearchItems returns items matching a product name or barcode query
func (i *Inventory) SearchItems(query string) ([]*Item, error) {
	items, err := i.db.SearchItems(query)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	return items, nil
}

// DeleteItem removes an item
func (i *Inventory) DeleteItem(id string) error {
	if err := i.db.DeleteItem(id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}
