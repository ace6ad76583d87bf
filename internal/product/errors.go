package product

import "errors"

var (
	// ErrInputRequired indicates a scan input with neither a code nor an image
	// reference; the caller must supply a valid code
	ErrInputRequired = errors.New("code or image reference required")

	// ErrCatalogMiss indicates no reference entry exists for a code
	ErrCatalogMiss = errors.New("no catalog entry for code")

	// ErrItemNotFound indicates an inventory item does not exist
	ErrItemNotFound = errors.New("item not found")

	// ErrPersistence indicates saving an accepted result failed; the resolved
	// result is still valid and the save may be retried
	ErrPersistence = errors.New("saving item failed")
)
