// Package catalog imports product catalogue files into the product store.
//
// A catalogue file holds one JSON encoded product per line and may be gzip
// compressed. Files are read from the local file system or from S3.
package catalog

import (
	"context"

	"storefront/internal/model"
)

// ProductSet is a catalogue keyed by product id.
type ProductSet interface {
	// Contains reports whether a product with id is in the set.
	Contains(id string) bool

	// Products returns the products in first-seen order.
	Products() []model.Product

	// Size returns the number of distinct products.
	Size() int
}

// Loader reads a catalogue file.
type Loader interface {
	Load(ctx context.Context, path string) (ProductSet, error)
}
