package catalog

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"storefront/internal/model"
)

var gzipMagic = []byte{0x1f, 0x8b}

// decompress returns a reader over the plain content of r, unwrapping gzip
// when the stream starts with the gzip magic bytes.
func decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if bytes.Equal(head, gzipMagic) {
		return gzip.NewReader(br)
	}
	return io.NopCloser(br), nil
}

// decodeProducts parses one JSON product per line. Blank lines are skipped.
func decodeProducts(ctx context.Context, r io.Reader) (*productSet, error) {
	plain, err := decompress(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue stream: %w", err)
	}
	defer plain.Close()

	set := newProductSet(1024)

	scanner := bufio.NewScanner(plain)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var product model.Product
		if err := json.Unmarshal([]byte(line), &product); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if product.Images == nil {
			product.Images = []string{}
		}
		if err := checkProduct(product.ID, product.Name, product.Price); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		set.Add(product)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

func checkProduct(id, name string, price float64) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("product id is required")
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("product %s: name is required", id)
	case math.IsNaN(price) || math.IsInf(price, 0) || price < 0:
		return fmt.Errorf("product %s: price must be a non-negative number", id)
	}
	return nil
}
