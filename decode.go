package orcrow

import (
	"fmt"

	"github.com/rawbytedev/orcrow/pkg/reader"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

// Decode writes the rows of src into the first slots of dst and returns
// how many it wrote.
func Decode[T any](shape Shape[T], src vector.Batch, dst Target[T]) (int, error) {
	if err := shape.Decode(src, dst); err != nil {
		return 0, err
	}
	return src.NumElements(), nil
}

// FromBatch decodes src into a new slice of exactly its length.
func FromBatch[T any](shape Shape[T], src vector.Batch) ([]T, error) {
	out := make([]T, src.NumElements())
	if _, err := Decode(shape, src, Slice[T](out)); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadAll decodes every row of r, batchSize rows at a time.
func ReadAll[T any](r reader.Reader, shape Shape[T], batchSize int, opts ...IteratorOption) ([]T, error) {
	it, err := NewRowIterator(r, shape, batchSize, opts...)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	out := make([]T, 0, it.Len())
	for v := range it.All() {
		out = append(out, v)
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("reading %s rows: %w", shape.Name(), err)
	}
	return out, nil
}
