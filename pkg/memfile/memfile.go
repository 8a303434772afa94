// Package memfile is an in-memory reader.Reader split into fixed-size stripes.
package memfile

import (
	"errors"
	"fmt"

	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/reader"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

var (
	ErrClosed   = errors.New("row reader is closed")
	ErrBadBatch = errors.New("batch was not created by this row reader")
)

// File holds every row of a table in one root batch.
type File struct {
	kind       kind.Kind
	root       *vector.StructBatch
	stripeRows int
}

var _ reader.Reader = (*File)(nil)

// New wraps root, whose shape must follow k. Fills never cross a multiple
// of stripeRows.
func New(k kind.Kind, root *vector.StructBatch, stripeRows int) (*File, error) {
	if k.Tag() != kind.Struct {
		return nil, fmt.Errorf("root kind must be a Struct, not %s", k)
	}
	if len(k.Fields()) != len(root.Fields) {
		return nil, fmt.Errorf("root kind has %d fields, batch has %d", len(k.Fields()), len(root.Fields))
	}
	if stripeRows <= 0 {
		return nil, fmt.Errorf("stripe size must be positive, got %d", stripeRows)
	}
	for i, f := range root.Fields {
		if f.NumElements() != root.NumElements() {
			return nil, fmt.Errorf("field %q has %d elements, root has %d", k.Fields()[i].Name, f.NumElements(), root.NumElements())
		}
	}
	return &File{kind: k, root: root, stripeRows: stripeRows}, nil
}

func (f *File) Kind() kind.Kind  { return f.kind }
func (f *File) RowCount() uint64 { return uint64(f.root.NumElements()) }

// Stripes returns the number of stripes.
func (f *File) Stripes() int {
	return (f.root.NumElements() + f.stripeRows - 1) / f.stripeRows
}

func (f *File) RowReader(opts reader.Options) (reader.RowReader, error) {
	fields, cols, err := opts.Select(f.kind)
	if err != nil {
		return nil, err
	}
	return &rowReader{file: f, selected: kind.StructOf(fields...), cols: cols}, nil
}

type rowReader struct {
	file     *File
	selected kind.Kind
	cols     []int
	size     int
	pos      uint64
	current  uint64
	closed   bool
}

func (r *rowReader) SelectedKind() kind.Kind { return r.selected }

// NewBatch sizes later fills: each one reads at most size rows.
func (r *rowReader) NewBatch(size int) vector.Batch {
	r.size = max(size, 1)
	return vector.New(r.selected, size)
}

func (r *rowReader) Fill(b vector.Batch) (bool, error) {
	if r.closed {
		return false, ErrClosed
	}
	dst, ok := b.(*vector.StructBatch)
	if !ok || len(dst.Fields) != len(r.cols) {
		return false, ErrBadBatch
	}
	vector.ResetTree(dst)
	total := r.file.RowCount()
	if r.pos >= total {
		return false, nil
	}
	stripe := uint64(r.file.stripeRows)
	end := min(r.pos+uint64(r.size), (r.pos/stripe+1)*stripe, total)
	from, to := int(r.pos), int(end)
	for i := from; i < to; i++ {
		dst.Append(r.file.root.Present(i))
	}
	for j, col := range r.cols {
		if err := vector.CopyRows(dst.Fields[j], r.file.root.Fields[col], from, to); err != nil {
			return false, fmt.Errorf("filling column %q: %w", r.selected.Fields()[j].Name, err)
		}
	}
	r.current, r.pos = r.pos, end
	return true, nil
}

func (r *rowReader) SeekToRow(row uint64) error {
	if r.closed {
		return ErrClosed
	}
	if row > r.file.RowCount() {
		return fmt.Errorf("seek to row %d past the end (%d rows)", row, r.file.RowCount())
	}
	r.pos, r.current = row, row
	return nil
}

func (r *rowReader) CurrentRowNumber() uint64 { return r.current }

func (r *rowReader) Close() error {
	r.closed = true
	return nil
}
