// Package parquetfile reads flat Parquet files through the reader interfaces.
// Row groups play the part of stripes.
package parquetfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/reader"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

var (
	ErrUnsupportedColumn = errors.New("unsupported parquet column")
	ErrClosed            = errors.New("row reader is closed")
	ErrBadBatch          = errors.New("batch was not created by this row reader")
)

// Stream is an opened file on disk.
type Stream struct {
	f    *os.File
	size int64
}

func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &Stream{f: f, size: info.Size()}, nil
}

func (s *Stream) ReadAt(p []byte, off int64) (int, error) { return s.f.ReadAt(p, off) }
func (s *Stream) Size() int64                              { return s.size }
func (s *Stream) Close() error                             { return s.f.Close() }

// Reader is a Parquet file whose top-level columns are all leaves.
type Reader struct {
	file    *parquet.File
	kind    kind.Kind
	columns []column
	// starts[g] is the first row of row group g; the last entry is the row count.
	starts []uint64
}

var _ reader.Reader = (*Reader)(nil)

func NewReader(s *Stream) (*Reader, error) {
	return OpenReader(s, s.Size())
}

// OpenReader reads the footer of the size bytes behind r and maps its
// schema onto kinds.
func OpenReader(r io.ReaderAt, size int64) (*Reader, error) {
	f, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening parquet file: %w", err)
	}
	fields := f.Schema().Fields()
	columns := make([]column, len(fields))
	kinds := make([]kind.Field, len(fields))
	for i, field := range fields {
		c, err := columnOf(field)
		if err != nil {
			return nil, err
		}
		columns[i] = c
		kinds[i] = kind.Field{Name: field.Name(), Kind: c.kind}
	}
	starts := make([]uint64, 0, len(f.RowGroups())+1)
	var total uint64
	for _, g := range f.RowGroups() {
		starts = append(starts, total)
		total += uint64(g.NumRows())
	}
	starts = append(starts, total)
	return &Reader{file: f, kind: kind.StructOf(kinds...), columns: columns, starts: starts}, nil
}

func (r *Reader) Kind() kind.Kind  { return r.kind }
func (r *Reader) RowCount() uint64 { return r.starts[len(r.starts)-1] }

// Stripes returns the number of row groups.
func (r *Reader) Stripes() int { return len(r.starts) - 1 }

func (r *Reader) RowReader(opts reader.Options) (reader.RowReader, error) {
	fields, cols, err := opts.Select(r.kind)
	if err != nil {
		return nil, err
	}
	slot := make([]int, len(r.columns))
	for i := range slot {
		slot[i] = -1
	}
	for j, c := range cols {
		slot[c] = j
	}
	return &rowReader{file: r, selected: kind.StructOf(fields...), cols: cols, slot: slot, group: -1}, nil
}

// group returns the row group holding row.
func (r *Reader) group(row uint64) int {
	for g := 0; g < len(r.starts)-1; g++ {
		if row < r.starts[g+1] {
			return g
		}
	}
	return len(r.starts) - 1
}

type rowReader struct {
	file     *Reader
	selected kind.Kind
	cols     []int
	// slot maps a file column to its position in the selection, or -1.
	slot []int

	size    int
	buf     []parquet.Row
	group   int
	rows    parquet.Rows
	synced  bool
	pos     uint64
	current uint64
	closed  bool
}

func (r *rowReader) SelectedKind() kind.Kind { return r.selected }

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
	if r.pos >= r.file.RowCount() {
		return false, nil
	}
	if err := r.sync(); err != nil {
		return false, err
	}
	n := int(min(uint64(r.size), r.file.starts[r.group+1]-r.pos))
	if cap(r.buf) < n {
		r.buf = make([]parquet.Row, n)
	}
	buf := r.buf[:n]
	got := 0
	for got < n {
		k, err := r.rows.ReadRows(buf[got:])
		got += k
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("reading row group %d: %w", r.group, err)
		}
		if err != nil || k == 0 {
			break
		}
	}
	if got < n {
		return false, fmt.Errorf("row group %d ended after %d of %d rows", r.group, r.pos+uint64(got)-r.file.starts[r.group], r.file.starts[r.group+1]-r.file.starts[r.group])
	}
	for i, row := range buf {
		dst.Append(true)
		for _, v := range row {
			j := r.slot[v.Column()]
			if j < 0 {
				continue
			}
			if err := r.file.columns[r.cols[j]].append(dst.Fields[j], v); err != nil {
				return false, fmt.Errorf("column %q row %d: %w", r.selected.Fields()[j].Name, r.pos+uint64(i), err)
			}
		}
	}
	r.current = r.pos
	r.pos += uint64(n)
	return true, nil
}

// sync positions the row group reader at pos.
func (r *rowReader) sync() error {
	g := r.file.group(r.pos)
	if r.rows != nil && g != r.group {
		r.rows.Close()
		r.rows = nil
	}
	if r.rows == nil {
		r.rows = r.file.file.RowGroups()[g].Rows()
		r.group, r.synced = g, false
	}
	if !r.synced {
		if err := r.rows.SeekToRow(int64(r.pos - r.file.starts[g])); err != nil {
			return fmt.Errorf("seeking row group %d: %w", g, err)
		}
		r.synced = true
	}
	return nil
}

func (r *rowReader) SeekToRow(row uint64) error {
	if r.closed {
		return ErrClosed
	}
	if row > r.file.RowCount() {
		return fmt.Errorf("seek to row %d past the end (%d rows)", row, r.file.RowCount())
	}
	r.pos, r.current = row, row
	r.synced = false
	return nil
}

func (r *rowReader) CurrentRowNumber() uint64 { return r.current }

func (r *rowReader) Close() error {
	r.closed = true
	if r.rows != nil {
		return r.rows.Close()
	}
	return nil
}
