package structured

import (
	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/reader"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

// RowReader yields each batch of a reader.RowReader as a ColumnTree of its
// selected kind. It owns one batch and refills it on every call to Next.
type RowReader struct {
	rows  reader.RowReader
	kind  kind.Kind
	batch vector.Batch
	gen   uint64
}

func NewRowReader(rows reader.RowReader, batchSize int) *RowReader {
	return &RowReader{rows: rows, kind: rows.SelectedKind(), batch: rows.NewBatch(batchSize)}
}

// Snapshot is one filled batch. Its tree is only usable until the next
// call to Next on the RowReader that produced it.
type Snapshot struct {
	owner *RowReader
	gen   uint64
	tree  ColumnTree
	// FirstRow is the absolute row number of the first row in the batch.
	FirstRow uint64
}

// Tree returns the batch view, panicking when the batch was refilled since.
func (s Snapshot) Tree() ColumnTree {
	if s.owner == nil || s.owner.gen != s.gen {
		panic("structured: snapshot used after its batch was refilled")
	}
	return s.tree
}

func (s Snapshot) NumRows() int { return s.Tree().NumElements() }

// Next fills the next batch. It returns false once the reader is exhausted.
func (r *RowReader) Next() (Snapshot, bool, error) {
	r.gen++
	ok, err := r.rows.Fill(r.batch)
	if err != nil || !ok {
		return Snapshot{}, false, err
	}
	return Snapshot{
		owner:    r,
		gen:      r.gen,
		tree:     Build(r.batch, r.kind),
		FirstRow: r.rows.CurrentRowNumber(),
	}, true, nil
}

func (r *RowReader) Kind() kind.Kind { return r.kind }

func (r *RowReader) Close() error { return r.rows.Close() }
