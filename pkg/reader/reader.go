// Package reader declares what the decoder needs from a stripe-columnar file.
package reader

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

var ErrUnknownColumn = errors.New("unknown column")

// Reader is an opened file.
type Reader interface {
	// Kind is the declared root kind, normally a Struct.
	Kind() kind.Kind
	RowCount() uint64
	RowReader(opts Options) (RowReader, error)
}

// RowReader fills batches of the selected columns. Batches never cross a
// stripe, so a fill may return fewer rows than the batch was sized for.
type RowReader interface {
	SelectedKind() kind.Kind
	NewBatch(size int) vector.Batch
	// Fill replaces the contents of b and reports false once no rows remain.
	Fill(b vector.Batch) (bool, error)
	SeekToRow(row uint64) error
	// CurrentRowNumber is the first row of the last filled batch, or the
	// last seek target when nothing was filled since.
	CurrentRowNumber() uint64
	Close() error
}

// Options selects columns. Nil IncludeNames selects every top-level column.
type Options struct {
	IncludeNames []string
}

// Select returns the top-level fields of root named by o in file order,
// along with their positions.
func (o Options) Select(root kind.Kind) ([]kind.Field, []int, error) {
	fields := root.Fields()
	if o.IncludeNames == nil {
		idx := make([]int, len(fields))
		for i := range idx {
			idx[i] = i
		}
		return fields, idx, nil
	}
	for _, name := range o.IncludeNames {
		if _, ok := root.Field(name); !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
	}
	var sel []kind.Field
	var idx []int
	for i, f := range fields {
		if slices.Contains(o.IncludeNames, f.Name) {
			sel = append(sel, f)
			idx = append(idx, i)
		}
	}
	return sel, idx, nil
}
