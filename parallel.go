package orcrow

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rawbytedev/orcrow/pkg/reader"
)

// ParallelRowIterator is a row range of a file that can be split into
// disjoint parts and read concurrently. Each part opens its own row
// reader; only the reader.Reader is shared.
type ParallelRowIterator[T any] struct {
	reader    reader.Reader
	opts      reader.Options
	shape     Shape[T]
	batchSize int
	start     uint64
	end       uint64
	cfg       iteratorConfig
}

// NewParallelRowIterator covers every row of r. The kind check runs once
// here rather than per part.
func NewParallelRowIterator[T any](r reader.Reader, shape Shape[T], batchSize int, opts ...IteratorOption) (*ParallelRowIterator[T], error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	cfg := newConfig(opts)
	ropts := cfg.readerOptions(shape)
	rows, err := r.RowReader(ropts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if err := shape.CheckKind(rows.SelectedKind()); err != nil {
		return nil, err
	}
	return &ParallelRowIterator[T]{
		reader:    r,
		opts:      ropts,
		shape:     shape,
		batchSize: batchSize,
		end:       r.RowCount(),
		cfg:       cfg,
	}, nil
}

func (p *ParallelRowIterator[T]) Len() int { return int(p.end - p.start) }

// Range returns the absolute rows [start, end) the iterator covers.
func (p *ParallelRowIterator[T]) Range() (start, end uint64) { return p.start, p.end }

// SplitAt returns the first i rows and the rest. i is clamped to Len.
func (p *ParallelRowIterator[T]) SplitAt(i int) (*ParallelRowIterator[T], *ParallelRowIterator[T]) {
	mid := p.start + uint64(max(0, min(i, p.Len())))
	left, right := *p, *p
	left.end = mid
	right.start = mid
	return &left, &right
}

// Split cuts the range into at most parts contiguous pieces whose lengths
// differ by at most one. Empty pieces are dropped.
func (p *ParallelRowIterator[T]) Split(parts int) []*ParallelRowIterator[T] {
	parts = max(1, min(parts, p.Len()))
	out := make([]*ParallelRowIterator[T], 0, parts)
	rest := p
	for k := parts; k > 1; k-- {
		var left *ParallelRowIterator[T]
		left, rest = rest.SplitAt((rest.Len() + k - 1) / k)
		out = append(out, left)
	}
	if rest.Len() > 0 || len(out) == 0 {
		out = append(out, rest)
	}
	return out
}

// Iter opens a sequential iterator bounded to this range.
func (p *ParallelRowIterator[T]) Iter() (*RowIterator[T], error) {
	rows, err := p.reader.RowReader(p.opts)
	if err != nil {
		return nil, err
	}
	return newRowIterator(rows, p.shape, p.batchSize, p.start, p.end, p.cfg)
}

// ForEach reads every part concurrently and calls fn on each row. Calls
// from one part are sequential and in row order; different parts run in
// parallel. The first error cancels the others.
func (p *ParallelRowIterator[T]) ForEach(ctx context.Context, parts int, fn func(T) error) error {
	split := p.Split(parts)
	eg, subCtx := errgroup.WithContext(ctx)
	for n, part := range split {
		eg.Go(func() error {
			start, end := part.Range()
			p.cfg.log.WithField("part", n).WithField("start", start).WithField("end", end).Debug("reading part")
			return part.each(subCtx, fn)
		})
	}
	return eg.Wait()
}

// Collect reads every part concurrently and returns all rows in file order.
func (p *ParallelRowIterator[T]) Collect(ctx context.Context, parts int) ([]T, error) {
	split := p.Split(parts)
	results := make([][]T, len(split))
	eg, subCtx := errgroup.WithContext(ctx)
	for n, part := range split {
		eg.Go(func() error {
			out := make([]T, 0, part.Len())
			err := part.each(subCtx, func(v T) error {
				out = append(out, v)
				return nil
			})
			results[n] = out
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	all := make([]T, 0, p.Len())
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func (p *ParallelRowIterator[T]) each(ctx context.Context, fn func(T) error) error {
	it, err := p.Iter()
	if err != nil {
		return err
	}
	defer it.Close()
	for v := range it.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return it.Err()
}
