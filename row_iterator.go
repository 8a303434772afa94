package orcrow

import (
	"fmt"
	"iter"

	"github.com/sirupsen/logrus"

	"github.com/rawbytedev/orcrow/internal/common"
	"github.com/rawbytedev/orcrow/pkg/reader"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

type IteratorOption func(*iteratorConfig)

type iteratorConfig struct {
	readerOpts *reader.Options
	metrics    *Metrics
	log        *logrus.Entry
}

// WithReaderOptions replaces the default column selection, which is the
// shape's own columns when it is a record.
func WithReaderOptions(opts reader.Options) IteratorOption {
	return func(c *iteratorConfig) { c.readerOpts = &opts }
}

func WithMetrics(m *Metrics) IteratorOption {
	return func(c *iteratorConfig) { c.metrics = m }
}

func WithLogger(l *logrus.Entry) IteratorOption {
	return func(c *iteratorConfig) { c.log = l }
}

func newConfig(opts []IteratorOption) iteratorConfig {
	c := iteratorConfig{log: logrus.StandardLogger().WithField("component", "orcrow")}
	for _, o := range opts {
		o(&c)
	}
	return c
}

func (c iteratorConfig) readerOptions(shape any) reader.Options {
	if c.readerOpts != nil {
		return *c.readerOpts
	}
	if cols, ok := shape.(columnar); ok {
		return reader.Options{IncludeNames: cols.Columns()}
	}
	return reader.Options{}
}

// RowIterator decodes a file one batch at a time and walks it in either
// direction. It is not safe for concurrent use.
//
// The iterator is a cursor between rows: Next returns the row after the
// cursor and NextBack the row before it, so Next followed by NextBack
// returns the same row twice.
type RowIterator[T any] struct {
	rows      reader.RowReader
	shape     Shape[T]
	batch     vector.Batch
	batchSize int
	decoded   []T

	index        int
	decodedItems int
	// batchStart is the absolute row number of decoded[0].
	batchStart uint64
	start, end uint64

	err     error
	metrics *Metrics
	log     *logrus.Entry
}

// NewRowIterator opens a row reader on r and checks that its columns can
// be decoded by shape.
func NewRowIterator[T any](r reader.Reader, shape Shape[T], batchSize int, opts ...IteratorOption) (*RowIterator[T], error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	cfg := newConfig(opts)
	rows, err := r.RowReader(cfg.readerOptions(shape))
	if err != nil {
		return nil, err
	}
	if err := shape.CheckKind(rows.SelectedKind()); err != nil {
		rows.Close()
		return nil, err
	}
	return newRowIterator(rows, shape, batchSize, 0, r.RowCount(), cfg)
}

func newRowIterator[T any](rows reader.RowReader, shape Shape[T], batchSize int, start, end uint64, cfg iteratorConfig) (*RowIterator[T], error) {
	it := &RowIterator[T]{
		rows:       rows,
		shape:      shape,
		batch:      rows.NewBatch(batchSize),
		batchSize:  batchSize,
		decoded:    make([]T, batchSize),
		batchStart: start,
		start:      start,
		end:        end,
		metrics:    cfg.metrics,
		log:        cfg.log,
	}
	if start > 0 {
		if err := rows.SeekToRow(start); err != nil {
			rows.Close()
			return nil, err
		}
	}
	return it, nil
}

func (it *RowIterator[T]) position() uint64 { return it.batchStart + uint64(it.index) }

func (it *RowIterator[T]) fail(err error) {
	it.err = err
	it.metrics.decodeError(it.shape.Name())
	it.log.WithError(err).WithField("row", it.position()).Debug("row iteration stopped")
}

// fill decodes the next batch. It returns false at the end of the file or
// on error.
func (it *RowIterator[T]) fill() bool {
	if it.err != nil {
		return false
	}
	it.batchStart += uint64(it.decodedItems)
	it.index, it.decodedItems = 0, 0
	ok, err := it.rows.Fill(it.batch)
	if err != nil {
		it.fail(err)
		return false
	}
	if !ok {
		return false
	}
	it.batchStart = it.rows.CurrentRowNumber()
	if n := it.batch.NumElements(); n > len(it.decoded) {
		it.decoded = make([]T, n)
	}
	n, err := Decode(it.shape, it.batch, Slice[T](it.decoded))
	if err != nil {
		it.fail(err)
		return false
	}
	it.decodedItems = n
	it.metrics.filled(n)
	it.log.WithField("first_row", it.batchStart).WithField("rows", n).Debug("decoded batch")
	return true
}

// Next returns the next row, or false at the end or on error.
func (it *RowIterator[T]) Next() (T, bool) {
	var zero T
	if it.err != nil {
		return zero, false
	}
	for it.index == it.decodedItems {
		if it.position() >= it.end || !it.fill() {
			return zero, false
		}
	}
	if it.position() >= it.end {
		return zero, false
	}
	v := it.decoded[it.index]
	it.index++
	return v, true
}

// NextBack returns the row before the cursor. When the cursor is at the
// start of the decoded batch it seeks back and refills, continuing until
// the refilled batch reaches the cursor, since fills stop at stripes.
func (it *RowIterator[T]) NextBack() (T, bool) {
	var zero T
	if it.err != nil {
		return zero, false
	}
	pos := min(it.position(), it.end)
	if pos <= it.start {
		return zero, false
	}
	if it.index > 0 && it.position() <= it.end {
		it.index--
		return it.decoded[it.index], true
	}

	target := max(it.start, common.SubClamp(pos, uint64(it.batchSize)))
	it.log.WithField("row", pos).WithField("target", target).Debug("refilling backwards")
	if err := it.seek(target); err != nil {
		it.fail(err)
		return zero, false
	}
	for it.batchStart+uint64(it.decodedItems) < pos {
		if !it.fill() {
			if it.err == nil {
				it.fail(fmt.Errorf("row %d missing during backward refill", pos-1))
			}
			return zero, false
		}
	}
	it.index = int(pos-it.batchStart) - 1
	return it.decoded[it.index], true
}

// Seek moves the cursor before row, an absolute row number, and clears
// any previous error.
func (it *RowIterator[T]) Seek(row uint64) error {
	if row < it.start || row > it.end {
		return fmt.Errorf("row %d outside %d..%d", row, it.start, it.end)
	}
	it.err = nil
	if err := it.seek(row); err != nil {
		it.fail(err)
		return err
	}
	it.log.WithField("row", row).Debug("seek")
	return nil
}

func (it *RowIterator[T]) seek(row uint64) error {
	if err := it.rows.SeekToRow(row); err != nil {
		return err
	}
	it.metrics.seeked()
	it.batchStart = row
	it.index, it.decodedItems = 0, 0
	return nil
}

// Len returns how many rows Next would still return.
func (it *RowIterator[T]) Len() int {
	return int(common.SubClamp(it.end, it.position()))
}

func (it *RowIterator[T]) Err() error { return it.err }

// All ranges over the remaining rows. Check Err afterwards.
func (it *RowIterator[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Backward ranges over the rows before the cursor, last first.
func (it *RowIterator[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := it.NextBack()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

func (it *RowIterator[T]) Close() error { return it.rows.Close() }

func (m *Metrics) filled(rows int) {
	if m == nil {
		return
	}
	m.BatchesRead.Inc()
	m.RowsDecoded.Add(float64(rows))
}

func (m *Metrics) seeked() {
	if m != nil {
		m.Seeks.Inc()
	}
}

func (m *Metrics) decodeError(shape string) {
	if m != nil {
		m.DecodeErrors.WithLabelValues(shape).Inc()
	}
}
