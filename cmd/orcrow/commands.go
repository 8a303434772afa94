package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/rawbytedev/orcrow/internal/common"
	"github.com/rawbytedev/orcrow/pkg/jsonrows"
	"github.com/rawbytedev/orcrow/pkg/parquetfile"
	"github.com/rawbytedev/orcrow/pkg/reader"
	"github.com/rawbytedev/orcrow/pkg/structured"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

func open(path string) (*parquetfile.Stream, *parquetfile.Reader, error) {
	s, err := parquetfile.Open(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := parquetfile.NewReader(s)
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, r, nil
}

func (e env) schema(path string) error {
	s, r, err := open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	fmt.Fprintln(e.stdout, r.Kind().TypeString())
	fmt.Fprintf(e.stdout, "rows: %s\n", humanize.Comma(int64(r.RowCount())))
	fmt.Fprintf(e.stdout, "stripes: %d\n", r.Stripes())
	fmt.Fprintf(e.stdout, "size: %s\n", humanize.Bytes(uint64(s.Size())))
	return nil
}

// batches feeds every batch of the configured columns to fn.
func (e env) batches(r reader.Reader, fn func(structured.Snapshot) error) error {
	rows, err := r.RowReader(reader.Options{IncludeNames: e.cfg.Columns})
	if err != nil {
		return err
	}
	sr := structured.NewRowReader(rows, e.cfg.BatchSize)
	defer sr.Close()
	for {
		snap, ok, err := sr.Next()
		if err != nil {
			return fmt.Errorf("reading batch: %w", err)
		}
		if !ok {
			return nil
		}
		n := snap.NumRows()
		e.metrics.BatchesRead.Inc()
		e.metrics.RowsDecoded.Add(float64(n))
		e.log.WithField("first_row", snap.FirstRow).WithField("rows", n).Debug("read batch")
		if err := fn(snap); err != nil {
			return err
		}
	}
}

func (e env) dump(path, output string) (err error) {
	s, r, err := open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	out := e.stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		out = f
	}
	w, err := jsonrows.NewWriter(out, jsonrows.Options{Pretty: e.cfg.Pretty, Compression: e.cfg.Compression})
	if err != nil {
		return err
	}
	err = e.batches(r, func(snap structured.Snapshot) error {
		_, err := w.WriteTree(snap.Tree())
		return err
	})
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	e.log.WithField("rows", w.Rows()).Info("dump finished")
	return err
}

type columnStat struct {
	name  string
	kind  string
	rows  int
	nulls int
}

func (e env) stat(path string) error {
	s, r, err := open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	var stats []columnStat
	err = e.batches(r, func(snap structured.Snapshot) error {
		root := snap.Tree().(structured.StructColumn)
		if stats == nil {
			for _, c := range root.Columns {
				stats = append(stats, columnStat{name: c.Name, kind: c.Column.Kind().TypeString()})
			}
		}
		for i, c := range root.Columns {
			n := c.Column.NumElements()
			stats[i].rows += n
			stats[i].nulls += n - common.CountNotNull(c.Column.(vector.Batch).NotNull(), 0, n)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return writeStats(e.stdout, stats)
}

func writeStats(w io.Writer, stats []columnStat) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tROWS\tNULLS")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.name, s.kind, humanize.Comma(int64(s.rows)), humanize.Comma(int64(s.nulls)))
	}
	return tw.Flush()
}
