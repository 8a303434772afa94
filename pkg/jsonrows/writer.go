package jsonrows

import (
	"bufio"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/rawbytedev/orcrow/pkg/structured"
)

const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

type Options struct {
	// Pretty indents every row over several lines.
	Pretty bool
	// Compression is CompressionNone, CompressionZstd or empty.
	Compression string
}

// Writer writes rows as JSON lines, optionally zstd compressed.
type Writer struct {
	buf    *bufio.Writer
	zw     *zstd.Encoder
	pretty bool
	rows   int
}

func NewWriter(w io.Writer, opts Options) (*Writer, error) {
	out := &Writer{pretty: opts.Pretty}
	switch opts.Compression {
	case "", CompressionNone:
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		out.zw = enc
		w = enc
	default:
		return nil, fmt.Errorf("unknown compression %q", opts.Compression)
	}
	out.buf = bufio.NewWriter(w)
	return out, nil
}

// WriteRow writes v and a newline.
func (w *Writer) WriteRow(v any) error {
	var line []byte
	var err error
	if w.pretty {
		line, err = json.MarshalIndent(v, "", "  ")
	} else {
		line, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encoding row %d: %w", w.rows, err)
	}
	if _, err := w.buf.Write(line); err != nil {
		return err
	}
	w.rows++
	return w.buf.WriteByte('\n')
}

// WriteTree writes every row of tree and returns how many it wrote.
func (w *Writer) WriteTree(tree structured.ColumnTree) (int, error) {
	values := Values(tree)
	for i, v := range values {
		if err := w.WriteRow(v); err != nil {
			return i, err
		}
	}
	return len(values), nil
}

// Rows returns the number of rows written so far.
func (w *Writer) Rows() int { return w.rows }

// Close flushes buffered rows and ends the zstd frame. It does not close
// the underlying writer.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if w.zw != nil {
		return w.zw.Close()
	}
	return nil
}
