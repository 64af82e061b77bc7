// Package tracelog writes and reads zstd compressed JSON-lines files: one JSON value per line.
//
// It's used to record the statistics of a simulation, tick by tick, for offline analysis.
package tracelog

import (
	"bufio"
	"encoding/json"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Extension conventionally used by the trace files.
const Extension = ".jsonl.zst"

// Writer of a trace file. It is safe for concurrent use.
type Writer struct {
	path string

	mu      sync.Mutex
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	entries int
}

// Create a trace file at path, creating its directory if needed. An existing file is truncated.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create directory for trace %q", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create trace %q", path)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "failed to create zstd encoder for trace %q", path)
	}
	return &Writer{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

// Path of the trace file.
func (w *Writer) Path() string { return w.path }

// Write v encoded as one line of JSON.
func (w *Writer) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode trace entry #%d", w.Len())
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return errors.Errorf("trace %q already closed", w.path)
	}
	if _, err = w.w.Write(b); err == nil {
		err = w.w.WriteByte('\n')
	}
	if err != nil {
		return errors.Wrapf(err, "failed to write to trace %q", w.path)
	}
	w.entries++
	return nil
}

// Len returns the number of entries written so far.
func (w *Writer) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entries
}

// Close flushes the pending entries and closes the file. It can be called more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	err := w.w.Flush()
	if encErr := w.enc.Close(); err == nil {
		err = encErr
	}
	if fErr := w.f.Close(); err == nil {
		err = fErr
	}
	w.w, w.enc, w.f = nil, nil, nil
	if err != nil {
		return errors.Wrapf(err, "failed to close trace %q", w.path)
	}
	return nil
}

// Read the trace file at path, calling fn with each entry decoded as T, in order.
// It stops at the first error returned by fn.
func Read[T any](path string, fn func(entry T) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open trace %q", path)
	}
	defer func() { _ = f.Close() }()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "failed to create zstd decoder for trace %q", path)
	}
	defer dec.Close()

	jsonDec := json.NewDecoder(dec)
	for idx := 0; ; idx++ {
		var entry T
		err = jsonDec.Decode(&entry)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "failed to decode entry #%d of trace %q", idx, path)
		}
		if err = fn(entry); err != nil {
			return err
		}
	}
}
