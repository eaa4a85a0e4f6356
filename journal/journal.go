// Package journal appends accepted blocks to a file, one RLP record per
// block. The file is for inspection; the ledger is never rebuilt from it.
package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-essex/inter"
)

var (
	ErrClosed  = errors.New("journal closed")
	ErrCorrupt = errors.New("journal corrupt")
)

// Record is one journal entry: when the block was written and its wire form.
type Record struct {
	Time  uint64
	Block []byte
}

// Writer is the only handle a process holds on a journal file.
type Writer struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// Open opens path for appending, creating it and its directory if needed.
func Open(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("journal dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Writer{path: path, f: f}, nil
}

func (w *Writer) Path() string {
	return w.path
}

// Append writes b as a single record.
func (w *Writer) Append(b *inter.Block, at inter.Timestamp) error {
	rec, err := rlp.EncodeToBytes(&Record{Time: uint64(at), Block: inter.Serialize(b)})
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return ErrClosed
	}
	if _, err := w.f.Write(rec); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// Close flushes and releases the file. Further appends fail with ErrClosed.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Sync()
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	w.f = nil
	return err
}

// Read calls fn for every record in the journal at path, oldest first.
func Read(path string, fn func(at inter.Timestamp, b *inter.Block) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s := rlp.NewStream(bufio.NewReader(f), 0)
	for n := 0; ; n++ {
		var rec Record
		if err := s.Decode(&rec); err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrCorrupt, n, err)
		}
		b, err := inter.Deserialize(rec.Block)
		if err != nil {
			return fmt.Errorf("%w: record %d: %w", ErrCorrupt, n, err)
		}
		if err := fn(inter.Timestamp(rec.Time), b); err != nil {
			return err
		}
	}
}
