package journal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-essex/inter"
)

func block(n byte) *inter.Block {
	return &inter.Block{
		ID:        hash.BytesToHash([]byte{n}),
		ParentID:  hash.BytesToHash([]byte{n - 1}),
		Payload:   []string{"item"},
		Valid:     true,
		CreatedAt: inter.Timestamp(n),
	}
}

func readAll(t *testing.T, path string) ([]inter.Timestamp, []*inter.Block) {
	var (
		times  []inter.Timestamp
		blocks []*inter.Block
	)
	err := Read(path, func(at inter.Timestamp, b *inter.Block) error {
		times = append(times, at)
		blocks = append(blocks, b)
		return nil
	})
	require.NoError(t, err)
	return times, blocks
}

func TestJournal(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "sub", "blocks.rlp")

	w, err := Open(path)
	require.NoError(err)
	require.Equal(path, w.Path())
	for i := byte(1); i <= 3; i++ {
		require.NoError(w.Append(block(i), inter.Timestamp(100+int(i))))
	}
	require.NoError(w.Close())
	require.NoError(w.Close())
	require.ErrorIs(w.Append(block(4), 0), ErrClosed)

	times, blocks := readAll(t, path)
	require.Equal([]inter.Timestamp{101, 102, 103}, times)
	for i, b := range blocks {
		require.Equal(block(byte(i+1)), b)
	}

	// reopening appends after existing records
	w, err = Open(path)
	require.NoError(err)
	require.NoError(w.Append(block(4), 104))
	require.NoError(w.Close())

	_, blocks = readAll(t, path)
	require.Len(blocks, 4)
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		err := Read(filepath.Join(dir, "none"), nil)
		require.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("empty", func(t *testing.T) {
		path := filepath.Join(dir, "empty")
		require.NoError(t, os.WriteFile(path, nil, 0644))
		_, blocks := readAll(t, path)
		require.Empty(t, blocks)
	})

	t.Run("truncated", func(t *testing.T) {
		path := filepath.Join(dir, "truncated")
		w, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, w.Append(block(1), 1))
		require.NoError(t, w.Append(block(2), 2))
		require.NoError(t, w.Close())

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, raw[:len(raw)-3], 0644))

		var n int
		err = Read(path, func(inter.Timestamp, *inter.Block) error {
			n++
			return nil
		})
		require.ErrorIs(t, err, ErrCorrupt)
		require.Equal(t, 1, n)
	})

	t.Run("callback error", func(t *testing.T) {
		path := filepath.Join(dir, "cb")
		w, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, w.Append(block(1), 1))
		require.NoError(t, w.Close())

		stop := errors.New("stop")
		err = Read(path, func(inter.Timestamp, *inter.Block) error { return stop })
		require.Equal(t, stop, err)
	})
}
