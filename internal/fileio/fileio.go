// Package fileio bridges the connection scheduler to disk: loading a file
// into a sender's stream buffer and writing a completed receiver stream
// out to its own file (Spec Section 4.6).
package fileio

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadFile reads the entire contents of path, to be handed to a stream's
// sender via Connection.AddData. No incremental streaming between disk and
// network is required.
func LoadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fileio: load %s: %w", path, err)
	}
	return data, nil
}

// WriteStream writes a completed stream's reassembled data to
// "<dir>/<stream_id>.gif". The extension is cosmetic; the file format is
// opaque to this package.
func WriteStream(dir string, streamID uint64, data []byte) error {
	path := filepath.Join(dir, fmt.Sprintf("%d.gif", streamID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("fileio: write stream %d: %w", streamID, err)
	}
	return nil
}
