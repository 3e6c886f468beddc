// Package artifact reads and writes the on-disk model cache: JSON manifests,
// JSONL row files and flat little-endian float32 vector files.
package artifact

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// ErrInvalid indicates an artifact exists but cannot be used.
var ErrInvalid = errors.New("invalid artifact")

// WriteManifest writes v as indented JSON to path.
func WriteManifest(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}
	return nil
}

// ReadManifest decodes the JSON manifest at path into v.
func ReadManifest(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read manifest %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: manifest JSON %s: %v", ErrInvalid, path, err)
	}
	return nil
}

// WriteJSONL writes one JSON document per row.
func WriteJSONL[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Base(path), err)
	}
	bw := bufio.NewWriter(f)
	for _, r := range rows {
		line, err := json.Marshal(r)
		if err != nil {
			_ = f.Close()
			return err
		}
		if _, err := bw.Write(line); err != nil {
			_ = f.Close()
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadJSONL reads one JSON document per non-empty line.
func ReadJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	var out []T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row T
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("%w: JSONL %s: %v", ErrInvalid, path, err)
		}
		out = append(out, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return out, nil
}

// WriteVectors writes a flat float32 slice in little-endian order.
func WriteVectors(path string, vectors []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create vectors file: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, vectors); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write vectors: %w", err)
	}
	return f.Close()
}

// ReadVectors reads exactly n*dim float32 values from path.
func ReadVectors(path string, n, dim int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open vector file %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat vector file %s: %w", path, err)
	}
	expected := int64(n) * int64(dim) * 4
	if st.Size() != expected {
		return nil, fmt.Errorf("%w: vector file size mismatch: got %d want %d (rows=%d dim=%d)", ErrInvalid, st.Size(), expected, n, dim)
	}

	out := make([]float32, n*dim)
	if err := binary.Read(io.LimitReader(f, expected), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("cannot read vectors from %s: %w", path, err)
	}
	return out, nil
}

// StageDir creates an empty sibling of dest to write a new artifact into
// before AtomicSwap installs it.
func StageDir(dest string) (string, error) {
	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", parent, err)
	}
	dir, err := os.MkdirTemp(parent, filepath.Base(dest)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("cannot create staging dir: %w", err)
	}
	return dir, nil
}

// AtomicSwap replaces destDir with srcDir by renaming.
func AtomicSwap(srcDir, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		// rollback best-effort
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}
