// Package source fetches API descriptions from local files, HTTP(S) URLs
// and GitHub repositories.
package source

import (
	"fmt"
	"io"
	"os"
)

// MaxSize bounds the size of a fetched description.
const MaxSize = 10 << 20

// ReadFile reads a description from disk. A path of "-" reads stdin.
func ReadFile(path string) (string, error) {
	if path == "-" {
		return readAll(os.Stdin, "stdin", MaxSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot access %s: %w", path, err)
	}
	defer f.Close()
	return readAll(f, path, MaxSize)
}

// readAll reads r up to limit bytes. Longer input is an error.
func readAll(r io.Reader, name string, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("reading %s: larger than %d bytes", name, limit)
	}
	return string(data), nil
}
