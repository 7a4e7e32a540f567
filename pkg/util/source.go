package util

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/edsrzf/mmap-go"
)

// MaxSourceBytes bounds the size of a source file the loader accepts.
// Bundled or generated files above it are not hand-written components.
const MaxSourceBytes = 8 << 20

// ErrSourceTooLarge is returned for files above MaxSourceBytes.
var ErrSourceTooLarge = fmt.Errorf("source file exceeds %d bytes", MaxSourceBytes)

// LoadSource reads a source file through a read-only memory map and returns
// an owned copy of its contents, so the file can be rewritten in place while
// the bytes are still in use. When mapping fails it falls back to
// os.ReadFile.
func LoadSource(path string, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %q: %w", path, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}
	if stat.Size() > MaxSourceBytes {
		return nil, fmt.Errorf("%q: %w", path, ErrSourceTooLarge)
	}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		return []byte{}, nil
	}

	mapped, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		logger.Warn("mmap failed, using fallback",
			"file", path,
			"size", stat.Size(),
			"error", err)

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				path, err, readErr)
		}
		return data, nil
	}

	data := make([]byte, len(mapped))
	copy(data, mapped)
	if err := mapped.Unmap(); err != nil {
		logger.Warn("failed to unmap source file", "file", path, "error", err)
	}
	return data, nil
}
