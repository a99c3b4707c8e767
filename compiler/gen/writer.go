package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/tools/imports"
)

// Writer persists rendered artifacts. Paths are slash-separated and relative
// to the writer's root.
type Writer interface {
	Write(ctx context.Context, path string, content []byte) error
}

// FileWriter writes artifacts below a root directory. Go sources go through
// goimports first.
type FileWriter struct {
	root   string
	format bool

	mu    sync.Mutex
	stats WriterMetrics
}

// WriterMetrics accumulates what a FileWriter has written.
type WriterMetrics struct {
	FilesWritten int
	TotalBytes   int64
	Formatting   time.Duration
	Writing      time.Duration
}

// NewFileWriter returns a writer rooted at root. Go files are formatted
// unless format is false.
func NewFileWriter(root string, format bool) *FileWriter {
	return &FileWriter{root: root, format: format}
}

// Metrics returns the totals so far.
func (w *FileWriter) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Write formats content when it is a Go file and writes it, creating parent
// directories as needed.
func (w *FileWriter) Write(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := filepath.Join(w.root, filepath.FromSlash(path))

	start := time.Now()
	content, err := w.gofmt(path, dst, content)
	if err != nil {
		return err
	}
	formatting := time.Since(start)

	start = time.Now()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(dst, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.FilesWritten++
	w.stats.TotalBytes += int64(len(content))
	w.stats.Formatting += formatting
	w.stats.Writing += time.Since(start)
	return nil
}

// gofmt runs goimports over Go sources. On failure the raw source is left
// next to dst with an .error suffix.
func (w *FileWriter) gofmt(path, dst string, src []byte) ([]byte, error) {
	if !w.format || !strings.HasSuffix(path, ".go") {
		return src, nil
	}
	out, err := imports.Process(dst, src, &imports.Options{Comments: true, TabIndent: true, TabWidth: 8, FormatOnly: true})
	if err == nil {
		return out, nil
	}
	raw := dst + ".error"
	if mkErr := os.MkdirAll(filepath.Dir(raw), 0o755); mkErr == nil {
		_ = os.WriteFile(raw, src, 0o644)
	}
	return nil, fmt.Errorf("format %s: %w (unformatted written to %s)", path, err, raw)
}

// DryRunWriter logs the artifacts it would write.
type DryRunWriter struct {
	Logger Logger
}

// Write logs the path and size of the artifact.
func (w DryRunWriter) Write(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := w.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	logger.Info("dry run", "path", path, "bytes", len(content))
	return nil
}
