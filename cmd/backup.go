package cmd

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/studydeck/internal/infrastructure/config"
	"github.com/eslsoft/studydeck/internal/usecase/backup"
)

const stdioPath = "-"

func newBackupService(cfg *config.Config, batchSize int) (*backup.Service, error) {
	driver, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, fmt.Errorf("resolve database driver: %w", err)
	}
	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return nil, fmt.Errorf("resolve database dsn: %w", err)
	}
	service, err := backup.NewService(driver, dsn, backup.WithBatchSize(batchSize))
	if err != nil {
		return nil, fmt.Errorf("create backup service: %w", err)
	}
	return service, nil
}

// wantsGzip reports whether path should be compressed, either by flag or by a
// .gz suffix.
func wantsGzip(path string, flag bool) bool {
	return flag || (path != stdioPath && strings.HasSuffix(strings.ToLower(path), ".gz"))
}

func backupFilename(now time.Time, gz bool) string {
	name := fmt.Sprintf("studydeck-backup-%s.jsonl", now.UTC().Format("20060102-150405"))
	if gz {
		name += ".gz"
	}
	return name
}

// closers runs in order and keeps the first error.
type closers []func() error

func (c closers) close() error {
	var first error
	for _, fn := range c {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// createBackupSink opens path for writing, or stdout for "-". The returned
// closers flush the gzip stream before the file is closed.
func createBackupSink(cmd *cobra.Command, path string, gz bool) (io.Writer, closers, error) {
	var (
		w   = cmd.OutOrStdout()
		cls closers
	)
	if path != stdioPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create output directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("create backup file: %w", err)
		}
		w = f
		cls = append(cls, f.Close)
	}
	if gz {
		zw := gzip.NewWriter(w)
		w = zw
		cls = append(closers{zw.Close}, cls...)
	}
	return w, cls, nil
}

// openBackupSource opens path for reading, or stdin for "-".
func openBackupSource(cmd *cobra.Command, path string, gz bool) (io.Reader, closers, error) {
	if path == "" {
		return nil, nil, errors.New("--input is required, use - for stdin")
	}
	var (
		r   = cmd.InOrStdin()
		cls closers
	)
	if path != stdioPath {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, nil, fmt.Errorf("open backup file: %w", err)
		}
		r = f
		cls = append(cls, f.Close)
	}
	if gz {
		zr, err := gzip.NewReader(r)
		if err != nil {
			_ = cls.close()
			return nil, nil, fmt.Errorf("open gzip reader: %w", err)
		}
		r = zr
		cls = append(closers{zr.Close}, cls...)
	}
	return r, cls, nil
}

func describePath(path, stdio string) string {
	if path == stdioPath {
		return stdio
	}
	return path
}
