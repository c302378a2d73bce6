package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/coi-quote/constants"
)

// DefaultMaxBytes bounds a single certificate read into memory.
const DefaultMaxBytes = 32 << 20

// FSIngestor reads certificates from the local filesystem.
type FSIngestor struct {
	MaxBytes int64
	logger   *slog.Logger
}

func NewFSIngestor(logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{MaxBytes: DefaultMaxBytes, logger: logger}
}

// ReadDocument loads path, checks its extension and size, and hashes it.
func (i *FSIngestor) ReadDocument(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path error", "path", path, "error", err)
		return Document{}, err
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		i.logger.Warn("unsupported or missing extension", "path", abs, "ext", ext)
		return Document{}, fmt.Errorf("unsupported or missing extension %q", ext)
	}

	st, err := os.Stat(abs)
	if err != nil {
		return Document{}, err
	}
	if st.IsDir() {
		return Document{}, fmt.Errorf("%s is a directory", abs)
	}
	if i.MaxBytes > 0 && st.Size() > i.MaxBytes {
		return Document{}, fmt.Errorf("%s is %d bytes (limit %d)", abs, st.Size(), i.MaxBytes)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		i.logger.Error("read error", "path", abs, "error", err)
		return Document{}, err
	}

	return Document{
		Path:       abs,
		Name:       filepath.Base(abs),
		Ext:        ext,
		Format:     constants.MapExtToFormat(ext),
		HashHex:    HashBytes(data),
		Data:       data,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

// ScanDirectory walks root, skips hidden entries if requested, and returns
// every file with an allowed extension plus aggregate stats.
func (i *FSIngestor) ScanDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			stats.Scanned++
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++

		ext := constants.NormalizeExt(filepath.Ext(path))
		if !AllowedExt(ext) {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		results = append(results, IngestionResult{SourcePath: path, FileExt: ext})
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.logger.Info("directory scanned", "root", root, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	return results, stats, nil
}
