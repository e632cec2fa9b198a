package media

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"

	"fieldtour/internal/bootstrap/logging"
	"fieldtour/internal/errs"
	"fieldtour/internal/ports"
)

var dataURIPrefix = regexp.MustCompile(`^data:[a-zA-Z0-9+/.-]+;base64,`)

// Store writes visit media to a dedicated directory when the embedded
// base64 representation is deliberately bypassed for storage-size reasons,
// and reclaims the files once their rows are retired.
type Store struct {
	dir string
}

var _ ports.MediaStore = (*Store)(nil)

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) WriteFile(ctx context.Context, base64Payload string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", errs.Wrap(err, "check context")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errs.Wrapf(err, "create media directory %q", s.dir)
	}

	raw := dataURIPrefix.ReplaceAllString(base64Payload, "")
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", errs.Wrap(err, "decode media payload")
	}

	path := filepath.Join(s.dir, "image_"+uuid.NewString()+".jpg")
	if err := os.WriteFile(path, decoded, 0o644); err != nil {
		return "", errs.Wrapf(err, "write media file %q", path)
	}

	logging.Info(logging.WithAttrs(ctx, slog.String("component", "media.store")),
		"media file written", slog.String("path", path), slog.Int("bytes", len(decoded)))
	return path, nil
}

// DeleteFiles is best-effort: a missing file is success, any other failure
// is logged and skipped so the caller's broader cleanup keeps going.
func (s *Store) DeleteFiles(ctx context.Context, paths []string) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "media.store"))
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			logging.Warn(logCtx, "media file delete failed",
				slog.String("path", path),
				slog.Any("err", errs.Loggable(err)))
			continue
		}
		logging.Info(logCtx, "media file deleted", slog.String("path", path))
	}
}
