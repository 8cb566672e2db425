package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// fileStore implements Store on the local file system. It is the fallback
// when S3 is disabled; files land in a directory served under /static.
type fileStore struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewFileStore creates a local media store rooted at dir. Uploaded files
// are reachable under baseURL (e.g. "/static").
func NewFileStore(dir, baseURL string, logger zerolog.Logger) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}

	logger = logger.With().Str("component", "file-media-store").Logger()
	logger.Info().Str("dir", dir).Msg("local media store initialised")

	return &fileStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Upload writes the file and returns the URL path it is served from.
func (s *fileStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	// Keys are generated server-side; reject anything that escapes dir.
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid media key: %s", key)
	}

	path := filepath.Join(s.dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media subdirectory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to create media file")
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write media file")
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	url := s.baseURL + "/" + filepath.ToSlash(clean)

	s.logger.Debug().Str("key", key).Str("url", url).Msg("file stored")

	return url, nil
}
