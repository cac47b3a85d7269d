// Package filex contains filesystem helpers: data directory setup and
// loading media files for prompt extraction.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/soraprompter/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotMedia = errors.New("file is neither an image nor a video")
	ErrTooLarge = errors.New("file exceeds the upload size limit")
)

var videoExtensions = map[string]struct{}{
	"mp4": {}, "mov": {}, "avi": {}, "mkv": {}, "webm": {},
	"flv": {}, "wmv": {}, "ts": {}, "m4v": {},
}

// EnsureSubdDir creates dirName under the current working directory
// (or at dirName itself when it is absolute) and returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// LoadMedia reads an image or video file from path. The content type is
// sniffed from the file bytes; files larger than maxSize (when > 0) and
// files that are neither images nor videos are rejected.
func LoadMedia(path string, maxSize int64) (*models.Media, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxSize > 0 {
		r = io.LimitReader(f, maxSize+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%s: %w (%d bytes)", path, ErrTooLarge, maxSize)
	}

	name := filepath.Base(path)
	mtype := mimetype.Detect(data).String()
	if i := strings.IndexByte(mtype, ';'); i >= 0 {
		mtype = mtype[:i]
	}

	if !strings.HasPrefix(mtype, "image/") && !strings.HasPrefix(mtype, "video/") {
		if !hasVideoExtension(name) {
			return nil, fmt.Errorf("%s (%s): %w", path, mtype, ErrNotMedia)
		}
		mtype = "video/" + strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	}

	return &models.Media{Name: name, MIMEType: mtype, Data: data}, nil
}

// IsVideo reports whether the media is a video, either by content type or,
// failing that, by a known video file extension.
func IsVideo(m *models.Media) bool {
	if m == nil {
		return false
	}
	if strings.HasPrefix(m.MIMEType, "video/") {
		return true
	}
	return hasVideoExtension(m.Name)
}

func hasVideoExtension(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	_, ok := videoExtensions[ext]
	return ok
}
