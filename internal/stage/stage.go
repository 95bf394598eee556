// Package stage holds incoming uploads on local disk between receipt
// and the hand-off to object storage. Files left behind by failed
// pipeline runs are reclaimed by a periodic sweep.
package stage

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ayurwell/ayurcms/pkg/common"
)

const (
	// DefaultMaxSize bounds a single upload to 5 MiB.
	DefaultMaxSize int64 = 5 * 1024 * 1024
	// DefaultMaxAge is how long a staged file may linger before the
	// sweep considers it leaked.
	DefaultMaxAge = time.Hour
)

// DefaultAllowedTypes is the image content-type allow-list.
var DefaultAllowedTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

// ValidationError reports a rejected upload: wrong content type or
// size over the limit. Handlers map it to a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StagedFile is the handle returned by Accept.
type StagedFile struct {
	Path         string
	OriginalName string
	Size         int64
}

// Stage writes accepted uploads into a single directory with
// collision-free names.
type Stage struct {
	dir     string
	maxSize int64
	allowed map[string]struct{}
}

func New(dir string, maxSize int64, allowedTypes []string) (*Stage, error) {
	if err := common.MakeDir(dir); err != nil {
		return nil, err
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedTypes
	}
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}
	return &Stage{dir: dir, maxSize: maxSize, allowed: allowed}, nil
}

func (s *Stage) Dir() string {
	return s.dir
}

// Accept validates the declared content type and size, then writes the
// file under a unique name. Nothing is persisted for a rejected file.
func (s *Stage) Accept(fh *multipart.FileHeader) (*StagedFile, error) {
	ctype := fh.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(ctype); err == nil {
		ctype = mt
	}
	if _, ok := s.allowed[strings.ToLower(ctype)]; !ok {
		return nil, &ValidationError{
			Message: "Invalid file type. Only JPEG, PNG, GIF, and WebP are allowed.",
		}
	}
	if fh.Size > s.maxSize {
		return nil, &ValidationError{
			Message: fmt.Sprintf("File too large. Maximum size is %d bytes.", s.maxSize),
		}
	}

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), common.UUID(), filepath.Ext(fh.Filename))
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	// The declared size is client-controlled; re-check while copying.
	written, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	if written > s.maxSize {
		_ = os.Remove(path)
		return nil, &ValidationError{
			Message: fmt.Sprintf("File too large. Maximum size is %d bytes.", s.maxSize),
		}
	}

	return &StagedFile{Path: path, OriginalName: fh.Filename, Size: written}, nil
}

// Remove deletes a staged file, best effort.
func (s *Stage) Remove(f *StagedFile) {
	if f == nil {
		return
	}
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("failed to remove staged file", zap.String("path", f.Path), zap.Error(err))
	}
}

// Sweep removes staged files older than maxAge and returns how many
// were removed. Files younger than maxAge are never touched so an
// in-flight upload cannot be raced.
func (s *Stage) Sweep(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		zap.L().Error("stage sweep failed to read dir", zap.String("dir", s.dir), zap.Error(err))
		return 0
	}
	removed := 0
	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			zap.L().Warn("stage sweep failed to remove file", zap.String("name", entry.Name()), zap.Error(err))
			continue
		}
		zap.L().Info("cleaned up stale staged file", zap.String("name", entry.Name()))
		removed++
	}
	return removed
}
