// Package uploads stores profile images on local disk and hands back the
// stable public path they are served from. To the rest of the application
// this is an opaque byte sink: bytes in, reference path out.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jortega/userboard/internal/apperror"
)

// PublicPrefix is the URL prefix stored files are served under.
const PublicPrefix = "/uploads/"

// fieldName prefixes every stored filename, matching the form field the
// file arrived in. Combined with a millisecond timestamp it keeps
// concurrent uploads from colliding.
const fieldName = "profileImage"

// Store writes uploaded files into a single directory on local disk.
type Store struct {
	root    string
	maxSize int64
}

// NewStore creates a store rooted at the given directory, creating it if
// needed. maxSize caps individual file sizes in bytes.
func NewStore(root string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Store{root: root, maxSize: maxSize}, nil
}

// Save writes the uploaded file to disk under a collision-free name and
// returns its public reference path. The caller has already validated the
// declared media type; Save only enforces the size cap.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxSize {
		return "", apperror.NewBadRequest(
			fmt.Sprintf("image too large; maximum size is %d MB", s.maxSize/(1024*1024)))
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening uploaded file: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	filename := fmt.Sprintf("%s-%d%s", fieldName, time.Now().UnixMilli(), ext)

	dst, err := os.Create(filepath.Join(s.root, filename))
	if err != nil {
		return "", fmt.Errorf("creating stored file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("writing stored file: %w", err)
	}

	return PublicPrefix + filename, nil
}

// Root returns the directory stored files live in, for static serving.
func (s *Store) Root() string {
	return s.root
}
