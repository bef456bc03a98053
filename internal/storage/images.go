// Package storage implements the object store for meal photos on the
// local filesystem.  Uploads are stored under a single directory and
// addressed by a public /images/... URL that the HTTP layer serves
// statically.  Deletion is best-effort by contract: a missing file is
// not an error worth surfacing.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// URLPrefix is the public path under which stored images are served.
const URLPrefix = "/images/"

// ImageStore persists image bytes and resolves them to public URLs.
type ImageStore struct {
	dir string
}

// NewImageStore creates the backing directory when missing and returns
// a store rooted there.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image dir: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

// Dir returns the backing directory, for static-file registration.
func (s *ImageStore) Dir() string { return s.dir }

// Save writes the image bytes under a random name and returns the
// publicly resolvable URL.
func (s *ImageStore) Save(data []byte, ext string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	name := hex.EncodeToString(buf) + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return URLPrefix + name, nil
}

// Remove deletes the file behind a URL previously returned by Save.
// URLs outside the store's namespace are rejected; a file that is
// already gone counts as removed.
func (s *ImageStore) Remove(url string) error {
	if !strings.HasPrefix(url, URLPrefix) {
		return errors.New("not a stored image url: " + url)
	}
	name := path.Base(strings.TrimPrefix(url, URLPrefix))
	if name == "" || name == "." || name == "/" {
		return errors.New("not a stored image url: " + url)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing image: %w", err)
	}
	return nil
}
