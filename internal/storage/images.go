package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnsupportedImage is returned for uploads whose extension is not allowed.
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrForeignURL is returned for URLs that do not point into the store.
	ErrForeignURL = errors.New("url is outside of the upload directory")
)

// ImageStore keeps uploaded images as files in one directory and hands out
// public URLs of the form <urlPrefix>/<name>.
type ImageStore struct {
	dir         string
	urlPrefix   string
	allowedExts []string
}

// NewImageStore creates dir if needed. An empty allowedExts accepts any file.
func NewImageStore(dir, urlPrefix string, allowedExts []string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &ImageStore{
		dir:         dir,
		urlPrefix:   strings.TrimSuffix(urlPrefix, "/"),
		allowedExts: allowedExts,
	}, nil
}

func (s *ImageStore) Dir() string {
	return s.dir
}

// Check reports ErrUnsupportedImage without writing anything.
func (s *ImageStore) Check(filename string) error {
	if len(s.allowedExts) == 0 {
		return nil
	}
	if !slices.Contains(s.allowedExts, strings.ToLower(filepath.Ext(filename))) {
		return fmt.Errorf("%w: %q", ErrUnsupportedImage, filename)
	}
	return nil
}

// Save copies an uploaded file under a random name that keeps the uploaded
// extension and returns its public URL.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	if err := s.Check(fh.Filename); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	return s.write(src, strings.ToLower(filepath.Ext(fh.Filename)))
}

func (s *ImageStore) write(src io.Reader, ext string) (string, error) {
	name := uuid.NewString() + ext
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return s.urlPrefix + "/" + name, nil
}

// Path maps a public URL back to the file it names.
func (s *ImageStore) Path(url string) (string, error) {
	rest, ok := strings.CutPrefix(url, s.urlPrefix+"/")
	if !ok || rest == "" || path.Base(rest) != rest || rest == "." || rest == ".." {
		return "", fmt.Errorf("%w: %q", ErrForeignURL, url)
	}
	return filepath.Join(s.dir, rest), nil
}

// Remove deletes the file behind url. A file that is already gone is not an error.
func (s *ImageStore) Remove(url string) error {
	p, err := s.Path(url)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", p, err)
	}
	return nil
}

// RemoveAll removes every url and joins the failures.
func (s *ImageStore) RemoveAll(urls []string) error {
	var errs []error
	for _, u := range urls {
		if err := s.Remove(u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
