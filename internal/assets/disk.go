// Package assets stores uploaded item images on local disk and serves them back.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// RoutePrefix is the URL path under which stored files are served.
const RoutePrefix = "/uploads/"

// sniffLen is how much of the upload is inspected to detect its type.
const sniffLen = 3072

// DiskStore keeps uploaded files in a single directory.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates dir if needed. baseURL prefixes the references
// returned by Store; empty yields host-relative references.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w: %w", apperr.ErrStorageUnavailable, err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory files are written to.
func (s *DiskStore) Dir() string { return s.dir }

// Store writes r under a fresh name and returns its public reference.
// Only image content is accepted.
func (s *DiskStore) Store(ctx context.Context, r io.Reader, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", apperr.NewValidationError("image", "file is empty")
	}

	mt := mimetype.Detect(head)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", apperr.NewValidationError("image", fmt.Sprintf("unsupported content type %s", mt.String()))
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate file name: %w", err)
	}
	name := id.String() + extension(originalName, mt)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w: %w", apperr.ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, io.MultiReader(bytes.NewReader(head), r)); err != nil {
		tmp.Close()
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", err
		}
		return "", fmt.Errorf("write upload: %w: %w", apperr.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w: %w", apperr.ErrStorageUnavailable, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("chmod upload: %w: %w", apperr.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("rename upload: %w: %w", apperr.ErrStorageUnavailable, err)
	}

	return s.baseURL + RoutePrefix + name, nil
}

// Reclaim removes the file behind ref. Missing files and references this
// store did not produce are ignored.
func (s *DiskStore) Reclaim(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, ok := s.nameFromRef(ref)
	if !ok {
		return nil
	}
	if name == "" || name != path.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return apperr.NewValidationError("imageRef", "invalid asset reference")
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove asset: %w: %w", apperr.ErrStorageUnavailable, err)
	}
	return nil
}

// Handler serves stored files under RoutePrefix without directory listings.
func (s *DiskStore) Handler() http.Handler {
	files := http.StripPrefix(RoutePrefix, http.FileServer(http.Dir(s.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, RoutePrefix)
		if name == "" || strings.HasSuffix(name, "/") || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

func (s *DiskStore) nameFromRef(ref string) (string, bool) {
	prefix := s.baseURL + RoutePrefix
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	return strings.TrimPrefix(ref, prefix), true
}

// extension keeps the client's extension only when it names the sniffed
// type, so the served Content-Type always matches the content.
func extension(originalName string, mt *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext != "" && len(ext) <= 8 && !strings.ContainsAny(ext, `/\ `) {
		if byExt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil && mt.Is(byExt) {
			return ext
		}
	}
	return mt.Extension()
}
