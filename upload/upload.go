// Package upload stores profile images on local disk.
package upload

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// FieldName is the multipart field carrying the image.
	FieldName = "profile_image"
	// URLPrefix is where the upload directory is served.
	URLPrefix = "/uploads/"
	// DefaultMaxBytes caps a single image at 5 MiB.
	DefaultMaxBytes int64 = 5 << 20

	// multipart framing allowance on top of the file itself
	formOverhead int64 = 64 << 10
)

var (
	ErrNoFile      = errors.New("no file uploaded")
	ErrInvalidType = errors.New("only image files are allowed (jpeg, jpg, png, gif)")
	ErrTooLarge    = errors.New("file too large")
)

var (
	allowedExt  = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true}
	allowedMIME = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/gif":  true,
	}
)

// Uploader validates and writes image files into one directory.
type Uploader struct {
	dir      string
	maxBytes int64
	now      func() time.Time
	randInt  func() int
}

func New(dir string, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Uploader{
		dir:      dir,
		maxBytes: maxBytes,
		now:      time.Now,
		randInt:  func() int { return rand.IntN(1_000_000_000) },
	}
}

// Dir is the directory files are written to.
func (u *Uploader) Dir() string {
	return u.dir
}

// FormFile reads the image part from the request, refusing bodies that
// run past the size limit.
func (u *Uploader) FormFile(c *gin.Context) (*multipart.FileHeader, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, u.maxBytes+formOverhead)

	fh, err := c.FormFile(FieldName)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, ErrTooLarge
		}
		return nil, ErrNoFile
	}
	if err := u.Check(fh); err != nil {
		return nil, err
	}
	return fh, nil
}

// Check applies the size and type rules to an already parsed part.
func (u *Uploader) Check(fh *multipart.FileHeader) error {
	if fh.Size > u.maxBytes {
		return ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return ErrInvalidType
	}
	mt, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil || !allowedMIME[strings.ToLower(mt)] {
		return ErrInvalidType
	}
	return nil
}

// Name builds a fresh file name keeping the original extension.
func (u *Uploader) Name(original string) string {
	return fmt.Sprintf("profile-%d-%d%s", u.now().UnixMilli(), u.randInt(), filepath.Ext(original))
}

// Save writes fh under a generated name and returns its public reference,
// e.g. /uploads/profile-1700000000000-123456789.png.
func (u *Uploader) Save(fh *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := u.Name(fh.Filename)
	dst, err := os.OpenFile(filepath.Join(u.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	return URLPrefix + name, nil
}

// Remove deletes the file behind a reference returned by Save. Only the
// base name is used, so a reference cannot point outside the directory.
func (u *Uploader) Remove(ref string) error {
	name := filepath.Base(filepath.FromSlash(ref))
	if name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("bad file reference %q", ref)
	}
	return os.Remove(filepath.Join(u.dir, name))
}

// MaxBytes is the largest accepted file.
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}
