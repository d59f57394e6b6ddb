package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// multipartBody builds a form with one file part under field.
func multipartBody(t *testing.T, field, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func formContext(t *testing.T, body *bytes.Buffer, contentType string) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/upload-profile-image", body)
	c.Request.Header.Set("Content-Type", contentType)
	return c
}

func TestFormFile_Accepts(t *testing.T) {
	u := New(t.TempDir(), DefaultMaxBytes)
	for _, tc := range []struct{ name, ct string }{
		{"me.png", "image/png"},
		{"me.JPG", "image/jpeg"},
		{"me.jpeg", "image/jpeg"},
		{"me.gif", "image/gif"},
	} {
		body, ct := multipartBody(t, FieldName, tc.name, tc.ct, []byte("img"))
		fh, err := u.FormFile(formContext(t, body, ct))
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.name, fh.Filename)
	}
}

func TestFormFile_RejectsType(t *testing.T) {
	u := New(t.TempDir(), DefaultMaxBytes)
	for _, tc := range []struct{ name, ct string }{
		{"notes.txt", "text/plain"},
		{"me.png", "text/plain"},
		{"me.txt", "image/png"},
		{"me.webp", "image/webp"},
		{"me", "image/png"},
	} {
		body, ct := multipartBody(t, FieldName, tc.name, tc.ct, []byte("data"))
		_, err := u.FormFile(formContext(t, body, ct))
		assert.ErrorIs(t, err, ErrInvalidType, tc.name)
	}
}

func TestFormFile_Missing(t *testing.T) {
	u := New(t.TempDir(), DefaultMaxBytes)

	body, ct := multipartBody(t, "avatar", "me.png", "image/png", []byte("img"))
	_, err := u.FormFile(formContext(t, body, ct))
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = u.FormFile(formContext(t, bytes.NewBufferString("nom=x"), "application/x-www-form-urlencoded"))
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestFormFile_TooLarge(t *testing.T) {
	u := New(t.TempDir(), 1024)

	// just over the limit: parsed, then refused on size
	body, ct := multipartBody(t, FieldName, "me.png", "image/png", bytes.Repeat([]byte("a"), 1025))
	_, err := u.FormFile(formContext(t, body, ct))
	assert.ErrorIs(t, err, ErrTooLarge)

	// far over the limit: the body reader trips first
	body, ct = multipartBody(t, FieldName, "me.png", "image/png", bytes.Repeat([]byte("a"), 256<<10))
	_, err = u.FormFile(formContext(t, body, ct))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSave_NameAndContent(t *testing.T) {
	dir := t.TempDir()
	u := New(filepath.Join(dir, "uploads"), DefaultMaxBytes)
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	u.randInt = func() int { return 42 }

	body, ct := multipartBody(t, FieldName, "me.png", "image/png", []byte("png-bytes"))
	fh, err := u.FormFile(formContext(t, body, ct))
	require.NoError(t, err)

	ref, err := u.Save(fh)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/profile-1700000000000-42.png", ref)

	got, err := os.ReadFile(filepath.Join(u.Dir(), "profile-1700000000000-42.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(got))

	// same name twice is refused rather than overwritten
	_, err = u.Save(fh)
	assert.Error(t, err)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	u := New(dir, DefaultMaxBytes)
	path := filepath.Join(dir, "profile-1-2.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.NoError(t, u.Remove("/uploads/profile-1-2.png"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, u.Remove("/uploads/profile-1-2.png"))

	// traversal collapses to a name inside dir
	outside := filepath.Join(filepath.Dir(dir), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	t.Cleanup(func() { _ = os.Remove(outside) })
	assert.Error(t, u.Remove("../keep.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
