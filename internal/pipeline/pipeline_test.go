package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayurwell/ayurcms/internal/blobstore"
	"github.com/ayurwell/ayurcms/internal/stage"
)

type fakeUploader struct {
	fail    bool
	calls   int
	lastDir string
	lastRaw []byte
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, originalName, folder string) (string, error) {
	f.calls++
	f.lastDir = folder
	f.lastRaw = data
	if f.fail {
		return "", &blobstore.UploadError{Key: originalName, Err: errors.New("remote unavailable")}
	}
	return fmt.Sprintf("https://cdn.example.com/images/%s/%d-%s", folder, f.calls, originalName), nil
}

func makeFileHeader(t *testing.T, filename, ctype string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	h.Set("Content-Type", ctype)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["image"][0]
}

func stageCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func newPipeline(t *testing.T, blob Uploader) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := stage.New(dir, stage.DefaultMaxSize, nil)
	require.NoError(t, err)
	return New(st, blob), dir
}

func TestRunReturnsReferenceAndCleansStage(t *testing.T) {
	blob := &fakeUploader{}
	p, dir := newPipeline(t, blob)

	data := []byte("png bytes")
	url, err := p.Run(context.Background(), makeFileHeader(t, "tulsi.png", "image/png", data), "products")
	require.NoError(t, err)

	assert.Contains(t, url, "products/")
	assert.Contains(t, url, "tulsi.png")
	assert.Equal(t, 1, blob.calls)
	assert.Equal(t, "products", blob.lastDir)
	assert.Equal(t, data, blob.lastRaw)
	// staged copy gone once a reference exists
	assert.Equal(t, 0, stageCount(t, dir))
}

func TestRunRejectsInvalidTypeBeforeUpload(t *testing.T) {
	blob := &fakeUploader{}
	p, dir := newPipeline(t, blob)

	_, err := p.Run(context.Background(), makeFileHeader(t, "notes.txt", "text/plain", []byte("x")), "products")

	var verr *stage.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, blob.calls)
	assert.Equal(t, 0, stageCount(t, dir))
}

func TestRunCleansStageOnUploadFailure(t *testing.T) {
	blob := &fakeUploader{fail: true}
	p, dir := newPipeline(t, blob)

	_, err := p.Run(context.Background(), makeFileHeader(t, "tulsi.png", "image/png", []byte("x")), "products")

	var uerr *blobstore.UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, 1, blob.calls)
	assert.Equal(t, 0, stageCount(t, dir))
}
