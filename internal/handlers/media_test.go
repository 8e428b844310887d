package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	mdlwr "reachmesh-bknd/internal/middleware"
	"reachmesh-bknd/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUploader struct {
	calls    int
	folder   string
	userID   string
	filename string
	body     []byte
	err      error
}

func (f *fakeUploader) UploadImage(_ context.Context, body io.Reader, size int64, folder, userID, filename string) (*storage.UploadResult, error) {
	f.calls++
	f.folder, f.userID, f.filename = folder, userID, filename
	if f.err != nil {
		return nil, f.err
	}
	f.body, _ = io.ReadAll(body)
	return &storage.UploadResult{Key: folder + "/" + userID + "/x.png", URL: "https://cdn.test/x.png", Bucket: "test", Size: size}, nil
}

// minimal PNG header, enough for content sniffing
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

func multipartBody(t *testing.T, folder, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if folder != "" {
		require.NoError(t, mw.WriteField("folder", folder))
	}
	if content != nil {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func upload(t *testing.T, h *MediaHandler, user *uuid.UUID, folder string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, folder, "shop.png", content)
	req := httptest.NewRequest(http.MethodPost, "/media/images", body)
	req.Header.Set("Content-Type", ct)
	if user != nil {
		req = req.WithContext(mdlwr.WithUserID(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	h.UploadImage(rec, req)
	return rec
}

func TestUploadImage_Success(t *testing.T) {
	up := &fakeUploader{}
	h := NewMediaHandler(up, 1<<20, zap.NewNop())
	user := uuid.New()

	rec := upload(t, h, &user, "businesses", pngBytes)
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, 1, up.calls)
	assert.Equal(t, "businesses", up.folder)
	assert.Equal(t, user.String(), up.userID)
	assert.Equal(t, "shop.png", up.filename)
	// the sniffed prefix must not be lost
	assert.Equal(t, pngBytes, up.body)

	var resp struct {
		Success bool                 `json:"success"`
		Data    storage.UploadResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(len(pngBytes)), resp.Data.Size)
}

func TestUploadImage_Rejections(t *testing.T) {
	user := uuid.New()

	t.Run("anonymous", func(t *testing.T) {
		up := &fakeUploader{}
		rec := upload(t, NewMediaHandler(up, 1<<20, zap.NewNop()), nil, "businesses", pngBytes)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Zero(t, up.calls)
	})

	t.Run("storage not configured", func(t *testing.T) {
		rec := upload(t, NewMediaHandler(nil, 1<<20, zap.NewNop()), &user, "businesses", pngBytes)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		rec := upload(t, NewMediaHandler(&fakeUploader{}, 1<<20, zap.NewNop()), &user, "businesses", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		up := &fakeUploader{}
		rec := upload(t, NewMediaHandler(up, 1<<20, zap.NewNop()), &user, "businesses", []byte("plain text, not a picture"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, up.calls)
	})

	t.Run("too large", func(t *testing.T) {
		up := &fakeUploader{}
		rec := upload(t, NewMediaHandler(up, 32, zap.NewNop()), &user, "businesses", pngBytes)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Zero(t, up.calls)
	})

	t.Run("unknown folder", func(t *testing.T) {
		up := &fakeUploader{err: storage.ErrUnknownFolder}
		rec := upload(t, NewMediaHandler(up, 1<<20, zap.NewNop()), &user, "secrets", pngBytes)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
