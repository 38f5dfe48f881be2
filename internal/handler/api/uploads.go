// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadsURLPrefix is where stored uploads are served from.
const UploadsURLPrefix = "/uploads/"

// allowedUploadTypes maps sniffed content types to stored file extensions.
var allowedUploadTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Upload handles POST /api/v1/uploads. The multipart field "file" is stored
// under a random name; the returned URL can be used in image lists or as a
// background video.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxBytes+(1<<20))
	if err := r.ParseMultipartForm(h.uploadMaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "File is too large", nil)
			return
		}
		WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteValidationError(w, map[string]string{"file": "file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.uploadMaxBytes {
		WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "File is too large", nil)
		return
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		WriteBadRequest(w, "Failed to read file", nil)
		return
	}
	contentType := http.DetectContentType(sniff[:n])
	ext, ok := allowedUploadTypes[contentType]
	if !ok {
		WriteValidationError(w, map[string]string{"file": "unsupported file type " + contentType})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		WriteInternalError(w, "Failed to store file")
		return
	}

	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		h.logger.Error("creating uploads directory", "error", err, "category", "storage")
		WriteInternalError(w, "Failed to store file")
		return
	}

	name := uuid.NewString() + ext
	size, err := writeUpload(filepath.Join(h.uploadsDir, name), file)
	if err != nil {
		h.logger.Error("storing upload", "error", err, "category", "storage")
		WriteInternalError(w, "Failed to store file")
		return
	}

	h.logger.Info("file uploaded", "name", name, "type", contentType, "size", size)
	WriteCreated(w, UploadResponse{
		URL:         path.Join(UploadsURLPrefix, name),
		ContentType: contentType,
		Size:        size,
	})
}

// writeUpload copies src to dst, removing dst on failure.
func writeUpload(dst string, src io.Reader) (int64, error) {
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return 0, err
	}
	return n, nil
}

// uploadsFileSystem serves files from the uploads directory without
// directory listings.
type uploadsFileSystem struct {
	fs http.FileSystem
}

func (u uploadsFileSystem) Open(name string) (http.File, error) {
	f, err := u.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

// ServeUploads returns a handler for GET /uploads/*.
func (h *Handler) ServeUploads() http.Handler {
	fs := http.FileServer(uploadsFileSystem{fs: http.Dir(h.uploadsDir)})
	return http.StripPrefix(strings.TrimSuffix(UploadsURLPrefix, "/"), fs)
}
