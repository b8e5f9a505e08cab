package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// 保存を許可する画像形式。拡張子は判定した形式から決める
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Upload handles POST /api/upload
// 画像のみ受け付け、UPLOAD_DIR に保存して公開 URL を返す
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.Config.MaxUploadBytes); err != nil {
		h.Log.Warnf("[POST /api/upload] ❌ Bad Request: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.Log.Warnf("[POST /api/upload] ❌ No file: %v", err)
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	// クライアントの Content-Type とファイル名は信用せず、中身から判定する
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.Log.Warnf("[POST /api/upload] ❌ Failed to read file: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	head = head[:n]

	sniffed := http.DetectContentType(head)
	ext, ok := imageExtensions[sniffed]
	if !ok {
		h.Log.Warnf("[POST /api/upload] ❌ Rejected content %q (declared %q)", sniffed, header.Header.Get("Content-Type"))
		writeError(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	if err := os.MkdirAll(h.Config.UploadDir, 0o755); err != nil {
		h.Log.Errorf("[POST /api/upload] ❌ Failed to create upload dir: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	dst, err := os.Create(filepath.Join(h.Config.UploadDir, name))
	if err != nil {
		h.Log.Errorf("[POST /api/upload] ❌ Failed to create file: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), file)); err != nil {
		h.Log.Errorf("[POST /api/upload] ❌ Failed to write file: %v", err)
		os.Remove(dst.Name())
		writeError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	url := "/uploads/" + name
	h.Log.Infof("[POST /api/upload] ✅ Stored %s (%d bytes)", url, header.Size)
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// serveUploads serves stored files without letting browsers sniff another type
func serveUploads(dir string) http.Handler {
	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fs.ServeHTTP(w, r)
	})
}
