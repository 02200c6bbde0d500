package uploads

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jortega/userboard/internal/apperror"
)

// uploadedFile builds a real *multipart.FileHeader by round-tripping the
// payload through an HTTP multipart request, the same way Echo produces it.
func uploadedFile(t *testing.T, filename string, payload []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("profileImage", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, fh, err := req.FormFile("profileImage")
	if err != nil {
		t.Fatalf("parse form file: %v", err)
	}
	return fh
}

func TestSaveWritesFileAndReturnsPublicPath(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	path, err := store.Save(uploadedFile(t, "Avatar.PNG", payload))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if !strings.HasPrefix(path, PublicPrefix+"profileImage-") {
		t.Errorf("unexpected public path %q", path)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("extension not lowercased and preserved: %q", path)
	}

	stored := filepath.Join(store.Root(), strings.TrimPrefix(path, PublicPrefix))
	data, err := os.ReadFile(stored)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("stored bytes differ from the upload")
	}
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	store, err := NewStore(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	_, err = store.Save(uploadedFile(t, "big.png", []byte("way past the cap")))
	if err == nil {
		t.Fatal("oversized upload was accepted")
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != http.StatusBadRequest {
		t.Errorf("expected a 400 domain error, got %v", err)
	}

	entries, err := os.ReadDir(store.Root())
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected upload left %d files on disk", len(entries))
	}
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	if _, err := NewStore(root, 1024); err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		t.Errorf("upload directory not created: %v", err)
	}
}
