package storage_test

import (
	"strings"
	"testing"

	"github.com/ganzorig/mishil/pkg/storage"
)

func TestInlineURL(t *testing.T) {
	url := storage.InlineURL([]byte("hello"), "image/png")
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("url = %q", url)
	}
	if !storage.IsInline(url) {
		t.Error("IsInline(data url) = false")
	}
}

func TestInlineURLDefaultsContentType(t *testing.T) {
	url := storage.InlineURL([]byte{0x1}, "")
	if !strings.HasPrefix(url, "data:application/octet-stream;base64,") {
		t.Errorf("url = %q", url)
	}
}

func TestIsInline(t *testing.T) {
	if storage.IsInline("https://cdn.example.com/p/1.jpg") {
		t.Error("https url flagged as inline")
	}
	if storage.IsInline("data:") {
		t.Error("bare data: prefix should not count as an inline image")
	}
}

func TestDeleteImageIgnoresInline(t *testing.T) {
	// Inline URLs have no backing file; deleting one must be a no-op even
	// before any disk is configured.
	if err := storage.DeleteImage("data:image/png;base64,aGk="); err != nil {
		t.Errorf("DeleteImage(inline) = %v", err)
	}
}
