package storage

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"regexp"
	"strings"
	"testing"
	"time"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestValidateFile(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	zip := []byte("PK\x03\x04\x14\x00\x06\x00")

	tests := []struct {
		name     string
		data     []byte
		kind     Kind
		declared string
		wantMime string
		wantErr  error
	}{
		{name: "png image", data: pngBytes(t), kind: KindImage, declared: "a.png", wantMime: "image/png"},
		{name: "pdf image rejected", data: pdf, kind: KindImage, declared: "a.png", wantErr: ErrInvalidMimeType},
		{name: "pdf attachment", data: pdf, kind: KindAttachment, declared: "doc.pdf", wantMime: "application/pdf"},
		{name: "text attachment", data: []byte("plain notes"), kind: KindAttachment, declared: "n.txt", wantMime: "text/plain"},
		{name: "docx attachment", data: zip, kind: KindAttachment, declared: "report.DOCX", wantMime: mimeDocx},
		{name: "bare zip rejected", data: zip, kind: KindAttachment, declared: "stuff.zip", wantErr: ErrInvalidMimeType},
		{name: "html rejected", data: []byte("<html><body>x</body></html>"), kind: KindAttachment, declared: "x.txt", wantErr: ErrInvalidMimeType},
		{name: "empty", data: nil, kind: KindAttachment, wantErr: ErrEmptyFile},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ValidateFile(bytes.NewReader(tc.data), tc.kind, tc.declared)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateFile: %v", err)
			}
			if f.MimeType != tc.wantMime {
				t.Fatalf("mime = %q, want %q", f.MimeType, tc.wantMime)
			}
		})
	}
}

func TestValidateFileTooLarge(t *testing.T) {
	old := MaxFileSizes[KindAttachment]
	MaxFileSizes[KindAttachment] = 8
	t.Cleanup(func() { MaxFileSizes[KindAttachment] = old })

	_, err := ValidateFile(strings.NewReader("0123456789"), KindAttachment, "a.txt")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestGenerateKey(t *testing.T) {
	now := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	key := GenerateKey("posts", "image/jpeg", now)

	pattern := regexp.MustCompile(`^posts/2024/03/[0-9a-f-]{36}\.jpg$`)
	if !pattern.MatchString(key) {
		t.Fatalf("unexpected key %q", key)
	}
	if GenerateKey("posts", "image/jpeg", now) == key {
		t.Fatal("keys should be unique")
	}
}

func TestMimeForExtensionRoundTripsStoredTypes(t *testing.T) {
	for _, mt := range []string{"image/jpeg", "image/png", "application/pdf", mimeDocx} {
		if got := MimeForExtension(GetExtensionForMime(mt)); got != mt {
			t.Fatalf("%s: got %s", mt, got)
		}
	}
	if got := MimeForExtension(".TXT"); got != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected text type %q", got)
	}
	if got := MimeForExtension(""); got != "application/octet-stream" {
		t.Fatalf("unexpected fallback %q", got)
	}
}
