package file_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/file"
)

func TestDetectMIMEType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{"png", pngHeader, "image/png"},
		{"pdf", []byte("%PDF-1.4\n"), "application/pdf"},
		{"text", []byte("plain words"), "text/plain"},
		{"empty", nil, "text/plain"},
		{"binary", []byte{0x00, 0x01, 0x02, 0x03}, "application/octet-stream"},
		{"zip", []byte("PK\x03\x04rest"), "application/zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := file.DetectMIMEType(bytes.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchMIMEType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mimeType string
		allowed  []string
		want     bool
	}{
		{"exact", "image/png", []string{"image/png"}, true},
		{"wildcard", "image/webp", []string{"image/*"}, true},
		{"any", "application/x-anything", []string{"*/*"}, true},
		{"params ignored", "text/plain; charset=utf-8", []string{"text/plain"}, true},
		{"case insensitive", "IMAGE/PNG", []string{"image/png"}, true},
		{"alias", "image/jpg", []string{"image/jpeg"}, true},
		{"not allowed", "application/pdf", []string{"image/*"}, false},
		{"empty list", "image/png", nil, false},
		{"malformed type", "garbage", []string{"*/*"}, false},
		{"wildcard other major", "imagex/png", []string{"image/*"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, file.MatchMIMEType(tt.mimeType, tt.allowed...))
		})
	}
}

func TestConsistentMIMEType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		declared string
		sniffed  string
		want     bool
	}{
		{"image/png", "image/png", true},
		{"image/jpg", "image/jpeg", true},
		{"application/json", "text/plain; charset=utf-8", true},
		{"text/csv", "text/plain", true},
		{"image/png", "text/plain", false},
		{"image/png", "application/pdf", false},
		{"application/x-custom", "application/octet-stream", true},
		{"text/plain", "application/octet-stream", false},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip", true},
		{"image/svg+xml", "text/xml; charset=utf-8", true},
		{"text/plain", "text/html; charset=utf-8", false},
	}

	for _, tt := range tests {
		t.Run(tt.declared+"_"+tt.sniffed, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, file.ConsistentMIMEType(tt.declared, tt.sniffed))
		})
	}
}
