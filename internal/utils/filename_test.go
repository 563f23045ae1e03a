package utils

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveFilename_FromContentDisposition(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Disposition", `attachment; filename="report.pdf"`)

	name := DeriveFilename("https://example.com/dl?id=42", hdr)
	assert.Equal(t, "report.pdf", name)
}

func TestDeriveFilename_StripsDirectoryComponents(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Disposition", `attachment; filename="../../etc/passwd"`)

	name := DeriveFilename("https://example.com/x", hdr)
	assert.Equal(t, "passwd", name)
}

func TestDeriveFilename_FromURLPath(t *testing.T) {
	name := DeriveFilename("https://example.com/files/video.mp4?token=abc", nil)
	assert.Equal(t, "video.mp4", name)
}

func TestDeriveFilename_Fallback(t *testing.T) {
	assert.Equal(t, "download.bin", DeriveFilename("https://example.com/", nil))
	assert.Equal(t, "download.bin", DeriveFilename("://notaurl", nil))
}

func TestCategory(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"movie.mp4", "Video"},
		{"clip.mkv", "Video"},
		{"song.mp3", "Audio"},
		{"photo.jpg", "Images"},
		{"bundle.zip", "Archives"},
		{"backup.tar", "Archives"},
		{"report.pdf", "Documents"},
		{"README", "Other"},
		{"data.xyz", "Other"},
	}

	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			assert.Equal(t, tc.want, Category(tc.filename))
		})
	}
}
