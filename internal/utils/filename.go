package utils

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/vfaronov/httpheader"
)

// DeriveFilename picks an output filename from response headers or the URL path.
// The browser bridge forwards the headers it observed for the download; when no
// Content-Disposition is present we fall back to the last URL path element.
func DeriveFilename(rawurl string, hdr http.Header) string {
	if hdr != nil {
		if _, filename, _ := httpheader.ContentDisposition(hdr); filename != "" {
			return filepath.Base(filename)
		}
	}

	if parsed, err := url.Parse(rawurl); err == nil {
		name := filepath.Base(parsed.Path)
		if name != "" && name != "." && name != "/" {
			return name
		}
	}

	return "download.bin"
}

// Category maps a filename to a library subfolder by extension.
// Used to route downloads into per-category destination folders.
func Category(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "Other"
	}

	t := filetype.GetType(ext)
	if t == types.Unknown {
		return "Other"
	}

	switch t.MIME.Type {
	case "video":
		return "Video"
	case "audio":
		return "Audio"
	case "image":
		return "Images"
	}

	switch t.MIME.Subtype {
	case "zip", "gzip", "x-tar", "x-7z-compressed", "x-rar-compressed", "x-bzip2", "x-unix-archive":
		return "Archives"
	case "pdf", "epub+zip", "msword", "vnd.openxmlformats-officedocument.wordprocessingml.document":
		return "Documents"
	}

	return "Other"
}
