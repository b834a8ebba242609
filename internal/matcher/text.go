package matcher

import (
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// IsText reports whether path holds text. Content sniffing decides first;
// when it is inconclusive the extension's registered type is used.
func IsText(path string) bool {
	mt, err := mimetype.DetectFile(path)
	if err == nil {
		for m := mt; m != nil; m = m.Parent() {
			if m.Is("text/plain") {
				return true
			}
		}
		if !mt.Is("application/octet-stream") {
			return false
		}
	}

	byExt := mime.TypeByExtension(filepath.Ext(path))
	return strings.HasPrefix(byExt, "text/")
}

// ReadText returns the contents of a text file. It reports false when the
// file is larger than maxBytes, is not text, cannot be read or is not valid
// UTF-8.
func ReadText(path string, size, maxBytes int64) ([]byte, bool) {
	if size > maxBytes {
		return nil, false
	}
	if !IsText(path) {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil || int64(len(data)) > maxBytes {
		return nil, false
	}
	if !utf8.Valid(data) {
		return nil, false
	}
	return data, true
}
