package cmd

import (
	"encoding/base64"
	"mime"
	"net/http"
	"path/filepath"
)

// encodeDataURL embeds a file the way the journal stores screenshots.
func encodeDataURL(path string, data []byte) string {
	typ := mime.TypeByExtension(filepath.Ext(path))
	if typ == "" {
		typ = http.DetectContentType(data)
	}
	return "data:" + typ + ";base64," + base64.StdEncoding.EncodeToString(data)
}
