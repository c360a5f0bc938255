package server

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"time"
)

//go:embed static/*
var staticFiles embed.FS

// startedAt stands in for the modification time of embedded files, which embed.FS zeroes.
var startedAt = time.Now()

func StaticFilesFS() fs.FS {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("Failed to create sub filesystem: " + err.Error())
	}
	return subFS
}

// StreamFile serves an embedded static file. Content type comes from the extension and
// conditional requests are answered by http.ServeContent.
func StreamFile(w http.ResponseWriter, r *http.Request, fileName string) error {
	fileName = path.Clean(fileName)
	if !fs.ValidPath(fileName) {
		return fmt.Errorf("invalid path %q", fileName)
	}
	data, err := fs.ReadFile(StaticFilesFS(), fileName)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fileName, err)
	}
	http.ServeContent(w, r, fileName, startedAt, bytes.NewReader(data))
	return nil
}
