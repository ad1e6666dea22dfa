// file: internal/server/uploads.go
// version: 1.0.0
// guid: 368f0a88-3668-4b4d-af1c-34a6964e9aae

package server

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	ulid "github.com/oklog/ulid/v2"
)

// upload is a stored multipart file: the work-dir path it landed at and the
// client's original base name for deriving output filenames.
type upload struct {
	Path string
	Name string
}

// saveUpload stores the request's `file` multipart part in the work dir under
// a ULID-prefixed name and returns it plus a cleanup func. The prefix keeps
// concurrent uploads of identically named files apart.
func (s *Server) saveUpload(c *gin.Context) (upload, func(), error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return upload{}, nil, fmt.Errorf("missing file upload: %w", err)
	}
	defer file.Close()

	base := sanitizeFilename(header.Filename)
	if base == "" {
		return upload{}, nil, fmt.Errorf("upload has no usable filename")
	}

	dst := filepath.Join(s.workDir, ulid.Make().String()+"_"+base)
	out, err := os.Create(dst)
	if err != nil {
		return upload{}, nil, fmt.Errorf("failed to store upload: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(dst)
		return upload{}, nil, fmt.Errorf("failed to store upload: %w", err)
	}

	cleanup := func() {
		if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
			log.Printf("[WARN] Failed to remove upload %s: %v", dst, err)
		}
	}
	return upload{Path: dst, Name: base}, cleanup, nil
}

// artifactPath builds a work-dir path for a produced file. The returned name
// is what clients pass to the downloads route.
func (s *Server) artifactPath(name string) (path string, downloadName string) {
	downloadName = ulid.Make().String() + "_" + sanitizeFilename(name)
	return filepath.Join(s.workDir, downloadName), downloadName
}

// sanitizeFilename reduces a client-supplied filename to a bare base name.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

// replaceExt swaps a filename's extension, keeping the stem.
func replaceExt(name, newExt string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(newExt, ".") {
		newExt = "." + newExt
	}
	return stem + newExt
}

// downloadArtifact streams a produced file back to the client. Only bare
// filenames inside the work dir are served.
func (s *Server) downloadArtifact(c *gin.Context) {
	name := c.Param("name")
	if name != filepath.Base(name) || strings.Contains(name, "..") || name == "" {
		RespondWithBadRequest(c, "invalid download name")
		return
	}

	path := filepath.Join(s.workDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		RespondWithNotFound(c, "no such download: "+name)
		return
	}

	c.FileAttachment(path, strippedArtifactName(name))
}

// strippedArtifactName removes the ULID prefix for the client-facing filename.
func strippedArtifactName(name string) string {
	if i := strings.Index(name, "_"); i > 0 {
		if _, err := ulid.ParseStrict(name[:i]); err == nil {
			return name[i+1:]
		}
	}
	return name
}
