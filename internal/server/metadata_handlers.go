// file: internal/server/metadata_handlers.go
// version: 1.0.0
// guid: 7042aac5-66f6-48ae-b0b7-62bc388588da

package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/calibre-api/internal/calibre"
)

// MetadataResponse carries standalone-file metadata operations.
type MetadataResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
	Metadata any    `json:"metadata_content,omitempty"`
	Details  string `json:"details,omitempty"`
}

// FetchMetadataRequest is the JSON body for an online metadata lookup.
type FetchMetadataRequest struct {
	Title   string            `json:"title"`
	Authors string            `json:"authors"`
	ISBN    string            `json:"isbn"`
	IDs     map[string]string `json:"ids"`
	AsJSON  *bool             `json:"as_json"`
	Timeout int               `json:"timeout"` // seconds, passed to the tool's own --timeout
}

// FetchMetadataResponse reports an online lookup outcome.
type FetchMetadataResponse struct {
	Message        string         `json:"message"`
	SearchCriteria map[string]any `json:"search_criteria"`
	Metadata       any            `json:"metadata"`
}

func (s *Server) readFileMetadata(c *gin.Context) {
	asJSON := c.DefaultQuery("as_json", "true") != "false"

	up, cleanup, err := s.saveUpload(c)
	if err != nil {
		RespondWithBadRequest(c, err.Error())
		return
	}
	defer cleanup()

	resp := MetadataResponse{
		Message:  "Metadata read successfully.",
		Filename: up.Name,
	}

	if asJSON {
		md, err := s.tools.ReadMetadataParsed(up.Path)
		if err != nil {
			RespondWithCalibreError(c, err)
			return
		}
		resp.Metadata = md
	} else {
		raw, err := s.tools.ReadMetadata(up.Path)
		if err != nil {
			RespondWithCalibreError(c, err)
			return
		}
		resp.Metadata = raw
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) writeFileMetadata(c *gin.Context) {
	options, err := splitOptions(c.PostForm("options"))
	if err != nil {
		RespondWithBadRequest(c, "could not parse options: "+err.Error())
		return
	}

	up, cleanup, err := s.saveUpload(c)
	if err != nil {
		RespondWithBadRequest(c, err.Error())
		return
	}
	defer cleanup()

	confirmation, err := s.tools.SetFileMetadata(up.Path, options)
	if err != nil {
		RespondWithCalibreError(c, err)
		return
	}

	// The modified upload becomes a downloadable artifact.
	artifact, downloadName := s.artifactPath(up.Name)
	if err := os.Rename(up.Path, artifact); err != nil {
		RespondWithInternalError(c, "failed to stage modified file: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, MetadataResponse{
		Message:  "Metadata set successfully.",
		Filename: downloadName,
		Details:  confirmation,
	})
}

func (s *Server) extractCover(c *gin.Context) {
	up, cleanup, err := s.saveUpload(c)
	if err != nil {
		RespondWithBadRequest(c, err.Error())
		return
	}
	defer cleanup()

	ext := strings.ToLower(filepath.Ext(up.Name))
	coverName := strings.TrimSuffix(up.Name, ext) + "_cover.jpg"
	coverPath, _ := s.artifactPath(coverName)

	if _, err := s.tools.ExtractCover(up.Path, coverPath); err != nil {
		RespondWithCalibreError(c, err)
		return
	}
	defer os.Remove(coverPath)

	c.FileAttachment(coverPath, coverName)
}

func (s *Server) fetchMetadata(c *gin.Context) {
	var req FetchMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	fetchReq := calibre.FetchRequest{
		Title:       req.Title,
		Authors:     req.Authors,
		ISBN:        req.ISBN,
		Identifiers: req.IDs,
	}
	if req.Timeout > 0 {
		fetchReq.Timeout = time.Duration(req.Timeout) * time.Second
	}

	criteria := map[string]any{}
	if req.Title != "" {
		criteria["title"] = req.Title
	}
	if req.Authors != "" {
		criteria["authors"] = req.Authors
	}
	if req.ISBN != "" {
		criteria["isbn"] = req.ISBN
	}
	if len(req.IDs) > 0 {
		criteria["ids"] = req.IDs
	}

	asJSON := req.AsJSON == nil || *req.AsJSON

	var result calibre.FetchResult
	var err error
	if asJSON {
		result, err = s.tools.FetchMetadata(fetchReq)
	} else {
		result, err = s.tools.FetchMetadataRaw(fetchReq)
	}
	if err != nil {
		RespondWithCalibreError(c, err)
		return
	}

	if !result.Found {
		RespondWithNotFound(c, "No metadata found for the given search criteria.")
		return
	}

	resp := FetchMetadataResponse{
		Message:        "Metadata fetched successfully.",
		SearchCriteria: criteria,
	}
	if asJSON {
		resp.Metadata = result.Metadata
	} else {
		resp.Metadata = result.OPF
	}
	c.JSON(http.StatusOK, resp)
}
