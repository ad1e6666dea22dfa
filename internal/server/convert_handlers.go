// file: internal/server/convert_handlers.go
// version: 1.0.0
// guid: 1c082977-1ef4-4921-9d3d-508ddc1c6a99

package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/shlex"
)

// ConvertResponse names the produced file for the downloads route.
type ConvertResponse struct {
	Message        string `json:"message"`
	OutputFilename string `json:"output_filename"`
}

// CheckResponse carries an ebook-edit check report.
type CheckResponse struct {
	Message      string `json:"message"`
	Filename     string `json:"filename"`
	ReportFormat string `json:"report_format"`
	Report       any    `json:"report"`
}

// splitOptions shlex-splits a form-supplied option string into argv words.
func splitOptions(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return shlex.Split(raw)
}

func (s *Server) convertBook(c *gin.Context) {
	outputFormat := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.PostForm("output_format"))), ".")
	if outputFormat == "" {
		RespondWithBadRequest(c, "output_format form field is required")
		return
	}

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

	outPath, downloadName := s.artifactPath(replaceExt(up.Name, outputFormat))
	if _, err := s.tools.Convert(up.Path, outPath, options); err != nil {
		RespondWithCalibreError(c, err)
		return
	}

	c.JSON(http.StatusOK, ConvertResponse{
		Message:        "Conversion successful.",
		OutputFilename: downloadName,
	})
}

func (s *Server) polishBook(c *gin.Context) {
	options, err := splitOptions(c.PostForm("options"))
	if err != nil {
		RespondWithBadRequest(c, "could not parse options: "+err.Error())
		return
	}

	suffix := c.PostForm("suffix")
	if suffix == "" {
		suffix = "_polished"
	}

	up, cleanup, err := s.saveUpload(c)
	if err != nil {
		RespondWithBadRequest(c, err.Error())
		return
	}
	defer cleanup()

	ext := filepath.Ext(up.Name)
	outPath, downloadName := s.artifactPath(strings.TrimSuffix(up.Name, ext) + suffix + ext)

	if _, err := s.tools.Polish(up.Path, outPath, options, false); err != nil {
		RespondWithCalibreError(c, err)
		return
	}

	c.JSON(http.StatusOK, ConvertResponse{
		Message:        "Polishing successful.",
		OutputFilename: downloadName,
	})
}

func (s *Server) lrfToLRS(c *gin.Context) {
	s.lrfConversion(c, ".lrs", func(in, out string) (string, error) {
		return s.tools.LRFToLRS(in, out)
	})
}

func (s *Server) lrsToLRF(c *gin.Context) {
	s.lrfConversion(c, ".lrf", func(in, out string) (string, error) {
		return s.tools.LRSToLRF(in, out)
	})
}

func (s *Server) lrfConversion(c *gin.Context, outExt string, convert func(in, out string) (string, error)) {
	up, cleanup, err := s.saveUpload(c)
	if err != nil {
		RespondWithBadRequest(c, err.Error())
		return
	}
	defer cleanup()

	outPath, downloadName := s.artifactPath(replaceExt(up.Name, outExt))
	if _, err := convert(up.Path, outPath); err != nil {
		RespondWithCalibreError(c, err)
		return
	}

	c.JSON(http.StatusOK, ConvertResponse{
		Message:        "Conversion successful.",
		OutputFilename: downloadName,
	})
}

func (s *Server) checkBook(c *gin.Context) {
	format := strings.ToLower(c.DefaultPostForm("format", "json"))
	if format != "json" && format != "text" {
		RespondWithBadRequest(c, "format must be 'json' or 'text'")
		return
	}

	up, cleanup, err := s.saveUpload(c)
	if err != nil {
		RespondWithBadRequest(c, err.Error())
		return
	}
	defer cleanup()

	resp := CheckResponse{
		Message:      "Check completed.",
		Filename:     up.Name,
		ReportFormat: format,
	}

	if format == "json" {
		report, err := s.tools.CheckBookJSON(up.Path)
		if err != nil {
			RespondWithCalibreError(c, err)
			return
		}
		resp.Report = report
	} else {
		report, err := s.tools.CheckBook(up.Path)
		if err != nil {
			RespondWithCalibreError(c, err)
			return
		}
		resp.Report = report
	}

	c.JSON(http.StatusOK, resp)
}
