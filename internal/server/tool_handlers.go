// file: internal/server/tool_handlers.go
// version: 1.0.0
// guid: d3620b4c-b2a1-4f4b-804f-6dfcbc303cbb

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/jdfalk/calibre-api/internal/calibre"
)

// VersionResponse reports the installed Calibre version.
type VersionResponse struct {
	CalibreVersion string `json:"calibre_version"`
	Details        string `json:"details,omitempty"`
}

// PluginListResponse lists installed Calibre plugins.
type PluginListResponse struct {
	Message string           `json:"message"`
	Count   int              `json:"count"`
	Plugins []calibre.Plugin `json:"plugins"`
}

// RecipeRequest asks for a news-source recipe to be generated.
type RecipeRequest struct {
	URL      string `json:"url" binding:"required"`
	Filename string `json:"filename"`
	Options  string `json:"options"` // shlex-split into web2disk flags
}

// RecipeResponse names the generated recipe file.
type RecipeResponse struct {
	Message        string `json:"message"`
	RecipeFilename string `json:"recipe_filename"`
}

// DebugTestBuildResponse returns the raw self-test output.
type DebugTestBuildResponse struct {
	Message string `json:"message"`
	Output  string `json:"output"`
}

// SendMailRequest is the JSON body for calibre-smtp.
type SendMailRequest struct {
	RecipientEmail string `json:"recipient_email" binding:"required"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	SMTPServer     string `json:"smtp_server" binding:"required"`
	SMTPPort       int    `json:"smtp_port" binding:"required"`
	SMTPUsername   string `json:"smtp_username"`
	SMTPPassword   string `json:"smtp_password"`
	SMTPEncryption string `json:"smtp_encryption"`
	SenderEmail    string `json:"sender_email"`
	ReplyToEmail   string `json:"reply_to_email"`
}

func (s *Server) getVersion(c *gin.Context) {
	info, err := s.tools.Version()
	if err != nil {
		RespondWithCalibreError(c, err)
		return
	}
	c.JSON(http.StatusOK, VersionResponse{
		CalibreVersion: info.Version,
		Details:        info.Raw,
	})
}

func (s *Server) getDoctor(c *gin.Context) {
	report := s.tools.Doctor()
	status := http.StatusOK
	if !report.AllFound {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

func (s *Server) listPlugins(c *gin.Context) {
	plugins, err := s.tools.ListPlugins()
	if err != nil {
		RespondWithCalibreError(c, err)
		return
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filtered := make([]calibre.Plugin, 0, len(plugins))
		for _, p := range plugins {
			if fuzzy.Match(strings.ToLower(q), strings.ToLower(p.Name)) {
				filtered = append(filtered, p)
			}
		}
		plugins = filtered
	}

	c.JSON(http.StatusOK, PluginListResponse{
		Message: "Plugins listed successfully.",
		Count:   len(plugins),
		Plugins: plugins,
	})
}

func (s *Server) generateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	options, err := splitOptions(req.Options)
	if err != nil {
		RespondWithBadRequest(c, "could not parse options: "+err.Error())
		return
	}

	name := sanitizeFilename(req.Filename)
	if name == "" {
		name = "site.recipe"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".recipe") {
		name += ".recipe"
	}
	recipePath, downloadName := s.artifactPath(name)

	if _, err := s.tools.GenerateRecipe(req.URL, recipePath, options); err != nil {
		RespondWithCalibreError(c, err)
		return
	}

	c.JSON(http.StatusOK, RecipeResponse{
		Message:        "Recipe generated successfully.",
		RecipeFilename: downloadName,
	})
}

func (s *Server) debugTestBuild(c *gin.Context) {
	output, err := s.tools.TestBuild()
	if err != nil {
		RespondWithCalibreError(c, err)
		return
	}
	c.JSON(http.StatusOK, DebugTestBuildResponse{
		Message: "Test build completed.",
		Output:  output,
	})
}

func (s *Server) sendMail(c *gin.Context) {
	var req SendMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	result, err := s.tools.SendMail(calibre.SendRequest{
		Recipient:  req.RecipientEmail,
		Subject:    req.Subject,
		Body:       req.Body,
		Server:     req.SMTPServer,
		Port:       req.SMTPPort,
		Username:   req.SMTPUsername,
		Password:   req.SMTPPassword,
		Encryption: req.SMTPEncryption,
		Sender:     req.SenderEmail,
		ReplyTo:    req.ReplyToEmail,
	})
	if err != nil {
		RespondWithCalibreError(c, err)
		return
	}

	// A rejected send is a business outcome, not a transport error.
	c.JSON(http.StatusOK, result)
}
