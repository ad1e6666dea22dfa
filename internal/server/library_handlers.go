// file: internal/server/library_handlers.go
// version: 1.0.0
// guid: ca9a178b-77d8-4cd1-b08d-9926b45951c3

package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/calibre-api/internal/calibre"
)

// AddBookResponse reports the outcome of a library add.
type AddBookResponse struct {
	Message      string `json:"message"`
	AddedBookIDs []int  `json:"added_book_ids"`
	Details      string `json:"details,omitempty"`
}

// RemoveBookResponse reports the outcome of a library removal.
type RemoveBookResponse struct {
	Message       string `json:"message"`
	RemovedBookID int    `json:"removed_book_id"`
	Details       string `json:"details,omitempty"`
}

// SetMetadataRequest carries the fields to change on a library book.
type SetMetadataRequest struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Publisher   string   `json:"publisher"`
	PubDate     string   `json:"pubdate"`
	Tags        []string `json:"tags"`
	Series      string   `json:"series"`
	SeriesIndex *float64 `json:"series_index"`
	ISBN        string   `json:"isbn"`
	Comments    string   `json:"comments"`
	Rating      *float64 `json:"rating"`
}

// SetMetadataResponse reports the outcome of a metadata update.
type SetMetadataResponse struct {
	Message string         `json:"message"`
	BookID  int            `json:"book_id"`
	Changed map[string]any `json:"changed,omitempty"`
}

func (s *Server) listBooks(c *gin.Context) {
	lib := s.libraryFor(c)
	books, err := lib.List(calibre.ListRequest{Search: c.Query("search")})
	if err != nil {
		RespondWithCalibreError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (s *Server) addBook(c *gin.Context) {
	up, cleanup, err := s.saveUpload(c)
	if err != nil {
		RespondWithBadRequest(c, err.Error())
		return
	}
	defer cleanup()

	opts := calibre.AddOptions{
		OneBookPerDirectory: formBool(c, "one_book_per_directory"),
		Duplicates:          formBool(c, "duplicates"),
		Automerge:           formBool(c, "automerge"),
		Title:               c.PostForm("title"),
		Authors:             c.PostForm("authors"),
		Tags:                c.PostForm("tags"),
	}

	lib := s.libraryFor(c)
	ids, err := lib.Add(up.Path, opts)
	if err != nil {
		RespondWithCalibreError(c, err)
		return
	}

	resp := AddBookResponse{AddedBookIDs: ids}
	if len(ids) > 0 {
		resp.Message = "Book added successfully."
	} else {
		resp.Message = "No new book was added."
		resp.Details = "calibredb reported no added IDs; the book may be a duplicate."
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) removeBook(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}

	lib := s.libraryFor(c)
	result, err := lib.Remove(id)
	if err != nil {
		RespondWithCalibreError(c, err)
		return
	}

	if result.Removed(id) {
		c.JSON(http.StatusOK, RemoveBookResponse{
			Message:       fmt.Sprintf("Book with ID %d removed successfully.", id),
			RemovedBookID: id,
		})
		return
	}

	if detail, found := result.ErrorFor(id); found {
		RespondWithNotFound(c, fmt.Sprintf("Book with ID %d not found in the library: %s", id, detail))
		return
	}
	RespondWithNotFound(c, fmt.Sprintf("Book with ID %d not found or already removed.", id))
}

func (s *Server) setBookMetadata(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}

	var req SetMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	fields := calibre.SetFields{
		Title:       req.Title,
		Authors:     req.Authors,
		Publisher:   req.Publisher,
		PubDate:     req.PubDate,
		Tags:        req.Tags,
		Series:      req.Series,
		SeriesIndex: req.SeriesIndex,
		ISBN:        req.ISBN,
		Comments:    req.Comments,
		Rating:      req.Rating,
	}

	lib := s.libraryFor(c)
	changed, err := lib.SetMetadata(id, fields)
	if err != nil {
		RespondWithCalibreError(c, err)
		return
	}

	// An empty map means the book does not exist or nothing actually
	// changed; calibredb's machine output does not distinguish the two.
	if len(changed) == 0 {
		RespondWithNotFound(c, fmt.Sprintf(
			"Book with ID %d not found, or no metadata was actually changed.", id))
		return
	}

	c.JSON(http.StatusOK, SetMetadataResponse{
		Message: fmt.Sprintf("Metadata updated for book ID %d.", id),
		BookID:  id,
		Changed: changed,
	})
}

func bookIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		RespondWithBadRequest(c, "Book ID must be a positive integer.")
		return 0, false
	}
	return id, true
}

func formBool(c *gin.Context, key string) bool {
	switch c.PostForm(key) {
	case "1", "true", "True", "on", "yes":
		return true
	default:
		return false
	}
}
