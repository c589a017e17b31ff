package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sarthakagrawal927/reader-backend/internal/api/http/middleware"
	"github.com/sarthakagrawal927/reader-backend/internal/articles"
	"github.com/sarthakagrawal927/reader-backend/internal/auth"
	"github.com/sarthakagrawal927/reader-backend/internal/search"
)

var pdfMagic = []byte("%PDF-")

// Uploader stores the raw PDF and returns a URL for it. Satisfied by
// the blob store; nil means uploads are kept text-only.
type Uploader interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type Handler struct {
	articles *articles.Repo
	uploads  Uploader
	search   *search.Service
	maxBytes int64
}

func Register(rg *gin.RouterGroup, repo *articles.Repo, uploads Uploader, idx *search.Service, maxBytes int64) {
	h := &Handler{articles: repo, uploads: uploads, search: idx, maxBytes: maxBytes}
	rg.POST("/pdf/upload", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	tooLarge := fmt.Sprintf("File too large (max %dMB)", h.maxBytes>>20)
	if header.Size > h.maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": tooLarge})
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be a PDF"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if int64(len(data)) > h.maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": tooLarge})
		return
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be a PDF"})
		return
	}

	text, pages, err := Extract(data)
	if err != nil || text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not extract text from PDF"})
		return
	}

	uid := auth.UserUID(c)
	ctx := c.Request.Context()

	// Upload failures degrade to a text-only save rather than losing
	// the extraction work.
	var pdfURL string
	if h.uploads != nil {
		key := fmt.Sprintf("pdfs/%s/%s.pdf", uid, uuid.NewString())
		url, err := h.uploads.Put(ctx, key, "application/pdf", data)
		if err != nil {
			log.Warn().Err(err).
				Str("request_id", middleware.GetRequestID(ctx)).
				Str("key", key).
				Msg("pdf upload to object storage failed")
		} else {
			pdfURL = url
		}
	}

	title := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	a, err := h.articles.Create(ctx, uid, articles.CreateInput{
		Title:     title,
		Content:   text,
		ProjectID: c.PostForm("projectId"),
		Source:    "pdf",
		PDFURL:    pdfURL,
		PageCount: pages,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.search != nil {
		h.search.Index(search.Record{
			ID:        a.ID,
			OwnerID:   a.OwnerID,
			ProjectID: a.ProjectID,
			Title:     a.Title,
			Excerpt:   a.Excerpt,
			Text:      a.TextContent,
			Tags:      a.Tags,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        a.ID,
		"pageCount": a.PageCount,
		"pdfUrl":    a.PDFURL,
	})
}
