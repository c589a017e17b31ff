package articles

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sarthakagrawal927/reader-backend/internal/auth"
	"github.com/sarthakagrawal927/reader-backend/internal/lists"
	"github.com/sarthakagrawal927/reader-backend/internal/search"
)

type Handler struct {
	repo   *Repo
	lists  *lists.Repo
	search *search.Service
}

func Register(rg *gin.RouterGroup, repo *Repo, listRepo *lists.Repo, idx *search.Service) {
	h := &Handler{repo: repo, lists: listRepo, search: idx}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.POST("/:id/lists", h.addToList)
	rg.DELETE("/:id/lists", h.removeFromList)
}

// RegisterTags adds the cross-article tag listing, which lives beside
// /articles rather than under it.
func RegisterTags(rg *gin.RouterGroup, repo *Repo) {
	h := &Handler{repo: repo}
	rg.GET("/tags", h.tags)
}

type createReq struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Byline    string   `json:"byline"`
	SiteName  string   `json:"siteName"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content"`
	Status    string   `json:"status"`
	ProjectID string   `json:"projectId"`
	ListIDs   []string `json:"listIds"`
	Notes     []any    `json:"notes"`
	Tags      []any    `json:"tags"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	uid := auth.UserUID(c)
	a, err := h.repo.Create(c.Request.Context(), uid, CreateInput{
		URL:       req.URL,
		Title:     req.Title,
		Byline:    req.Byline,
		SiteName:  req.SiteName,
		Excerpt:   req.Excerpt,
		Content:   req.Content,
		Status:    req.Status,
		ProjectID: req.ProjectID,
		ListIDs:   req.ListIDs,
		Notes:     req.Notes,
		Tags:      req.Tags,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.index(a)
	c.JSON(http.StatusOK, gin.H{"id": a.ID})
}

func (h *Handler) list(c *gin.Context) {
	uid := auth.UserUID(c)
	summaries, err := h.repo.List(c.Request.Context(), uid, c.Query("projectId"), c.Query("listId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *Handler) get(c *gin.Context) {
	uid := auth.UserUID(c)
	a, err := h.repo.Get(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type updateReq struct {
	Title        *string   `json:"title"`
	Byline       *string   `json:"byline"`
	SiteName     *string   `json:"siteName"`
	Excerpt      *string   `json:"excerpt"`
	Content      *string   `json:"content"`
	Status       *string   `json:"status"`
	ProjectID    *string   `json:"projectId"`
	ListIDs      *[]string `json:"listIds"`
	Notes        *[]any    `json:"notes"`
	Tags         *[]any    `json:"tags"`
	ChatMessages *[]any    `json:"chatMessages"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	uid := auth.UserUID(c)
	a, err := h.repo.Update(c.Request.Context(), c.Param("id"), uid, UpdateInput{
		Title:        req.Title,
		Byline:       req.Byline,
		SiteName:     req.SiteName,
		Excerpt:      req.Excerpt,
		Content:      req.Content,
		Status:       req.Status,
		ProjectID:    req.ProjectID,
		ListIDs:      req.ListIDs,
		Notes:        req.Notes,
		Tags:         req.Tags,
		ChatMessages: req.ChatMessages,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.index(a)
	c.JSON(http.StatusOK, a)
}

func (h *Handler) delete(c *gin.Context) {
	uid := auth.UserUID(c)
	id := c.Param("id")
	if err := h.repo.Delete(c.Request.Context(), id, uid); err != nil {
		h.respondError(c, err)
		return
	}

	if h.search != nil {
		h.search.Remove(id)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type membershipReq struct {
	ListID string `json:"listId"`
}

func (h *Handler) addToList(c *gin.Context) {
	var req membershipReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ListID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "List ID is required"})
		return
	}

	uid := auth.UserUID(c)
	if _, err := h.lists.Get(c.Request.Context(), req.ListID, uid); err != nil {
		if errors.Is(err, lists.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	a, err := h.repo.AddToList(c.Request.Context(), c.Param("id"), req.ListID, uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) removeFromList(c *gin.Context) {
	var req membershipReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ListID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "List ID is required"})
		return
	}

	uid := auth.UserUID(c)
	a, err := h.repo.RemoveFromList(c.Request.Context(), c.Param("id"), req.ListID, uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) tags(c *gin.Context) {
	uid := auth.UserUID(c)
	tags, err := h.repo.DistinctTags(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (h *Handler) index(a *Article) {
	if h.search == nil {
		return
	}
	h.search.Index(search.Record{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		ProjectID: a.ProjectID,
		Title:     a.Title,
		Byline:    a.Byline,
		Excerpt:   a.Excerpt,
		Text:      a.TextContent,
		Tags:      a.Tags,
	})
}
