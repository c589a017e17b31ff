package proxy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sarthakagrawal927/reader-backend/internal/api/http/middleware"
	"github.com/sarthakagrawal927/reader-backend/internal/cache"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Handler fetches a page server-side so the client can embed sites
// that send frame-blocking headers. Only the content type is forwarded
// back, which drops X-Frame-Options and Content-Security-Policy on the
// floor.
type Handler struct {
	client  *http.Client
	cache   *cache.Cache
	ttl     time.Duration
	maxBody int64

	// allowPrivate disables the private-host guard for tests that
	// fetch from a loopback server.
	allowPrivate bool
}

func Register(rg *gin.RouterGroup, c *cache.Cache, ttl time.Duration, maxBody int64) {
	h := &Handler{
		client:  &http.Client{Timeout: 20 * time.Second},
		cache:   c,
		ttl:     ttl,
		maxBody: maxBody,
	}
	rg.GET("/proxy", h.proxy)
}

// cachedResponse is the cache entry: body plus the content type it was
// served with.
type cachedResponse struct {
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

func (h *Handler) proxy(c *gin.Context) {
	raw := c.Query("url")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL parameter is required"})
		return
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only http and https URLs are supported"})
		return
	}
	if !h.allowPrivate && privateHost(u.Hostname()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requests to private hosts are not allowed"})
		return
	}

	ctx := c.Request.Context()
	key := cacheKey(u.String())

	var entry cachedResponse
	if hit, err := h.cache.GetJSON(ctx, key, &entry); err == nil && hit {
		h.respond(c, entry)
		return
	} else if err != nil {
		log.Warn().Err(err).Str("request_id", middleware.GetRequestID(ctx)).Msg("proxy cache read failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only http and https URLs are supported"})
		return
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream fetch failed: " + err.Error()})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Upstream fetch failed: status %d", resp.StatusCode)})
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody+1))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream fetch failed: " + err.Error()})
		return
	}
	if int64(len(body)) > h.maxBody {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Upstream response exceeds %d bytes", h.maxBody)})
		return
	}

	entry = cachedResponse{ContentType: resp.Header.Get("Content-Type"), Body: body}
	if err := h.cache.SetJSON(ctx, key, entry, h.ttl); err != nil {
		log.Warn().Err(err).Str("request_id", middleware.GetRequestID(ctx)).Msg("proxy cache write failed")
	}
	h.respond(c, entry)
}

func (h *Handler) respond(c *gin.Context, entry cachedResponse) {
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.ttl.Seconds())))
	contentType := entry.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, entry.Body)
}

func cacheKey(u string) string {
	sum := sha256.Sum256([]byte(u))
	return "proxy:" + hex.EncodeToString(sum[:])
}

// privateHost blocks loopback, RFC 1918, link-local and unspecified
// addresses so the proxy can't be pointed at internal services.
func privateHost(host string) bool {
	h := strings.ToLower(host)
	if h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return true
	}
	if ip := net.ParseIP(h); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
	}
	return false
}
