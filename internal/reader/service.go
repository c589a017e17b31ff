package reader

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sarthakagrawal927/reader-backend/internal/sanitize"
)

// ErrBadURL is returned for URLs that are not plain http or https.
var ErrBadURL = errors.New("url must be http or https")

const (
	maxTitleRunes   = 500
	maxBylineRunes  = 200
	maxExcerptRunes = 300
)

// Renderer produces the raw HTML of a page.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
}

// Service turns a URL into sanitized readable content. When a headless
// browser is configured it renders there first, falling back to a
// plain fetch if the browser fails, so scraping still works on hosts
// without Chrome installed.
type Service struct {
	browser Renderer
	fetcher *Fetcher
}

func NewService(browser Renderer, fetcher *Fetcher) *Service {
	return &Service{browser: browser, fetcher: fetcher}
}

func (s *Service) Scrape(ctx context.Context, pageURL string) (*Extraction, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrBadURL
	}

	html, err := s.render(ctx, u.String())
	if err != nil {
		return nil, err
	}

	ext, err := extract(html, u.String())
	if err != nil {
		return nil, err
	}

	ext.Title = sanitize.Field(ext.Title, maxTitleRunes)
	ext.Byline = sanitize.Field(ext.Byline, maxBylineRunes)
	ext.SiteName = sanitize.Field(ext.SiteName, maxBylineRunes)
	ext.Excerpt = sanitize.Field(ext.Excerpt, maxExcerptRunes)
	ext.Content = sanitize.HTML(ext.Content)
	ext.TextContent = sanitize.PlainText(ext.TextContent)
	return ext, nil
}

func (s *Service) render(ctx context.Context, pageURL string) (string, error) {
	if s.browser != nil {
		html, err := s.browser.Render(ctx, pageURL)
		if err == nil {
			return html, nil
		}
		log.Warn().Err(err).Str("url", pageURL).Msg("browser render failed, falling back to plain fetch")
	}

	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
