package reader

import (
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// Extraction is the readable content pulled out of a page, shaped to
// slot straight into an article create request.
type Extraction struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Byline      string `json:"byline,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
	Content     string `json:"content"`
	TextContent string `json:"textContent"`
}

// extract runs readability over raw HTML fetched from pageURL.
func extract(html, pageURL string) (*Extraction, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	art, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}

	return &Extraction{
		URL:         pageURL,
		Title:       art.Title,
		Byline:      art.Byline,
		SiteName:    art.SiteName,
		Excerpt:     art.Excerpt,
		Content:     art.Content,
		TextContent: art.TextContent,
	}, nil
}
