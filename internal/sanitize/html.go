package sanitize

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// embedSrc lists the only iframe sources that survive sanitization.
// Anything not matching is dropped together with the iframe itself.
var embedSrc = regexp.MustCompile(`^https://(` +
	`(www\.)?(youtube\.com|youtube-nocookie\.com)/embed/` +
	`|player\.vimeo\.com/video/` +
	`|open\.spotify\.com/embed/` +
	`|w\.soundcloud\.com/player/` +
	`)`)

var article = buildArticlePolicy()

// buildArticlePolicy defines the fixed allow-list for stored article
// bodies. The policy is built once; bluemonday policies are safe for
// concurrent use after construction.
func buildArticlePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowURLSchemes("http", "https")
	p.AllowURLSchemeWithCustomPolicy("data", func(u *url.URL) bool {
		// inline images only, never data:text/html
		return strings.HasPrefix(u.Opaque, "image/")
	})
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)

	p.AllowElements(
		"p", "br", "hr",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "pre", "code",
		"em", "strong", "b", "i", "u", "s", "sub", "sup", "mark", "small",
		"ul", "ol", "li", "dl", "dt", "dd",
		"table", "thead", "tbody", "tfoot", "tr", "td", "th",
		"figure", "figcaption", "video",
		"span", "div", "section", "article", "aside",
		"picture",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowAttrs("start", "type").OnElements("ol")

	p.AllowAttrs("src", "srcset", "sizes", "alt", "title", "width", "height", "loading").OnElements("img")
	p.AllowAttrs("srcset", "sizes", "media", "type").OnElements("source")
	p.AllowAttrs("src", "poster", "width", "height", "controls", "muted", "loop", "playsinline", "preload").OnElements("video")

	// src is the only attribute an iframe may keep, so an iframe whose
	// src fails the allow-list loses everything and is removed.
	p.AllowAttrs("src").Matching(embedSrc).OnElements("iframe")

	return p
}

// HTML sanitizes untrusted article markup down to the reader's
// allow-list: structural and inline text elements, images, video,
// and iframes from known embed providers. Scripts, event handlers,
// styles and unknown URL schemes are removed. Idempotent.
func HTML(s string) string {
	if s == "" {
		return ""
	}
	return article.Sanitize(s)
}
