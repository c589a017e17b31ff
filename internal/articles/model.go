package articles

import (
	"time"

	"github.com/sarthakagrawal927/reader-backend/internal/ai"
)

// Anchor pins a note to a place in the rendered article.
type Anchor struct {
	ElementIndex int    `json:"elementIndex"`
	TagName      string `json:"tagName,omitempty"`
	TextPreview  string `json:"textPreview,omitempty"`
}

// Note is a highlight or comment on an article. ID is kept exactly as
// the client sent it (string or number) so round trips don't change
// its type.
type Note struct {
	ID     any     `json:"id"`
	Text   string  `json:"text"`
	Anchor *Anchor `json:"anchor,omitempty"`
}

// Article is a saved page or uploaded PDF together with everything the
// reader attaches to it.
type Article struct {
	ID           string       `json:"id"`
	URL          string       `json:"url"`
	Title        string       `json:"title"`
	Byline       string       `json:"byline,omitempty"`
	SiteName     string       `json:"siteName,omitempty"`
	Excerpt      string       `json:"excerpt,omitempty"`
	Content      string       `json:"content,omitempty"`
	TextContent  string       `json:"textContent,omitempty"`
	Notes        []Note       `json:"notes"`
	Tags         []string     `json:"tags"`
	ChatMessages []ai.Message `json:"chatMessages,omitempty"`
	Status       string       `json:"status"`
	ProjectID    string       `json:"projectId"`
	ListIDs      []string     `json:"listIds"`
	Source       string       `json:"source,omitempty"`
	PDFURL       string       `json:"pdfUrl,omitempty"`
	PageCount    int          `json:"pageCount,omitempty"`
	OwnerID      string       `json:"ownerId"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Summary is the listing shape: everything except the heavy content
// fields.
type Summary struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Byline    string    `json:"byline,omitempty"`
	SiteName  string    `json:"siteName,omitempty"`
	Excerpt   string    `json:"excerpt,omitempty"`
	NoteCount int       `json:"noteCount"`
	Tags      []string  `json:"tags"`
	Status    string    `json:"status"`
	ProjectID string    `json:"projectId"`
	ListIDs   []string  `json:"listIds"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary flattens the article for list responses.
func (a *Article) Summary() Summary {
	return Summary{
		ID:        a.ID,
		URL:       a.URL,
		Title:     a.Title,
		Byline:    a.Byline,
		SiteName:  a.SiteName,
		Excerpt:   a.Excerpt,
		NoteCount: len(a.Notes),
		Tags:      a.Tags,
		Status:    a.Status,
		ProjectID: a.ProjectID,
		ListIDs:   a.ListIDs,
		Source:    a.Source,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// ensureSlices swaps nils for empty slices so JSON responses carry []
// instead of null.
func (a *Article) ensureSlices() {
	if a.Notes == nil {
		a.Notes = []Note{}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.ListIDs == nil {
		a.ListIDs = []string{}
	}
}
