package articles

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sarthakagrawal927/reader-backend/internal/ai"
	"github.com/sarthakagrawal927/reader-backend/internal/sanitize"
	"github.com/sarthakagrawal927/reader-backend/internal/store"
)

var ErrNotFound = errors.New("article not found")

const maxExcerptRunes = 300

type Repo struct {
	db store.Store
}

func NewRepo(db store.Store) *Repo {
	return &Repo{db: db}
}

type CreateInput struct {
	URL       string
	Title     string
	Byline    string
	SiteName  string
	Excerpt   string
	Content   string
	Status    string
	ProjectID string
	ListIDs   []string
	Notes     []any
	Tags      []any
	Source    string
	PDFURL    string
	PageCount int
}

func (r *Repo) Create(ctx context.Context, ownerID string, in CreateInput) (*Article, error) {
	content := sanitize.HTML(in.Content)
	text := sanitize.PlainText(in.Content)

	excerpt := sanitize.Field(in.Excerpt, maxExcerptRunes)
	if excerpt == "" {
		excerpt = sanitize.Clamp(text, maxExcerptRunes)
	}

	a := Article{
		URL:         strings.TrimSpace(in.URL),
		Title:       NormalizeTitle(in.Title, "Untitled"),
		Byline:      sanitize.Field(in.Byline, MaxTitleRunes),
		SiteName:    sanitize.Field(in.SiteName, MaxTitleRunes),
		Excerpt:     excerpt,
		Content:     content,
		TextContent: text,
		Notes:       SanitizeNotes(in.Notes),
		Tags:        SanitizeTags(in.Tags),
		Status:      NormalizeStatus(in.Status),
		ProjectID:   strings.TrimSpace(in.ProjectID),
		ListIDs:     sanitizeListIDs(in.ListIDs),
		Source:      normalizeSource(in.Source),
		PDFURL:      in.PDFURL,
		PageCount:   in.PageCount,
		OwnerID:     ownerID,
	}

	data, err := store.DataFrom(a)
	if err != nil {
		return nil, fmt.Errorf("encode article: %w", err)
	}
	delete(data, "id")
	data["createdAt"] = store.ServerTimestamp
	data["updatedAt"] = store.ServerTimestamp

	id, err := r.db.Add(ctx, store.Articles, data)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return r.read(ctx, id)
}

// Get returns the article when it exists and the caller may see it.
// Both a missing id and someone else's article come back as
// ErrNotFound so existence is never leaked across accounts.
func (r *Repo) Get(ctx context.Context, id, callerUID string) (*Article, error) {
	return r.getOwned(ctx, id, callerUID)
}

type UpdateInput struct {
	Title        *string
	Byline       *string
	SiteName     *string
	Excerpt      *string
	Content      *string
	Status       *string
	ProjectID    *string
	ListIDs      *[]string
	Notes        *[]any
	Tags         *[]any
	ChatMessages *[]any
}

func (r *Repo) Update(ctx context.Context, id, callerUID string, in UpdateInput) (*Article, error) {
	a, err := r.getOwned(ctx, id, callerUID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{"updatedAt": store.ServerTimestamp}
	if in.Title != nil {
		fields["title"] = NormalizeTitle(*in.Title, a.Title)
	}
	if in.Byline != nil {
		fields["byline"] = sanitize.Field(*in.Byline, MaxTitleRunes)
	}
	if in.SiteName != nil {
		fields["siteName"] = sanitize.Field(*in.SiteName, MaxTitleRunes)
	}
	if in.Excerpt != nil {
		fields["excerpt"] = sanitize.Field(*in.Excerpt, maxExcerptRunes)
	}
	if in.Content != nil {
		fields["content"] = sanitize.HTML(*in.Content)
		fields["textContent"] = sanitize.PlainText(*in.Content)
	}
	if in.Status != nil {
		fields["status"] = NormalizeStatus(*in.Status)
	}
	if in.ProjectID != nil {
		fields["projectId"] = strings.TrimSpace(*in.ProjectID)
	}
	if in.ListIDs != nil {
		fields["listIds"] = sanitizeListIDs(*in.ListIDs)
	}
	if in.Notes != nil {
		fields["notes"] = notesData(SanitizeNotes(*in.Notes))
	}
	if in.Tags != nil {
		fields["tags"] = SanitizeTags(*in.Tags)
	}
	if in.ChatMessages != nil {
		fields["chatMessages"] = messagesData(ai.SanitizeMessages(*in.ChatMessages))
	}

	if err := r.db.Update(ctx, store.Articles, id, fields); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return r.read(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id, callerUID string) error {
	if _, err := r.getOwned(ctx, id, callerUID); err != nil {
		return err
	}
	if err := r.db.Delete(ctx, store.Articles, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// List returns the caller's article summaries, newest update first.
// projectID and listID narrow the result when non-empty.
func (r *Repo) List(ctx context.Context, ownerID, projectID, listID string) ([]Summary, error) {
	filters := []store.Filter{{Path: "ownerId", Op: "==", Value: ownerID}}
	if projectID != "" {
		filters = append(filters, store.Filter{Path: "projectId", Op: "==", Value: projectID})
	}
	if listID != "" {
		filters = append(filters, store.Filter{Path: "listIds", Op: "array-contains", Value: listID})
	}

	docs, err := r.db.Query(ctx, store.Articles, filters...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	summaries := make([]Summary, 0, len(docs))
	for _, doc := range docs {
		a, err := decode(doc)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, a.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// AddToList records list membership on the article. Adding an id that
// is already present is a no-op, so retried requests are safe.
func (r *Repo) AddToList(ctx context.Context, articleID, listID, callerUID string) (*Article, error) {
	a, err := r.getOwned(ctx, articleID, callerUID)
	if err != nil {
		return nil, err
	}
	for _, id := range a.ListIDs {
		if id == listID {
			return a, nil
		}
	}

	ids := append(append([]string{}, a.ListIDs...), listID)
	err = r.db.Update(ctx, store.Articles, articleID, map[string]any{
		"listIds":   ids,
		"updatedAt": store.ServerTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("add to list: %w", err)
	}
	return r.read(ctx, articleID)
}

func (r *Repo) RemoveFromList(ctx context.Context, articleID, listID, callerUID string) (*Article, error) {
	a, err := r.getOwned(ctx, articleID, callerUID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(a.ListIDs))
	for _, id := range a.ListIDs {
		if id != listID {
			ids = append(ids, id)
		}
	}
	if len(ids) == len(a.ListIDs) {
		return a, nil
	}

	err = r.db.Update(ctx, store.Articles, articleID, map[string]any{
		"listIds":   ids,
		"updatedAt": store.ServerTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("remove from list: %w", err)
	}
	return r.read(ctx, articleID)
}

// DistinctTags returns every tag on the caller's articles, sorted.
func (r *Repo) DistinctTags(ctx context.Context, ownerID string) ([]string, error) {
	docs, err := r.db.Query(ctx, store.Articles, store.Filter{Path: "ownerId", Op: "==", Value: ownerID})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	seen := make(map[string]struct{})
	for _, doc := range docs {
		a, err := decode(doc)
		if err != nil {
			return nil, err
		}
		for _, tag := range a.Tags {
			seen[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

func (r *Repo) getOwned(ctx context.Context, id, callerUID string) (*Article, error) {
	doc, err := r.db.Get(ctx, store.Articles, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}

	a, err := decode(doc)
	if err != nil {
		return nil, err
	}
	// Documents written before ownership tracking have no ownerId and
	// stay reachable by whoever holds their id.
	if a.OwnerID != "" && a.OwnerID != callerUID {
		return nil, ErrNotFound
	}
	return a, nil
}

// read fetches without an ownership check, for re-reading a document
// the caller was already cleared on.
func (r *Repo) read(ctx context.Context, id string) (*Article, error) {
	doc, err := r.db.Get(ctx, store.Articles, id)
	if err != nil {
		return nil, fmt.Errorf("read article: %w", err)
	}
	return decode(doc)
}

// normalizeSource collapses the save origin to the two known values.
func normalizeSource(raw string) string {
	if raw == "pdf" {
		return "pdf"
	}
	return "web"
}

func decode(doc store.Document) (*Article, error) {
	var a Article
	if err := store.DataTo(doc.Data, &a); err != nil {
		return nil, fmt.Errorf("decode article %s: %w", doc.ID, err)
	}
	a.ID = doc.ID
	a.ensureSlices()
	return &a, nil
}

// notesData and messagesData turn typed slices back into plain field
// values for a partial update.

func notesData(notes []Note) []any {
	out := make([]any, 0, len(notes))
	for _, n := range notes {
		m := map[string]any{"id": n.ID, "text": n.Text}
		if n.Anchor != nil {
			m["anchor"] = map[string]any{
				"elementIndex": n.Anchor.ElementIndex,
				"tagName":      n.Anchor.TagName,
				"textPreview":  n.Anchor.TextPreview,
			}
		}
		out = append(out, m)
	}
	return out
}

func messagesData(messages []ai.Message) []any {
	out := make([]any, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]any{"role": m.Role, "content": m.Content})
	}
	return out
}
