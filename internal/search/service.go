package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/sarthakagrawal927/reader-backend/internal/store"
)

const (
	// MinQueryRunes is the shortest query that returns results.
	MinQueryRunes = 2
	// MaxResults caps one search response.
	MaxResults = 50
)

// Service answers article searches. It prefers the Bleve index and
// falls back to scanning the article store when no index is available,
// so search keeps working on deployments without a persistent index
// volume.
type Service struct {
	idx *Index
	db  store.Store
}

func NewService(idx *Index, db store.Store) *Service {
	return &Service{idx: idx, db: db}
}

// Index adds or refreshes one article in the index. Index failures
// are logged, never surfaced: a save must not fail because search is
// behind.
func (s *Service) Index(rec Record) {
	if s == nil || s.idx == nil {
		return
	}
	if err := s.idx.Upsert(rec); err != nil {
		log.Warn().Err(err).Str("article", rec.ID).Msg("failed to index article")
	}
}

// Remove drops one article from the index.
func (s *Service) Remove(id string) {
	if s == nil || s.idx == nil {
		return
	}
	if err := s.idx.Delete(id); err != nil {
		log.Warn().Err(err).Str("article", id).Msg("failed to remove article from index")
	}
}

// Search returns the owner's matching articles, optionally scoped to a
// project. Queries shorter than MinQueryRunes return an empty slice.
func (s *Service) Search(ctx context.Context, ownerID, q, projectID string) ([]Result, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinQueryRunes {
		return []Result{}, nil
	}

	if s.idx != nil {
		results, err := s.idx.Search(ownerID, projectID, q, MaxResults)
		if err == nil {
			return results, nil
		}
		log.Warn().Err(err).Msg("index search failed, falling back to store scan")
	}

	return s.scan(ctx, ownerID, q, projectID)
}

// scan is the indexless fallback: a case-insensitive substring match
// over the owner's articles.
func (s *Service) scan(ctx context.Context, ownerID, q, projectID string) ([]Result, error) {
	filters := []store.Filter{{Path: "ownerId", Op: "==", Value: ownerID}}
	if projectID != "" {
		filters = append(filters, store.Filter{Path: "projectId", Op: "==", Value: projectID})
	}

	docs, err := s.db.Query(ctx, store.Articles, filters...)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(q)
	results := make([]Result, 0)
	for _, doc := range docs {
		title, _ := doc.Data["title"].(string)
		byline, _ := doc.Data["byline"].(string)
		excerpt, _ := doc.Data["excerpt"].(string)
		text, _ := doc.Data["textContent"].(string)

		if !containsFold(title, needle) && !containsFold(byline, needle) &&
			!containsFold(text, needle) && !tagMatch(doc.Data["tags"], needle) {
			continue
		}

		project, _ := doc.Data["projectId"].(string)
		results = append(results, Result{
			ID:        doc.ID,
			Title:     title,
			Byline:    byline,
			Excerpt:   excerpt,
			ProjectID: project,
		})
		if len(results) >= MaxResults {
			break
		}
	}
	return results, nil
}

// containsFold reports whether s contains needle, with needle already
// lowercased.
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}

func tagMatch(tags any, needle string) bool {
	switch raw := tags.(type) {
	case []any:
		for _, t := range raw {
			if tag, ok := t.(string); ok && containsFold(tag, needle) {
				return true
			}
		}
	case []string:
		for _, tag := range raw {
			if containsFold(tag, needle) {
				return true
			}
		}
	}
	return false
}
