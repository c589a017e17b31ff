package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Record is what gets indexed per article: the searchable text plus
// the keyword fields results are filtered on.
type Record struct {
	ID        string
	OwnerID   string
	ProjectID string
	Title     string
	Byline    string
	Excerpt   string
	Text      string
	Tags      []string
}

// Result is one search hit.
type Result struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Byline    string  `json:"byline,omitempty"`
	Excerpt   string  `json:"excerpt,omitempty"`
	ProjectID string  `json:"projectId"`
	Score     float64 `json:"score"`
}

// Index wraps a Bleve search index.
type Index struct {
	index bleve.Index
}

// Open opens the index at path, creating it on first run.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &Index{index: idx}, nil
}

// OpenMemory builds an index that lives in process memory, used in
// tests and when no index path is configured.
func OpenMemory() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create memory index: %w", err)
	}
	return &Index{index: idx}, nil
}

// buildIndexMapping keeps owner and project as keyword fields for
// exact filtering and gives titles an English analyzer and a boost.
func buildIndexMapping() mapping.IndexMapping {
	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = "en"

	textField := bleve.NewTextFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("OwnerID", keywordField)
	docMapping.AddFieldMappingsAt("ProjectID", keywordField)
	docMapping.AddFieldMappingsAt("Title", titleField)
	docMapping.AddFieldMappingsAt("Byline", textField)
	docMapping.AddFieldMappingsAt("Excerpt", textField)
	docMapping.AddFieldMappingsAt("Text", textField)
	docMapping.AddFieldMappingsAt("Tags", keywordField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// Upsert adds or replaces one article in the index.
func (i *Index) Upsert(rec Record) error {
	return i.index.Index(rec.ID, rec)
}

// Delete removes an article from the index.
func (i *Index) Delete(id string) error {
	return i.index.Delete(id)
}

func (i *Index) Close() error {
	return i.index.Close()
}

// Search runs the scored query, always scoped to one owner.
func (i *Index) Search(ownerID, projectID, q string, limit int) ([]Result, error) {
	owner := bleve.NewTermQuery(ownerID)
	owner.SetField("OwnerID")

	boolean := bleve.NewBooleanQuery()
	boolean.AddMust(owner)

	if projectID != "" {
		project := bleve.NewTermQuery(projectID)
		project.SetField("ProjectID")
		boolean.AddMust(project)
	}

	title := bleve.NewMatchQuery(q)
	title.SetField("Title")
	title.SetBoost(3)

	text := bleve.NewMatchQuery(q)
	text.SetField("Text")

	byline := bleve.NewMatchQuery(q)
	byline.SetField("Byline")

	tags := bleve.NewMatchQuery(q)
	tags.SetField("Tags")

	boolean.AddMust(bleve.NewDisjunctionQuery(title, text, byline, tags))

	req := bleve.NewSearchRequestOptions(boolean, limit, 0, false)
	req.Fields = []string{"Title", "Byline", "Excerpt", "ProjectID"}

	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := Result{ID: hit.ID, Score: hit.Score}
		if title, ok := hit.Fields["Title"].(string); ok {
			r.Title = title
		}
		if byline, ok := hit.Fields["Byline"].(string); ok {
			r.Byline = byline
		}
		if excerpt, ok := hit.Fields["Excerpt"].(string); ok {
			r.Excerpt = excerpt
		}
		if projectID, ok := hit.Fields["ProjectID"].(string); ok {
			r.ProjectID = projectID
		}
		results = append(results, r)
	}
	return results, nil
}
