package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/sarthakagrawal927/reader-backend/internal/projects"
	"github.com/sarthakagrawal927/reader-backend/internal/store"
)

// Sweeper repairs referential drift left behind by the
// non-transactional delete flows: articles holding ids of removed
// lists, and articles assigned to removed projects. Every repair is
// idempotent, so a sweep interrupted half-way just finishes on the
// next run.
type Sweeper struct {
	db       store.Store
	schedule string
	cron     *cron.Cron
}

func NewSweeper(db store.Store, schedule string) *Sweeper {
	return &Sweeper{db: db, schedule: schedule}
}

// Start registers the sweep with the scheduler.
func (s *Sweeper) Start() error {
	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			log.Error().Err(err).Msg("reconciliation sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	c.Start()
	s.cron = c
	log.Info().Str("schedule", s.schedule).Msg("reconciliation sweeper started")
	return nil
}

func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Report counts what one sweep touched.
type Report struct {
	Articles           int
	DanglingListIDs    int
	ReassignedArticles int
	DefaultsCreated    int
}

// Sweep scans every article once and batches the fixes.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	var rep Report

	knownLists, err := s.knownIDs(ctx, store.Lists)
	if err != nil {
		return rep, err
	}
	knownProjects, err := s.knownIDs(ctx, store.Projects)
	if err != nil {
		return rep, err
	}

	docs, err := s.db.Query(ctx, store.Articles)
	if err != nil {
		return rep, fmt.Errorf("scan articles: %w", err)
	}
	rep.Articles = len(docs)

	var ops []store.WriteOp
	ensured := make(map[string]bool)

	for _, doc := range docs {
		fields := make(map[string]any)

		ids := stringSlice(doc.Data["listIds"])
		kept := make([]string, 0, len(ids))
		for _, id := range ids {
			if knownLists[id] {
				kept = append(kept, id)
			}
		}
		if len(kept) != len(ids) {
			fields["listIds"] = kept
			rep.DanglingListIDs += len(ids) - len(kept)
		}

		owner, _ := doc.Data["ownerId"].(string)
		projectID, _ := doc.Data["projectId"].(string)
		// Ownerless legacy articles have no default project to move
		// to, so their project assignment is left alone.
		if owner != "" && projectID != "" && !knownProjects[projectID] {
			def := projects.DefaultID(owner)
			if !knownProjects[def] && !ensured[def] {
				ops = append(ops, store.WriteOp{
					Collection: store.Projects,
					ID:         def,
					Fields: map[string]any{
						"name":      "Default",
						"isDefault": true,
						"ownerId":   owner,
						"createdAt": store.ServerTimestamp,
						"updatedAt": store.ServerTimestamp,
					},
				})
				ensured[def] = true
				rep.DefaultsCreated++
			}
			if projectID != def {
				fields["projectId"] = def
				rep.ReassignedArticles++
			}
		}

		if len(fields) > 0 {
			fields["updatedAt"] = store.ServerTimestamp
			ops = append(ops, store.WriteOp{Collection: store.Articles, ID: doc.ID, Fields: fields})
		}
	}

	if len(ops) > 0 {
		if err := s.db.BatchWrite(ctx, ops); err != nil {
			return rep, fmt.Errorf("apply sweep: %w", err)
		}
	}

	log.Info().
		Int("articles", rep.Articles).
		Int("danglingListIds", rep.DanglingListIDs).
		Int("reassignedArticles", rep.ReassignedArticles).
		Int("defaultsCreated", rep.DefaultsCreated).
		Msg("reconciliation sweep complete")
	return rep, nil
}

func (s *Sweeper) knownIDs(ctx context.Context, col string) (map[string]bool, error) {
	docs, err := s.db.Query(ctx, col)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", col, err)
	}
	ids := make(map[string]bool, len(docs))
	for _, doc := range docs {
		ids[doc.ID] = true
	}
	return ids, nil
}

func stringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
