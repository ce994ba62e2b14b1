package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rpupo63/portfolio-site-backend/metrics"
)

// OrphanSweeper removes stored images that no row references. Files younger than
// grace are kept so an upload whose transaction is still running survives.
type OrphanSweeper struct {
	db     database.Database
	store  media.Store
	grace  time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

func NewOrphanSweeper(db database.Database, store media.Store, grace time.Duration) *OrphanSweeper {
	return &OrphanSweeper{
		db:     db,
		store:  store,
		grace:  grace,
		now:    time.Now,
		logger: log.With().Str("component", "orphan-sweeper").Logger(),
	}
}

// Sweep returns the number of files removed.
func (s *OrphanSweeper) Sweep(ctx context.Context) (int, error) {
	projectImages, err := s.db.ProjectRepo().ImageFilenames(ctx)
	if err != nil {
		return 0, errs.NewDatabaseError("fetch", "project images", err)
	}
	profileImages, err := s.db.UserRepo().ProfileImages(ctx)
	if err != nil {
		return 0, errs.NewDatabaseError("fetch", "profile images", err)
	}

	removed := 0
	for folder, referenced := range map[string][]string{
		media.ProjectsFolder: projectImages,
		media.ProfilesFolder: profileImages,
	} {
		n, err := s.sweepFolder(ctx, folder, referenced)
		removed += n
		if err != nil {
			return removed, err
		}
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("orphaned images removed")
	}
	return removed, nil
}

func (s *OrphanSweeper) sweepFolder(ctx context.Context, folder string, referenced []string) (int, error) {
	files, err := s.store.List(ctx, folder)
	if err != nil {
		return 0, err
	}

	keep := lo.Associate(referenced, func(name string) (string, struct{}) {
		return name, struct{}{}
	})
	cutoff := s.now().Add(-s.grace)

	removed := 0
	for _, f := range files {
		if _, ok := keep[f.Name]; ok || f.ModTime.After(cutoff) {
			continue
		}
		if err := s.store.Remove(ctx, folder, f.Name); err != nil {
			s.logger.Warn().Err(err).Str("folder", folder).Str("file", f.Name).Msg("failed to remove orphaned image")
			continue
		}
		metrics.OrphansRemoved.Inc()
		removed++
	}
	return removed, nil
}
