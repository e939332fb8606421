package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zipmap/zip-api/internal/pkg/kakao"
	"github.com/zipmap/zip-api/internal/pkg/logger"
)

// sharedSearchTimeout bounds an upstream call that outlives the request
// which started it
const sharedSearchTimeout = 15 * time.Second

// Searcher queries an external place search provider
type Searcher interface {
	Search(ctx context.Context, query string) ([]kakao.Place, error)
}

// Service resolves free-text queries into places and places into stored locations
type Service struct {
	repo     Repository
	searcher Searcher
	cache    SearchCache // nil if Redis disabled
	group    singleflight.Group
}

// NewService creates location service
func NewService(repo Repository, searcher Searcher, cache SearchCache) *Service {
	return &Service{repo: repo, searcher: searcher, cache: cache}
}

// Search returns candidate places for query in provider order.
// Provider failures are reported as ErrExternalService and are not retried.
func (s *Service) Search(ctx context.Context, query string) ([]Place, error) {
	query = strings.TrimSpace(query)

	if s.cache != nil {
		places, ok, err := s.cache.Get(ctx, query)
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("query", query).Msg("Place search cache read failed")
		} else if ok {
			searchCacheHits.Inc()
			searchTotal.WithLabelValues("ok").Inc()
			return places, nil
		}
	}

	// identical concurrent queries share one upstream call. The call runs on
	// a context detached from any single caller so one cancelled request
	// cannot fail the others waiting on it.
	ch := s.group.DoChan(query, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedSearchTimeout)
		defer cancel()
		return s.searchUpstream(callCtx, query)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		searchTotal.WithLabelValues("cancelled").Inc()
		return nil, ctx.Err()
	case res = <-ch:
	}

	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, ErrNoResults) {
			searchTotal.WithLabelValues("no_results").Inc()
		} else {
			searchTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	places := v.([]Place)
	searchTotal.WithLabelValues("ok").Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, query, places); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("query", query).Msg("Place search cache write failed")
		}
	}
	return places, nil
}

func (s *Service) searchUpstream(ctx context.Context, query string) ([]Place, error) {
	start := time.Now()
	hits, err := s.searcher.Search(ctx, query)
	searchUpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExternalService, err)
	}
	if len(hits) == 0 {
		return nil, ErrNoResults
	}

	places := make([]Place, 0, len(hits))
	for _, h := range hits {
		places = append(places, Place{
			Name:      h.Name,
			Address:   h.Address,
			Latitude:  h.Latitude,
			Longitude: h.Longitude,
		})
	}
	return places, nil
}

// ResolveOrCreate returns the id of the location stored for (name, address).
// When the pair already exists the stored coordinates are kept.
func (s *Service) ResolveOrCreate(ctx context.Context, name, address string, latitude, longitude float64) (int64, error) {
	id, err := s.repo.ResolveOrCreate(ctx, &Location{
		Name:      name,
		Address:   address,
		Latitude:  latitude,
		Longitude: longitude,
	})
	if err != nil {
		return 0, err
	}
	logger.FromContext(ctx).Debug().Int64("location_id", id).Str("name", name).Msg("Location resolved")
	return id, nil
}

// GetByID returns a stored location
func (s *Service) GetByID(ctx context.Context, id int64) (*Location, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all stored locations
func (s *Service) List(ctx context.Context) ([]*Location, error) {
	return s.repo.List(ctx)
}
