package location

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zipmap/zip-api/internal/pkg/kakao"
)

type fakeSearcher struct {
	mu    sync.Mutex
	calls int
	hits  []kakao.Place
	err   error
}

func (f *fakeSearcher) Search(context.Context, string) ([]kakao.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.hits, f.err
}

type memoryCache struct {
	entries map[string][]Place
}

func (c *memoryCache) Get(_ context.Context, query string) ([]Place, bool, error) {
	places, ok := c.entries[query]
	return places, ok, nil
}

func (c *memoryCache) Set(_ context.Context, query string, places []Place) error {
	c.entries[query] = places
	return nil
}

type memoryRepo struct {
	nextID int64
	rows   []*Location
}

func (m *memoryRepo) ResolveOrCreate(_ context.Context, loc *Location) (int64, error) {
	for _, row := range m.rows {
		if row.Name == loc.Name && row.Address == loc.Address {
			return row.ID, nil
		}
	}
	m.nextID++
	stored := *loc
	stored.ID = m.nextID
	m.rows = append(m.rows, &stored)
	return stored.ID, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*Location, error) {
	for _, row := range m.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, ErrLocationNotFound
}

func (m *memoryRepo) List(context.Context) ([]*Location, error) {
	return m.rows, nil
}

func TestSearchMapsPlacesInOrder(t *testing.T) {
	searcher := &fakeSearcher{hits: []kakao.Place{
		{Name: "영남대역", Address: "경북 경산시", Latitude: 35.83, Longitude: 128.75},
		{Name: "카페", Address: "경북 경산시 1", Latitude: 35.84, Longitude: 128.76},
	}}
	svc := NewService(&memoryRepo{}, searcher, nil)

	places, err := svc.Search(context.Background(), "영남대역")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(places) != 2 || places[0].Name != "영남대역" || places[1].Name != "카페" {
		t.Fatalf("unexpected places: %+v", places)
	}
}

func TestSearchNoResultsIsExternalServiceError(t *testing.T) {
	svc := NewService(&memoryRepo{}, &fakeSearcher{hits: []kakao.Place{}}, nil)

	_, err := svc.Search(context.Background(), "nowhere")
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("ErrNoResults should also be ErrExternalService, got %v", err)
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	upstream := &kakao.StatusError{StatusCode: 500, Body: "oops"}
	svc := NewService(&memoryRepo{}, &fakeSearcher{err: upstream}, nil)

	_, err := svc.Search(context.Background(), "q")
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if errors.Is(err, ErrNoResults) {
		t.Fatalf("upstream failure must not be ErrNoResults")
	}
	var statusErr *kakao.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 500 {
		t.Fatalf("expected wrapped StatusError, got %v", err)
	}
}

func TestSearchUsesCache(t *testing.T) {
	searcher := &fakeSearcher{hits: []kakao.Place{{Name: "p", Address: "a", Latitude: 1, Longitude: 2}}}
	cache := &memoryCache{entries: map[string][]Place{}}
	svc := NewService(&memoryRepo{}, searcher, cache)

	for i := 0; i < 3; i++ {
		if _, err := svc.Search(context.Background(), " p "); err != nil {
			t.Fatalf("Search: %v", err)
		}
	}
	if searcher.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", searcher.calls)
	}
	if _, ok := cache.entries["p"]; !ok {
		t.Fatalf("expected trimmed query cached, got %v", cache.entries)
	}
}

func TestSearchFailuresAreNotCached(t *testing.T) {
	searcher := &fakeSearcher{hits: []kakao.Place{}}
	cache := &memoryCache{entries: map[string][]Place{}}
	svc := NewService(&memoryRepo{}, searcher, cache)

	_, _ = svc.Search(context.Background(), "q")
	_, _ = svc.Search(context.Background(), "q")
	if searcher.calls != 2 {
		t.Fatalf("expected two upstream calls, got %d", searcher.calls)
	}
}

func TestResolveOrCreateFirstWriteWins(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, &fakeSearcher{}, nil)
	ctx := context.Background()

	first, err := svc.ResolveOrCreate(ctx, "영남대역", "경북 경산시", 35.83, 128.75)
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	second, err := svc.ResolveOrCreate(ctx, "영남대역", "경북 경산시", 0, 0)
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if first != second {
		t.Fatalf("expected same id, got %d and %d", first, second)
	}

	loc, err := svc.GetByID(ctx, first)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if loc.Latitude != 35.83 {
		t.Fatalf("coordinates overwritten: %+v", loc)
	}
}

// blockingSearcher holds every call until release is closed and records
// whether the context it ran with was cancelled meanwhile.
type blockingSearcher struct {
	started chan struct{}
	release chan struct{}

	mu        sync.Mutex
	calls     int
	cancelled bool
}

func (b *blockingSearcher) Search(ctx context.Context, _ string) ([]kakao.Place, error) {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.mu.Unlock()
	if first {
		close(b.started)
	}

	<-b.release
	if ctx.Err() != nil {
		b.mu.Lock()
		b.cancelled = true
		b.mu.Unlock()
		return nil, ctx.Err()
	}
	return []kakao.Place{{Name: "영남대역", Address: "경북 경산시"}}, nil
}

func TestSearchSharedCallSurvivesFirstCallerCancel(t *testing.T) {
	searcher := &blockingSearcher{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(&memoryRepo{}, searcher, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Search(firstCtx, "영남대역")
		firstErr <- err
	}()
	<-searcher.started

	type result struct {
		places []Place
		err    error
	}
	second := make(chan result, 1)
	go func() {
		places, err := svc.Search(context.Background(), "영남대역")
		second <- result{places, err}
	}()

	cancelFirst()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled for the cancelled caller, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(searcher.release)
	select {
	case res := <-second:
		if res.err != nil {
			t.Fatalf("second caller failed: %v", res.err)
		}
		if len(res.places) != 1 || res.places[0].Name != "영남대역" {
			t.Fatalf("unexpected places %+v", res.places)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not return")
	}

	searcher.mu.Lock()
	defer searcher.mu.Unlock()
	if searcher.cancelled {
		t.Fatal("upstream call ran on the cancelled caller's context")
	}
}
