package service

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/giftgenius/internal/apperr"
	"github.com/user/giftgenius/internal/catalog"
	"github.com/user/giftgenius/internal/logger"
	"github.com/user/giftgenius/internal/model"
	"github.com/user/giftgenius/internal/repository"
	"github.com/user/giftgenius/internal/utils"
)

var testCategories = []string{"jewelry", "tech", "home", "fashion", "beauty", "food", "experiences", "unique"}

func newTestCatalog(t *testing.T, strict bool) (*CatalogService, *repository.Repositories) {
	t.Helper()
	utils.InitCache(time.Minute)
	repos := repository.NewMemoryRepositories(catalog.ModePrecomputed)
	if _, err := repository.Seed(context.Background(), repos); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewCatalogService(repos, NewLocalResultCache(100, time.Minute), CatalogOptions{
		Categories:   testCategories,
		DefaultLimit: 20,
		Strict:       strict,
	}, logger.Nop())
	stats := NewStatsService(repos, svc, StatsOptions{Mode: catalog.ModePrecomputed, Interval: time.Hour}, logger.Nop())
	if err := stats.RefreshSuccessRates(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return svc, repos
}

func TestParseQueryStrictMode(t *testing.T) {
	lenient, _ := newTestCatalog(t, false)
	strict, _ := newTestCatalog(t, true)
	values := url.Values{"category": {"weapons"}, "minPrice": {"abc"}, "sortBy": {"random"}, "limit": {"500"}}

	q, err := lenient.ParseQuery(values)
	if err != nil {
		t.Fatalf("lenient mode must not fail: %v", err)
	}
	if q.Filter.Category != "" || q.Filter.MinPrice != nil || q.SortBy != catalog.DefaultSort || q.Limit != 100 {
		t.Fatalf("unexpected lenient query: %+v", q)
	}

	_, err = strict.ParseQuery(values)
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Status() != 400 {
		t.Fatalf("expected 400 validation error, got %v", err)
	}
	problems, ok := ae.Details.([]catalog.FieldError)
	if !ok || len(problems) != 3 {
		t.Fatalf("expected 3 field errors, got %#v", ae.Details)
	}

	if _, err := strict.ParseQuery(url.Values{"limit": {"500"}, "offset": {"-3"}}); err != nil {
		t.Fatalf("clamping is not a validation error in strict mode: %v", err)
	}
}

func TestListGiftsUsesCache(t *testing.T) {
	svc, repos := newTestCatalog(t, false)
	ctx := context.Background()
	q, _ := svc.ParseQuery(url.Values{"category": {"jewelry"}})

	first, err := svc.ListGifts(ctx, q)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if first.Total != 3 || len(first.Gifts) != 3 {
		t.Fatalf("expected 3 jewelry gifts, got %d/%d", first.Total, len(first.Gifts))
	}

	// 新增礼物在缓存失效前不可见
	if err := repos.Gift.Create(ctx, []*model.Gift{{Title: "Gold Hoops", Category: "jewelry", Price: 70, IsActive: true}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	cached, err := svc.ListGifts(ctx, q)
	if err != nil || cached.Total != 3 {
		t.Fatalf("expected cached total 3, got %d (%v)", cached.Total, err)
	}

	svc.InvalidateCache(ctx)
	fresh, err := svc.ListGifts(ctx, q)
	if err != nil || fresh.Total != 4 {
		t.Fatalf("expected fresh total 4, got %d (%v)", fresh.Total, err)
	}
}

type countingStore struct {
	repository.GiftStore
	finds atomic.Int32
	gate  chan struct{}
}

func (c *countingStore) Find(ctx context.Context, f catalog.Filter, sortBy catalog.SortKey, limit, offset int) ([]model.Gift, error) {
	c.finds.Add(1)
	<-c.gate
	return c.GiftStore.Find(ctx, f, sortBy, limit, offset)
}

func TestListGiftsCollapsesConcurrentQueries(t *testing.T) {
	repos := repository.NewMemoryRepositories(catalog.ModePrecomputed)
	if _, err := repository.Seed(context.Background(), repos); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := &countingStore{GiftStore: repos.Gift, gate: make(chan struct{})}
	repos.Gift = store
	svc := NewCatalogService(repos, nil, CatalogOptions{Categories: testCategories, DefaultLimit: 20}, logger.Nop())
	q, _ := svc.ParseQuery(url.Values{})

	const callers = 8
	var wg sync.WaitGroup
	var started sync.WaitGroup
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			if _, err := svc.ListGifts(context.Background(), q); err != nil {
				t.Errorf("list: %v", err)
			}
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(store.gate)
	wg.Wait()

	if n := store.finds.Load(); n < 1 || n >= callers {
		t.Fatalf("expected concurrent queries to be collapsed, store saw %d finds", n)
	}
}

type failingStore struct {
	repository.GiftStore
	err error
}

func (f failingStore) Count(context.Context, catalog.Filter) (int64, error) { return 0, f.err }

func TestListGiftsClassifiesStoreErrors(t *testing.T) {
	repos := repository.NewMemoryRepositories(catalog.ModePrecomputed)
	cases := []struct {
		err    error
		status int
		retry  bool
	}{
		{errors.New("database is locked"), 503, true},
		{errors.New("disk I/O error"), 500, false},
		{context.DeadlineExceeded, 504, false},
	}
	for _, tc := range cases {
		repos.Gift = failingStore{GiftStore: repository.NewMemoryStore(catalog.ModePrecomputed), err: tc.err}
		svc := NewCatalogService(repos, nil, CatalogOptions{Categories: testCategories}, logger.Nop())
		_, err := svc.ListGifts(context.Background(), catalog.Query{SortBy: catalog.DefaultSort, Limit: 20})
		var ae *apperr.Error
		if !errors.As(err, &ae) {
			t.Fatalf("%v: expected apperr, got %v", tc.err, err)
		}
		if ae.Status() != tc.status || ae.Retry != tc.retry {
			t.Fatalf("%v: got status=%d retry=%v", tc.err, ae.Status(), ae.Retry)
		}
	}
}

func TestGetGift(t *testing.T) {
	svc, _ := newTestCatalog(t, false)
	ctx := context.Background()

	detail, err := svc.GetGift(ctx, 1)
	if err != nil {
		t.Fatalf("get gift: %v", err)
	}
	if detail.Gift.ID != 1 || len(detail.Testimonials) != 3 {
		t.Fatalf("unexpected detail: gift=%d testimonials=%d", detail.Gift.ID, len(detail.Testimonials))
	}
	if len(detail.SimilarGifts) != 2 {
		t.Fatalf("expected 2 similar gifts, got %d", len(detail.SimilarGifts))
	}
	for _, g := range detail.SimilarGifts {
		if g.ID == 1 || g.Category != detail.Gift.Category {
			t.Fatalf("unexpected similar gift %+v", g)
		}
	}

	_, err = svc.GetGift(ctx, 4242)
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != "GIFT_NOT_FOUND" || ae.Status() != 404 {
		t.Fatalf("expected GIFT_NOT_FOUND, got %v", err)
	}
}

func TestCategoryStatsCached(t *testing.T) {
	svc, repos := newTestCatalog(t, false)
	ctx := context.Background()

	stats, err := svc.CategoryStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 8 {
		t.Fatalf("expected 8 categories, got %d", len(stats))
	}
	if err := repos.Gift.Create(ctx, []*model.Gift{{Title: "Board Game", Category: "games", Price: 30, IsActive: true}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	again, _ := svc.CategoryStats(ctx)
	if len(again) != 8 {
		t.Fatalf("expected cached stats, got %d categories", len(again))
	}
}

func TestRefreshSuccessRates(t *testing.T) {
	svc, repos := newTestCatalog(t, false)
	ctx := context.Background()

	g, err := repos.Gift.FindByID(ctx, 1)
	if err != nil || g == nil {
		t.Fatalf("find: %v", err)
	}
	// 3 条评价全部 >= 4
	if g.SuccessRate != 100 || g.TotalReviews != 3 {
		t.Fatalf("unexpected stats for gift 1: %d/%d", g.SuccessRate, g.TotalReviews)
	}

	// 没有评价的礼物成功率为 0
	q, _ := svc.ParseQuery(url.Values{"search": {"smart mug"}})
	res, err := svc.ListGifts(ctx, q)
	if err != nil || len(res.Gifts) != 1 {
		t.Fatalf("expected smart mug, got %v (%v)", res.Gifts, err)
	}
	if res.Gifts[0].SuccessRate != 0 || res.Gifts[0].TotalReviews != 0 {
		t.Fatalf("gift without testimonials must have zero stats, got %+v", res.Gifts[0])
	}

	err = repos.Testimonial.Create(ctx, []*model.Testimonial{{GiftID: 1, PartnerRating: 1}})
	if err != nil {
		t.Fatalf("create testimonial: %v", err)
	}
	stats := NewStatsService(repos, svc, StatsOptions{Mode: catalog.ModePrecomputed, Interval: time.Hour}, logger.Nop())
	stats.RunOnce(ctx)
	g, _ = repos.Gift.FindByID(ctx, 1)
	if g.SuccessRate != 75 || g.TotalReviews != 4 {
		t.Fatalf("expected 75/4 after refresh, got %d/%d", g.SuccessRate, g.TotalReviews)
	}
}

func TestStatsServiceStartStop(t *testing.T) {
	repos := repository.NewMemoryRepositories(catalog.ModePrecomputed)
	giftID := uint(1)
	if err := repos.Analytics.Record(context.Background(), &model.AnalyticsEvent{
		ID: "old", EventType: "gift_view", GiftID: &giftID, SessionID: "s", CreatedAt: time.Now().AddDate(0, 0, -10),
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	stats := NewStatsService(repos, nil, StatsOptions{Mode: catalog.ModePrecomputed, Interval: 10 * time.Millisecond, RetentionDays: 7}, logger.Nop())
	stats.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	stats.Stop()
	stats.Stop()

	mem := repos.Analytics.(*repository.MemoryStore)
	if n := len(mem.Events()); n != 0 {
		t.Fatalf("expected expired events to be removed, %d left", n)
	}
}

func TestTrackAndMarkHelpful(t *testing.T) {
	_, repos := newTestCatalog(t, false)
	svc := NewAnalyticsService(repos, logger.Nop())
	ctx := context.Background()

	giftID := uint(2)
	id, ok := svc.Track(ctx, TrackEvent{EventType: "gift_click", GiftID: &giftID, SessionID: "abc", Metadata: map[string]interface{}{"source": "grid"}})
	if !ok || len(id) != 36 {
		t.Fatalf("expected uuid event id, got %q ok=%v", id, ok)
	}
	events := repos.Analytics.(*repository.MemoryStore).Events()
	if len(events) != 1 || string(events[0].Metadata) != `{"source":"grid"}` {
		t.Fatalf("unexpected events %+v", events)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, ok := svc.Track(cancelled, TrackEvent{EventType: "gift_click", SessionID: "abc"}); ok {
		t.Fatalf("expected soft failure on store error")
	}

	list, _ := repos.Testimonial.ListByGift(ctx, 1)
	votes, err := svc.MarkHelpful(ctx, list[0].ID)
	if err != nil || votes != list[0].HelpfulVotes+1 {
		t.Fatalf("expected %d votes, got %d (%v)", list[0].HelpfulVotes+1, votes, err)
	}
	_, err = svc.MarkHelpful(ctx, 9999)
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != "TESTIMONIAL_NOT_FOUND" {
		t.Fatalf("expected TESTIMONIAL_NOT_FOUND, got %v", err)
	}
}

type slowStore struct {
	repository.GiftStore
	delay   time.Duration
	started chan struct{}
	once    sync.Once
}

func (s *slowStore) Find(ctx context.Context, f catalog.Filter, sortBy catalog.SortKey, limit, offset int) ([]model.Gift, error) {
	s.once.Do(func() { close(s.started) })
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.GiftStore.Find(ctx, f, sortBy, limit, offset)
}

func TestListGiftsSurvivesFirstCallerCancel(t *testing.T) {
	repos := repository.NewMemoryRepositories(catalog.ModePrecomputed)
	if _, err := repository.Seed(context.Background(), repos); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := &slowStore{GiftStore: repos.Gift, delay: 100 * time.Millisecond, started: make(chan struct{})}
	repos.Gift = store
	svc := NewCatalogService(repos, nil, CatalogOptions{Categories: testCategories, DefaultLimit: 20, QueryTimeout: time.Second}, logger.Nop())
	q, _ := svc.ParseQuery(url.Values{})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.ListGifts(firstCtx, q)
		firstErr <- err
	}()
	<-store.started

	type result struct {
		res catalog.Result
		err error
	}
	second := make(chan result, 1)
	go func() {
		res, err := svc.ListGifts(context.Background(), q)
		second <- result{res, err}
	}()
	time.Sleep(20 * time.Millisecond)
	cancelFirst()

	if err := <-firstErr; err == nil {
		t.Fatalf("cancelled caller should return an error")
	}
	r := <-second
	if r.err != nil {
		t.Fatalf("caller with a live context failed: %v", r.err)
	}
	if r.res.Total != 16 || len(r.res.Gifts) != 16 {
		t.Fatalf("expected full result, got total=%d len=%d", r.res.Total, len(r.res.Gifts))
	}
}

func TestListGiftsSharedQueryTimeout(t *testing.T) {
	repos := repository.NewMemoryRepositories(catalog.ModePrecomputed)
	store := &slowStore{GiftStore: repos.Gift, delay: time.Second, started: make(chan struct{})}
	repos.Gift = store
	svc := NewCatalogService(repos, nil, CatalogOptions{Categories: testCategories, QueryTimeout: 30 * time.Millisecond}, logger.Nop())

	_, err := svc.ListGifts(context.Background(), catalog.Query{SortBy: catalog.DefaultSort, Limit: 20})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Status() != 504 {
		t.Fatalf("expected 504 from the shared query deadline, got %v", err)
	}
}
