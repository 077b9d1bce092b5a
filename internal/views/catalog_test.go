package views

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"library-web/internal/api"
	"library-web/internal/models"
	"library-web/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pagedReader() *bookReaderMock {
	return &bookReaderMock{
		listFn: func(q models.BookQuery) (*models.BookPage, error) {
			switch q.Page {
			case 0:
				return &models.BookPage{Items: summaries("1", "2"), Page: 0, HasNext: true}, nil
			case 1:
				return &models.BookPage{Items: summaries("3", "4"), Page: 1, HasNext: false}, nil
			}
			return &models.BookPage{Page: q.Page}, nil
		},
		getFn: func(id string) (*models.Book, error) {
			return &models.Book{ID: id, Title: "Book " + id, Status: models.BookAvailable}, nil
		},
	}
}

func ids(books []models.BookSummary) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

func TestCatalogView_QueryEncoding(t *testing.T) {
	reader := pagedReader()
	v := NewCatalogView(reader, &orderPlacerMock{}, zerolog.Nop())

	v.SetFilters(context.Background(), Filters{Year: "2001", Sort: "author"})

	require.Equal(t, 1, reader.queryCount())
	q := reader.queries[0]
	assert.Equal(t, CatalogPageSize, q.Size)
	assert.Equal(t, "page=0&size=12&year=2001&sort=author", services.EncodeBookQuery(q))
}

func TestCatalogView_LoadMoreAppendsAndFilterResets(t *testing.T) {
	reader := pagedReader()
	v := NewCatalogView(reader, &orderPlacerMock{}, zerolog.Nop())
	ctx := context.Background()

	v.Show(ctx, DefaultFilters())
	assert.Equal(t, []string{"1", "2"}, ids(v.Snapshot().Books))

	v.LoadMore(ctx)
	snap := v.Snapshot()
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(snap.Books))
	assert.Equal(t, 1, snap.Page)
	assert.False(t, snap.HasNext)
	assert.Equal(t, 1, reader.queries[1].Page)

	v.LoadMore(ctx)
	assert.Equal(t, 2, reader.queryCount(), "no further page without hasNext")

	v.SetFilters(ctx, Filters{Category: "Poetry", Sort: "year"})
	snap = v.Snapshot()
	assert.Equal(t, []string{"1", "2"}, ids(snap.Books))
	assert.Equal(t, 0, snap.Page)
	assert.Equal(t, 0, reader.queries[2].Page)
	assert.Equal(t, "Poetry", reader.queries[2].Category)
}

func TestCatalogView_ShowSkipsReloadForSameFilters(t *testing.T) {
	reader := pagedReader()
	v := NewCatalogView(reader, &orderPlacerMock{}, zerolog.Nop())
	ctx := context.Background()

	v.Show(ctx, Filters{Sort: "title"})
	v.Show(ctx, Filters{Sort: ""})
	assert.Equal(t, 1, reader.queryCount())

	v.Show(ctx, Filters{Sort: "year"})
	assert.Equal(t, 2, reader.queryCount())
}

func TestCatalogView_LoadFailure(t *testing.T) {
	reader := &bookReaderMock{listFn: func(q models.BookQuery) (*models.BookPage, error) {
		return nil, errors.New("connection refused")
	}}
	v := NewCatalogView(reader, &orderPlacerMock{}, zerolog.Nop())

	v.SetFilters(context.Background(), DefaultFilters())

	snap := v.Snapshot()
	assert.Equal(t, MsgCatalogLoadFailed, snap.Error)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Books)
}

func TestCatalogView_LatestFilterWins(t *testing.T) {
	release := make(chan struct{})
	reader := &bookReaderMock{listFn: func(q models.BookQuery) (*models.BookPage, error) {
		if q.Author == "slow" {
			<-release
			return &models.BookPage{Items: summaries("stale")}, nil
		}
		return &models.BookPage{Items: summaries("fresh")}, nil
	}}
	v := NewCatalogView(reader, &orderPlacerMock{}, zerolog.Nop())
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		v.SetFilters(ctx, Filters{Author: "slow"})
		close(done)
	}()
	require.Eventually(t, func() bool { return reader.queryCount() == 1 }, time.Second, 5*time.Millisecond)

	v.SetFilters(ctx, Filters{Author: "fast"})
	close(release)
	<-done

	snap := v.Snapshot()
	assert.Equal(t, []string{"fresh"}, ids(snap.Books))
	assert.Equal(t, "fast", snap.Filters.Author)
	assert.False(t, snap.Loading)
}

func TestCatalogView_ClosedViewIgnoresLateResponse(t *testing.T) {
	release := make(chan struct{})
	reader := &bookReaderMock{listFn: func(q models.BookQuery) (*models.BookPage, error) {
		<-release
		return &models.BookPage{Items: summaries("late")}, nil
	}}
	v := NewCatalogView(reader, &orderPlacerMock{}, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		v.SetFilters(context.Background(), DefaultFilters())
		close(done)
	}()
	require.Eventually(t, func() bool { return reader.queryCount() == 1 }, time.Second, 5*time.Millisecond)

	v.Close()
	close(release)
	<-done

	assert.Empty(t, v.Snapshot().Books)
}

func TestCatalogView_SelectFetchesOnce(t *testing.T) {
	reader := pagedReader()
	v := NewCatalogView(reader, &orderPlacerMock{}, zerolog.Nop())
	ctx := context.Background()
	v.Show(ctx, DefaultFilters())

	v.Select(ctx, duneID)
	snap := v.Snapshot()
	assert.Equal(t, duneID, snap.SelectedID)
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "Book "+duneID, snap.Selected.Title)

	v.Select(ctx, duneID)
	snap = v.Snapshot()
	assert.Empty(t, snap.SelectedID)
	assert.Nil(t, snap.Selected)

	v.Select(ctx, duneID)
	assert.Equal(t, duneID, v.Snapshot().SelectedID)
	assert.Equal(t, 1, reader.getCount(duneID))
}

func TestCatalogView_DetailFailure(t *testing.T) {
	calls := 0
	reader := pagedReader()
	reader.getFn = func(id string) (*models.Book, error) {
		calls++
		if calls == 1 {
			return nil, &api.RequestError{Status: http.StatusNotFound, Message: "Not found"}
		}
		return &models.Book{ID: id, Title: "Book " + id}, nil
	}
	v := NewCatalogView(reader, &orderPlacerMock{}, zerolog.Nop())
	ctx := context.Background()

	v.Select(ctx, hyperionID)
	assert.Equal(t, MsgDetailLoadFailed, v.Snapshot().Error)

	v.Select(ctx, hyperionID)
	assert.Empty(t, v.Snapshot().Error, "deselecting clears the detail error")

	v.Select(ctx, hyperionID)
	snap := v.Snapshot()
	assert.NotNil(t, snap.Selected)
	assert.Empty(t, snap.Error)
	assert.Equal(t, 2, reader.getCount(hyperionID))
}

func TestDetailCache_ConcurrentMissesShareOneFetch(t *testing.T) {
	var mu sync.Mutex
	fetches := 0
	release := make(chan struct{})
	cache := NewDetailCache(func(ctx context.Context, id string) (*models.Book, error) {
		mu.Lock()
		fetches++
		mu.Unlock()
		<-release
		return &models.Book{ID: id}, nil
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := cache.Get(context.Background(), "42")
			assert.NoError(t, err)
			assert.Equal(t, "42", b.ID)
		}()
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fetches == 1
	}, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, fetches)
	assert.Equal(t, 1, cache.Len())
}

func TestCatalogView_PlaceOrder(t *testing.T) {
	reader := &bookReaderMock{listFn: func(q models.BookQuery) (*models.BookPage, error) {
		return &models.BookPage{Items: []models.BookSummary{{ID: duneID, Title: "Dune", Status: models.BookAvailable}}}, nil
	}}
	ctx := context.Background()

	t.Run("purchase", func(t *testing.T) {
		orders := &orderPlacerMock{placeFn: func(id string, ot models.OrderType) (*models.Order, error) {
			return &models.Order{ID: "o1", BookID: id, Type: ot}, nil
		}}
		v := NewCatalogView(reader, orders, zerolog.Nop())
		v.Show(ctx, DefaultFilters())

		msg := v.PlaceOrder(ctx, duneID, models.OrderPurchase)

		assert.Equal(t, "“Dune” added to your purchases", msg)
		assert.Equal(t, msg, v.Snapshot().Message)
		assert.Equal(t, []models.CreateOrderRequest{{BookID: duneID, Type: models.OrderPurchase}}, orders.calls)
	})

	t.Run("rental uses returned title when unknown", func(t *testing.T) {
		orders := &orderPlacerMock{placeFn: func(id string, ot models.OrderType) (*models.Order, error) {
			return &models.Order{ID: "o2", BookID: id, BookTitle: "Hyperion", Type: ot}, nil
		}}
		v := NewCatalogView(reader, orders, zerolog.Nop())

		msg := v.PlaceOrder(ctx, hyperionID, models.OrderRentOneMonth)
		assert.Equal(t, "Rental of “Hyperion” confirmed", msg)
	})

	t.Run("server rejection surfaces", func(t *testing.T) {
		orders := &orderPlacerMock{placeFn: func(id string, ot models.OrderType) (*models.Order, error) {
			return nil, &api.RequestError{Status: http.StatusConflict, Message: "Book is not available"}
		}}
		unavailable := &bookReaderMock{
			listFn: func(q models.BookQuery) (*models.BookPage, error) {
				return &models.BookPage{Items: []models.BookSummary{{ID: hyperionID, Title: "Gone", Status: models.BookUnavailable}}}, nil
			},
		}
		v := NewCatalogView(unavailable, orders, zerolog.Nop())
		v.Show(ctx, DefaultFilters())

		assert.False(t, CanOrder(nil, models.BookUnavailable))
		msg := v.PlaceOrder(ctx, hyperionID, models.OrderPurchase)
		assert.Equal(t, "Book is not available", msg)
		assert.Equal(t, []string{hyperionID}, ids(v.Snapshot().Books))
	})

	t.Run("network failure falls back", func(t *testing.T) {
		orders := &orderPlacerMock{placeFn: func(id string, ot models.OrderType) (*models.Order, error) {
			return nil, errors.New("dial tcp: connection refused")
		}}
		v := NewCatalogView(reader, orders, zerolog.Nop())

		assert.Equal(t, MsgOrderFailed, v.PlaceOrder(ctx, duneID, models.OrderRentTwoWeeks))
	})

	t.Run("unknown type is not sent", func(t *testing.T) {
		orders := &orderPlacerMock{}
		v := NewCatalogView(reader, orders, zerolog.Nop())

		assert.Equal(t, MsgOrderFailed, v.PlaceOrder(ctx, duneID, models.OrderType("LEASE")))
		assert.Empty(t, orders.calls)
	})

	t.Run("malformed id is not sent", func(t *testing.T) {
		orders := &orderPlacerMock{}
		v := NewCatalogView(reader, orders, zerolog.Nop())

		for _, id := range []string{"not-a-uuid", "../admin", "{" + duneID + "}", ""} {
			assert.Equal(t, MsgOrderFailed, v.PlaceOrder(ctx, id, models.OrderPurchase), id)
		}
		assert.Empty(t, orders.calls)
	})
}

func TestCatalogView_SelectRejectsMalformedID(t *testing.T) {
	reader := pagedReader()
	v := NewCatalogView(reader, &orderPlacerMock{}, zerolog.Nop())
	ctx := context.Background()
	v.Show(ctx, DefaultFilters())

	v.Select(ctx, "not-a-uuid")

	snap := v.Snapshot()
	assert.Equal(t, MsgDetailLoadFailed, snap.Error)
	assert.Empty(t, snap.SelectedID)
	assert.Equal(t, 0, reader.getCount("not-a-uuid"))

	v.Select(ctx, duneID)
	snap = v.Snapshot()
	assert.Empty(t, snap.Error)
	assert.Equal(t, duneID, snap.SelectedID)
}

func TestCatalogView_FailedFilterChangeResetsAndRetries(t *testing.T) {
	failing := false
	reader := &bookReaderMock{listFn: func(q models.BookQuery) (*models.BookPage, error) {
		if q.Category == "B" && failing {
			return nil, errors.New("connection refused")
		}
		if q.Category == "B" {
			return &models.BookPage{Items: summaries("b"+strconv.Itoa(q.Page)), Page: q.Page, HasNext: true}, nil
		}
		return &models.BookPage{Items: summaries("a0"), Page: 0, HasNext: true}, nil
	}}
	v := NewCatalogView(reader, &orderPlacerMock{}, zerolog.Nop())
	ctx := context.Background()

	v.Show(ctx, Filters{Category: "A"})
	require.Equal(t, []string{"a0"}, ids(v.Snapshot().Books))

	failing = true
	v.Show(ctx, Filters{Category: "B"})
	snap := v.Snapshot()
	assert.Equal(t, MsgCatalogLoadFailed, snap.Error)
	assert.Empty(t, snap.Books, "the previous filters' list is not kept")
	assert.False(t, snap.HasNext)

	v.LoadMore(ctx)
	assert.Equal(t, 2, reader.queryCount(), "no load more after a failed first page")

	failing = false
	v.Show(ctx, Filters{Category: "B"})
	require.Equal(t, 3, reader.queryCount())
	snap = v.Snapshot()
	assert.Empty(t, snap.Error)
	assert.Equal(t, []string{"b0"}, ids(snap.Books))

	v.LoadMore(ctx)
	assert.Equal(t, []string{"b0", "b1"}, ids(v.Snapshot().Books))
	last := reader.queries[len(reader.queries)-1]
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, "B", last.Category)
}

func TestCanOrder(t *testing.T) {
	user := &models.User{ID: "1", Role: models.RoleUser}
	assert.True(t, CanOrder(user, models.BookAvailable))
	assert.False(t, CanOrder(user, models.BookUnavailable))
	assert.False(t, CanOrder(user, models.BookArchived))
	assert.False(t, CanOrder(nil, models.BookAvailable))
}

func TestCatalogView_DerivedOptions(t *testing.T) {
	reader := &bookReaderMock{listFn: func(q models.BookQuery) (*models.BookPage, error) {
		return &models.BookPage{Items: []models.BookSummary{
			{ID: "1", Category: "Sci-Fi", Author: "Le Guin"},
			{ID: "2", Category: "Poetry", Author: "Akhmatova"},
			{ID: "3", Category: "Sci-Fi", Author: "Herbert"},
		}}, nil
	}}
	v := NewCatalogView(reader, &orderPlacerMock{}, zerolog.Nop())
	v.Show(context.Background(), DefaultFilters())

	snap := v.Snapshot()
	assert.Equal(t, []string{"Poetry", "Sci-Fi"}, snap.Categories)
	assert.Equal(t, []string{"Akhmatova", "Herbert", "Le Guin"}, snap.Authors)
}
