package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftdex-engine/internal/config"
)

// fakeCatalog serves the feathers-style endpoints the client talks to,
// with per-path request counts and optional injected failures.
type fakeCatalog struct {
	types   []ItemType
	items   map[int][]Item
	effects map[int]LocalizedString

	counts    map[string]int
	lastItems url.Values
	lastUA    string

	failPath   string
	failStatus int
	failLeft   int // -1 fails forever
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		types: []ItemType{
			{ID: 2, Slug: "bow", Name: LocalizedString{"en": "Bow", "fr": "Arc"}},
			{ID: 6, Slug: "sword", Name: LocalizedString{"en": "Sword"}},
		},
		items:   map[int][]Item{},
		effects: map[int]LocalizedString{},
		counts:  map[string]int{},
	}
}

func (f *fakeCatalog) failing(r *http.Request, w http.ResponseWriter) bool {
	if f.failLeft != 0 && strings.HasPrefix(r.URL.Path, f.failPath) {
		if f.failLeft > 0 {
			f.failLeft--
		}
		w.WriteHeader(f.failStatus)
		return true
	}
	return false
}

func (f *fakeCatalog) start(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/item-types", func(w http.ResponseWriter, r *http.Request) {
		f.counts[r.URL.Path]++
		f.lastUA = r.Header.Get("User-Agent")
		if f.failing(r, w) {
			return
		}
		slug := r.URL.Query().Get("slug")
		var data []ItemType
		for _, it := range f.types {
			if it.Slug == slug {
				data = append(data, it)
			}
		}
		writeEnvelope(w, typesPage{Total: len(data), Data: data})
	})
	mux.HandleFunc("/items", func(w http.ResponseWriter, r *http.Request) {
		f.counts[r.URL.Path]++
		f.lastUA = r.Header.Get("User-Agent")
		if f.failing(r, w) {
			return
		}
		q := r.URL.Query()
		f.lastItems = q

		typeID, _ := strconv.Atoi(q.Get("typeId[$in][]"))
		skip, _ := strconv.Atoi(q.Get("$skip"))
		limit, _ := strconv.Atoi(q.Get("$limit"))
		if limit <= 0 {
			limit = 10
		}

		all := f.items[typeID]
		if skip > len(all) {
			skip = len(all)
		}
		end := skip + limit
		if end > len(all) {
			end = len(all)
		}
		writeEnvelope(w, itemsPage{Total: len(all), Limit: limit, Skip: skip, Data: all[skip:end]})
	})
	mux.HandleFunc("/effects/", func(w http.ResponseWriter, r *http.Request) {
		f.counts[r.URL.Path]++
		f.lastUA = r.Header.Get("User-Agent")
		if f.failing(r, w) {
			return
		}
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/effects/"))
		desc, ok := f.effects[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeEnvelope(w, effectPayload{ID: id, Description: desc})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeEnvelope(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func genItems(n, startID, topLevel int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = Item{
			ID:             startID + i,
			Name:           LocalizedString{"en": fmt.Sprintf("Bow %03d", i)},
			Level:          topLevel - i,
			Img:            fmt.Sprintf("https://img.example/%d.png", startID+i),
			HasRecipe:      true,
			IsDestructible: true,
		}
	}
	return out
}

func testClient(t *testing.T, baseURL string, mut func(*config.Catalog)) *Client {
	t.Helper()

	cfg := config.Default().Catalog
	cfg.BaseURL = baseURL
	cfg.TimeoutSeconds = 5
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	cfg.MaxRetries = 2
	cfg.RetryBackoffMS = 1
	if mut != nil {
		mut(&cfg)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(cfg, log)
}

func TestItemsPaginatesAcrossPages(t *testing.T) {
	fake := newFakeCatalog()
	fake.items[2] = genItems(60, 1000, 200)
	srv := fake.start(t)

	c := testClient(t, srv.URL, nil)
	items, err := c.Items(context.Background(), Query{Category: "bow", LevelMin: 0, LevelMax: 200})
	require.NoError(t, err)
	require.Len(t, items, 60)

	assert.Equal(t, 2, fake.counts["/items"], "60 items at page size 50 should take two pages")
	assert.Equal(t, 1, fake.counts["/item-types"])

	seen := map[int]bool{}
	for _, it := range items {
		assert.False(t, seen[it.ID], "duplicate id %d", it.ID)
		seen[it.ID] = true
	}
	assert.Equal(t, 1000, items[0].ID, "catalog order should be preserved")
}

func TestItemsEmptyCategory(t *testing.T) {
	fake := newFakeCatalog()
	srv := fake.start(t)

	c := testClient(t, srv.URL, nil)
	items, err := c.Items(context.Background(), Query{Category: "sword", LevelMin: 0, LevelMax: 200})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, fake.counts["/items"])
}

func TestItemsQueryParameters(t *testing.T) {
	fake := newFakeCatalog()
	fake.items[2] = genItems(1, 1, 57)
	srv := fake.start(t)

	c := testClient(t, srv.URL, func(cfg *config.Catalog) {
		cfg.Lang = "fr"
		cfg.ExcludeTypeIDs = []int{203}
	})
	_, err := c.Items(context.Background(), Query{Category: "bow", LevelMin: 10, LevelMax: 60})
	require.NoError(t, err)

	q := fake.lastItems
	assert.Equal(t, "203", q.Get("typeId[$ne]"))
	assert.Equal(t, "10", q.Get("level[$gte]"))
	assert.Equal(t, "60", q.Get("level[$lte]"))
	assert.Equal(t, "-level", q.Get("$sort"))
	assert.Equal(t, "50", q.Get("$limit"))
	assert.Equal(t, "fr", q.Get("lang"))
	assert.Equal(t, "craftdex/1.0 (+local)", fake.lastUA)
}

func TestResolveCategoryUnknown(t *testing.T) {
	fake := newFakeCatalog()
	srv := fake.start(t)

	c := testClient(t, srv.URL, nil)
	_, err := c.Items(context.Background(), Query{Category: "wand", LevelMin: 0, LevelMax: 200})
	require.Error(t, err)

	var ce *CategoryError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "wand", ce.Slug)
	assert.Zero(t, fake.counts["/items"], "unknown category should not query items")
}

func TestResolveCategoryMemoized(t *testing.T) {
	fake := newFakeCatalog()
	fake.items[2] = genItems(3, 1, 30)
	srv := fake.start(t)

	c := testClient(t, srv.URL, nil)
	q := Query{Category: "bow", LevelMin: 0, LevelMax: 200}

	_, err := c.Items(context.Background(), q)
	require.NoError(t, err)
	_, err = c.Items(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.counts["/item-types"], "slug resolution should be cached")
}

func TestEffectNameMemoized(t *testing.T) {
	fake := newFakeCatalog()
	fake.effects[91] = LocalizedString{"en": "Water damage", "fr": "Dommages Eau"}
	srv := fake.start(t)

	c := testClient(t, srv.URL, nil)

	name, err := c.EffectName(context.Background(), 91)
	require.NoError(t, err)
	assert.Equal(t, "Water damage", name)

	_, err = c.EffectName(context.Background(), 91)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.counts["/effects/91"])
}

func TestEffectNameUsesLang(t *testing.T) {
	fake := newFakeCatalog()
	fake.effects[91] = LocalizedString{"en": "Water damage", "fr": "Dommages Eau"}
	srv := fake.start(t)

	c := testClient(t, srv.URL, func(cfg *config.Catalog) { cfg.Lang = "fr" })
	name, err := c.EffectName(context.Background(), 91)
	require.NoError(t, err)
	assert.Equal(t, "Dommages Eau", name)
}

func TestRetryOnServerError(t *testing.T) {
	fake := newFakeCatalog()
	fake.items[2] = genItems(3, 1, 30)
	fake.failPath = "/items"
	fake.failStatus = http.StatusInternalServerError
	fake.failLeft = 2
	srv := fake.start(t)

	c := testClient(t, srv.URL, nil)
	items, err := c.Items(context.Background(), Query{Category: "bow", LevelMin: 0, LevelMax: 200})
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, 3, fake.counts["/items"], "two failures then one success")
}

func TestRetryOnTooManyRequests(t *testing.T) {
	fake := newFakeCatalog()
	fake.items[2] = genItems(1, 1, 30)
	fake.failPath = "/items"
	fake.failStatus = http.StatusTooManyRequests
	fake.failLeft = 1
	srv := fake.start(t)

	c := testClient(t, srv.URL, nil)
	_, err := c.Items(context.Background(), Query{Category: "bow", LevelMin: 0, LevelMax: 200})
	require.NoError(t, err)
	assert.Equal(t, 2, fake.counts["/items"])
}

func TestNoRetryOnClientError(t *testing.T) {
	fake := newFakeCatalog()
	fake.failPath = "/item-types"
	fake.failStatus = http.StatusForbidden
	fake.failLeft = -1
	srv := fake.start(t)

	c := testClient(t, srv.URL, nil)
	_, err := c.Items(context.Background(), Query{Category: "bow", LevelMin: 0, LevelMax: 200})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, 1, fake.counts["/item-types"], "4xx should fail fast")
}

func TestRetriesExhausted(t *testing.T) {
	fake := newFakeCatalog()
	fake.failPath = "/items"
	fake.failStatus = http.StatusBadGateway
	fake.failLeft = -1
	srv := fake.start(t)

	c := testClient(t, srv.URL, nil)
	_, err := c.Items(context.Background(), Query{Category: "bow", LevelMin: 0, LevelMax: 200})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
	assert.Equal(t, 3, fake.counts["/items"])
}

func TestEachItemStopsOnCallbackError(t *testing.T) {
	fake := newFakeCatalog()
	fake.items[2] = genItems(60, 1, 200)
	srv := fake.start(t)

	c := testClient(t, srv.URL, nil)
	boom := errors.New("boom")
	calls := 0
	err := c.EachItem(context.Background(), Query{Category: "bow", LevelMin: 0, LevelMax: 200}, func(Item) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, fake.counts["/items"], "walk should stop before the second page")
}

func TestLocalizedStringFallback(t *testing.T) {
	assert.Equal(t, "Arc", LocalizedString{"fr": "Arc"}.In("fr"))
	assert.Equal(t, "Bow", LocalizedString{"en": "Bow"}.In("fr"))
	assert.Equal(t, "Arco", LocalizedString{"pt": "Arco"}.In("fr"))
	assert.Equal(t, "", LocalizedString{}.In("fr"))
}
