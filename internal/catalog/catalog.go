// Package catalog is the read-only client for the item catalog API.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"craftdex-engine/internal/config"
)

const userAgent = "craftdex/1.0 (+local)"

// Pages are followed until the envelope says there is nothing left; the
// skip cap guards against a catalog that keeps reporting more.
const maxSkip = 10000

// Client queries the catalog. It memoizes category and effect lookups
// for the lifetime of a run and is not safe for concurrent use.
type Client struct {
	cfg     config.Catalog
	hc      *http.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger

	typeIDs     map[string]int
	effectNames map[int]string
}

func New(cfg config.Catalog, log logrus.FieldLogger) *Client {
	return &Client{
		cfg:         cfg,
		hc:          &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		log:         log,
		typeIDs:     make(map[string]int),
		effectNames: make(map[int]string),
	}
}

// Lang is the language items were requested in.
func (c *Client) Lang() string { return c.cfg.Lang }

// Query selects one category of items within a level range.
type Query struct {
	Category string
	LevelMin int
	LevelMax int
}

// ResolveCategory maps a filter slug to the catalog's numeric type id.
func (c *Client) ResolveCategory(ctx context.Context, slug string) (int, error) {
	if id, ok := c.typeIDs[slug]; ok {
		return id, nil
	}

	v := url.Values{}
	v.Set("slug", slug)
	v.Set("lang", c.cfg.Lang)

	var pg typesPage
	if err := c.getJSON(ctx, c.cfg.BaseURL+"/item-types?"+v.Encode(), &pg); err != nil {
		return 0, fmt.Errorf("resolve category %q: %w", slug, err)
	}
	if len(pg.Data) == 0 {
		return 0, &CategoryError{Slug: slug}
	}

	id := pg.Data[0].ID
	c.typeIDs[slug] = id
	return id, nil
}

// EachItem streams every item matching q to fn, page by page, in the
// order the catalog returns them. An error from fn stops the walk.
func (c *Client) EachItem(ctx context.Context, q Query, fn func(Item) error) error {
	typeID, err := c.ResolveCategory(ctx, q.Category)
	if err != nil {
		return err
	}

	skip := 0
	for {
		var pg itemsPage
		if err := c.getJSON(ctx, c.itemsURL(typeID, q, skip), &pg); err != nil {
			return fmt.Errorf("items page at skip %d: %w", skip, err)
		}

		for i := range pg.Data {
			if err := fn(pg.Data[i]); err != nil {
				return err
			}
		}

		skip += len(pg.Data)
		if len(pg.Data) == 0 {
			break
		}
		if pg.Total > 0 && skip >= pg.Total {
			break
		}
		if skip > maxSkip {
			c.log.Warnf("catalog: category %q still reports more items past skip %d, stopping", q.Category, maxSkip)
			break
		}
	}

	return nil
}

// Items collects everything EachItem would stream.
func (c *Client) Items(ctx context.Context, q Query) ([]Item, error) {
	var out []Item
	err := c.EachItem(ctx, q, func(it Item) error {
		out = append(out, it)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EffectName resolves an effect id to its display name. Lookups are
// memoized because the same handful of effects repeats across items.
func (c *Client) EffectName(ctx context.Context, id int) (string, error) {
	if name, ok := c.effectNames[id]; ok {
		return name, nil
	}

	v := url.Values{}
	v.Set("lang", c.cfg.Lang)

	var eff effectPayload
	u := fmt.Sprintf("%s/effects/%d?%s", c.cfg.BaseURL, id, v.Encode())
	if err := c.getJSON(ctx, u, &eff); err != nil {
		return "", fmt.Errorf("effect %d: %w", id, err)
	}

	name := eff.Description.In(c.cfg.Lang)
	c.effectNames[id] = name
	return name, nil
}

func (c *Client) itemsURL(typeID int, q Query, skip int) string {
	v := url.Values{}
	v.Set("typeId[$in][]", strconv.Itoa(typeID))
	for _, ex := range c.cfg.ExcludeTypeIDs {
		v.Add("typeId[$ne]", strconv.Itoa(ex))
	}
	v.Set("level[$gte]", strconv.Itoa(q.LevelMin))
	v.Set("level[$lte]", strconv.Itoa(q.LevelMax))
	v.Set("$sort", "-level")
	v.Set("$skip", strconv.Itoa(skip))
	v.Set("$limit", strconv.Itoa(c.cfg.PageSize))
	v.Set("lang", c.cfg.Lang)
	return c.cfg.BaseURL + "/items?" + v.Encode()
}
