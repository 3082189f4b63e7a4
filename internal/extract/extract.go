// Package extract turns raw catalog records into the item records a run
// persists.
package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"craftdex-engine/internal/catalog"
	"craftdex-engine/internal/jobs"
)

// Catalog is the slice of the catalog client extraction needs.
type Catalog interface {
	EachItem(ctx context.Context, q catalog.Query, fn func(catalog.Item) error) error
	EffectName(ctx context.Context, id int) (string, error)
	Lang() string
}

// Item is one extracted record, shaped for results.json.
type Item struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Level    int      `json:"level"`
	Img      string   `json:"img,omitempty"`
	Effects  []Effect `json:"effects"`
	Recipe   *Recipe  `json:"recipe,omitempty"`
}

// Effect is a normalized stat line: Min <= Max always holds.
type Effect struct {
	EffectID int    `json:"effectId"`
	Name     string `json:"name"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
}

type Recipe struct {
	Job         string       `json:"job"`
	Ingredients []Ingredient `json:"ingredients"`
}

type Ingredient struct {
	ItemID    int     `json:"itemId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Img       string  `json:"img,omitempty"`
	HasRecipe bool    `json:"hasRecipe"`
	Recipe    *Recipe `json:"recipe,omitempty"`
}

type Extractor struct {
	catalog  Catalog
	levelMin int
	levelMax int
	log      logrus.FieldLogger
}

func New(cat Catalog, levelMin, levelMax int, log logrus.FieldLogger) *Extractor {
	return &Extractor{
		catalog:  cat,
		levelMin: levelMin,
		levelMax: levelMax,
		log:      log,
	}
}

// ItemsForJob runs every filter of job against the catalog and returns
// the craftable items, deduped by id (first filter wins) and ordered by
// level descending then name ascending.
func (e *Extractor) ItemsForJob(ctx context.Context, job jobs.Job) ([]Item, error) {
	lang := e.catalog.Lang()
	seen := make(map[int]bool)
	out := []Item{}

	for _, filter := range job.Filters {
		q := catalog.Query{Category: filter, LevelMin: e.levelMin, LevelMax: e.levelMax}
		err := e.catalog.EachItem(ctx, q, func(raw catalog.Item) error {
			if !raw.HasRecipe || !raw.IsDestructible {
				return nil
			}
			name := strings.TrimSpace(raw.Name.In(lang))
			if raw.ID == 0 || name == "" {
				e.log.Debugf("extract: skipping catalog record without id/name (id=%d)", raw.ID)
				return nil
			}
			if seen[raw.ID] {
				return nil
			}

			rec, err := e.convert(ctx, raw, name, filter)
			if err != nil {
				return err
			}
			seen[raw.ID] = true
			out = append(out, rec)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", filter, err)
		}
	}

	sortItems(out)
	return out, nil
}

func (e *Extractor) convert(ctx context.Context, raw catalog.Item, name, category string) (Item, error) {
	effects, err := e.convertEffects(ctx, raw)
	if err != nil {
		return Item{}, err
	}
	return Item{
		ID:       raw.ID,
		Name:     name,
		Category: category,
		Level:    raw.Level,
		Img:      raw.Img,
		Effects:  effects,
		Recipe:   e.convertRecipe(raw.Recipe),
	}, nil
}

// convertEffects resolves effect names and normalizes the bounds: lines
// with a negative lower bound are dropped, a zero upper bound means the
// line is flat, and hunting weapon lines always land as 1..1.
func (e *Extractor) convertEffects(ctx context.Context, raw catalog.Item) ([]Effect, error) {
	out := []Effect{}
	for _, ef := range raw.Effects {
		lo, hi := ef.From, ef.To
		if lo < 0 {
			continue
		}
		if hi == 0 {
			hi = lo
		}

		name, err := e.catalog.EffectName(ctx, ef.EffectID)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", raw.ID, err)
		}
		if isHuntingWeapon(name) {
			lo, hi = 1, 1
		}

		out = append(out, Effect{EffectID: ef.EffectID, Name: name, Min: lo, Max: hi})
	}
	return out, nil
}

func isHuntingWeapon(name string) bool {
	return strings.EqualFold(name, "Arme de chasse") || strings.EqualFold(name, "Hunting Weapon")
}

func (e *Extractor) convertRecipe(r *catalog.Recipe) *Recipe {
	if r == nil {
		return nil
	}
	lang := e.catalog.Lang()

	out := &Recipe{Job: r.Job, Ingredients: make([]Ingredient, 0, len(r.Ingredients))}
	for _, ing := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, Ingredient{
			ItemID:    ing.ItemID,
			Name:      ing.Name.In(lang),
			Quantity:  ing.Quantity,
			Img:       ing.Img,
			HasRecipe: ing.HasRecipe,
			Recipe:    e.convertRecipe(ing.Recipe),
		})
	}
	return out
}

func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Level != items[j].Level {
			return items[i].Level > items[j].Level
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}
