package catalog

import "sort"

// LocalizedString is the catalog's multi-language text object, e.g.
// { "en": "Bow", "fr": "Arc" }.
type LocalizedString map[string]string

// In returns the text for lang, falling back to English and then to any
// non-empty translation in key order.
func (l LocalizedString) In(lang string) string {
	if s, ok := l[lang]; ok && s != "" {
		return s
	}
	if s, ok := l["en"]; ok && s != "" {
		return s
	}
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if l[k] != "" {
			return l[k]
		}
	}
	return ""
}

// Item is one catalog record as it comes off the wire.
type Item struct {
	ID             int             `json:"id"`
	TypeID         int             `json:"typeId"`
	Name           LocalizedString `json:"name"`
	Level          int             `json:"level"`
	Img            string          `json:"img"`
	HasRecipe      bool            `json:"hasRecipe"`
	IsDestructible bool            `json:"isDestructible"`
	Effects        []Effect        `json:"effects"`
	Recipe         *Recipe         `json:"recipe"`
}

// Effect is a raw stat line on an item. From/To bounds come straight
// from the catalog and still need normalizing before display.
type Effect struct {
	EffectID int `json:"effectId"`
	From     int `json:"from"`
	To       int `json:"to"`
}

// Recipe lists what a craftable item is made of. Ingredients that are
// themselves craftable embed their own recipe, so the structure nests.
type Recipe struct {
	Job         string       `json:"job"`
	Ingredients []Ingredient `json:"ingredients"`
}

type Ingredient struct {
	ItemID    int             `json:"itemId"`
	Name      LocalizedString `json:"name"`
	Quantity  int             `json:"quantity"`
	Img       string          `json:"img"`
	HasRecipe bool            `json:"hasRecipe"`
	Recipe    *Recipe         `json:"recipe"`
}

// ItemType is a catalog category. Slug is the stable identifier job
// filters use ("bow", "sword", ...).
type ItemType struct {
	ID   int             `json:"id"`
	Slug string          `json:"slug"`
	Name LocalizedString `json:"name"`
}

// The catalog wraps every list response in a feathers-style envelope:
// { "total": N, "limit": L, "skip": S, "data": [...] }
// Only what the pagination loop needs is parsed.
type itemsPage struct {
	Total int    `json:"total"`
	Limit int    `json:"limit"`
	Skip  int    `json:"skip"`
	Data  []Item `json:"data"`
}

type typesPage struct {
	Total int        `json:"total"`
	Data  []ItemType `json:"data"`
}

type effectPayload struct {
	ID          int             `json:"id"`
	Description LocalizedString `json:"description"`
}
