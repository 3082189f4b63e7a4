// Package pricebook seeds the editable price documents from a result
// set. Prices start at -1 and are meant to be filled in by hand or by a
// later pricing pass.
package pricebook

import (
	"craftdex-engine/internal/extract"
	"craftdex-engine/internal/jsonio"
	"craftdex-engine/internal/results"
)

// Equipment is one craftable end product of a job.
type Equipment struct {
	Price        int    `json:"price"`
	BreakageRate int    `json:"breakage_rate"`
	Quantity     int    `json:"quantity"`
	Img          string `json:"img"`
}

// Ingredient is a raw resource some recipe consumes.
type Ingredient struct {
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Img      string `json:"img"`
}

// Recipe is a crafted intermediate: an ingredient that is itself made
// from other ingredients.
type Recipe struct {
	Price       int    `json:"price"`
	Job         string `json:"job"`
	Quantity    int    `json:"quantity"`
	IsEquipment bool   `json:"is_equipment"`
	Img         string `json:"img"`
}

// Books are the three price documents a run seeds: equipments keyed by
// job then name, raw ingredients and crafted intermediates by name.
type Books struct {
	Equipments  map[string]map[string]*Equipment
	Ingredients map[string]*Ingredient
	Recipes     map[string]*Recipe
}

// Build seeds the books from set. Quantities count how many times each
// name is needed across every recipe tree in the run.
func Build(set *results.Set) *Books {
	b := &Books{
		Equipments:  make(map[string]map[string]*Equipment),
		Ingredients: make(map[string]*Ingredient),
		Recipes:     make(map[string]*Recipe),
	}

	// Every extracted item is an equipment of its job. This pass runs
	// to completion first so recipe walks can recognize equipments.
	for _, job := range set.Jobs() {
		entries := make(map[string]*Equipment)
		for _, it := range set.Items(job) {
			entries[it.Name] = &Equipment{Price: -1, BreakageRate: -1, Quantity: 1, Img: it.Img}
		}
		b.Equipments[job] = entries
	}

	for _, job := range set.Jobs() {
		for _, it := range set.Items(job) {
			if it.Recipe == nil {
				continue
			}
			b.walk(it.Recipe.Ingredients)
		}
	}
	return b
}

func (b *Books) walk(ings []extract.Ingredient) {
	for _, ing := range ings {
		if ing.HasRecipe && ing.Recipe != nil {
			b.addCraftable(ing)
		} else {
			b.addRaw(ing)
		}
	}
}

// addCraftable indexes a crafted ingredient, deepest sub-recipes first.
// When the ingredient doubles as an equipment its equipment quantity is
// bumped on every occurrence, and its first recipe entry counts one
// extra for the craft itself.
func (b *Books) addCraftable(ing extract.Ingredient) {
	b.walk(ing.Recipe.Ingredients)

	job := ing.Recipe.Job
	isEquip := b.isEquipment(ing.Name, job)
	if isEquip {
		b.Equipments[job][ing.Name].Quantity += ing.Quantity
	}

	if rec, ok := b.Recipes[ing.Name]; ok {
		rec.Quantity += ing.Quantity
		return
	}
	q := ing.Quantity
	if isEquip {
		q++
	}
	b.Recipes[ing.Name] = &Recipe{Price: -1, Job: job, Quantity: q, IsEquipment: isEquip, Img: ing.Img}
}

func (b *Books) addRaw(ing extract.Ingredient) {
	if cur, ok := b.Ingredients[ing.Name]; ok {
		cur.Quantity += ing.Quantity
		return
	}
	b.Ingredients[ing.Name] = &Ingredient{Price: -1, Quantity: ing.Quantity, Img: ing.Img}
}

func (b *Books) isEquipment(name, job string) bool {
	entries, ok := b.Equipments[job]
	if !ok {
		return false
	}
	_, ok = entries[name]
	return ok
}

// Write persists the three books.
func (b *Books) Write(equipmentsPath, ingredientsPath, recipesPath string) error {
	if err := jsonio.WriteAtomic(equipmentsPath, b.Equipments); err != nil {
		return err
	}
	if err := jsonio.WriteAtomic(ingredientsPath, b.Ingredients); err != nil {
		return err
	}
	return jsonio.WriteAtomic(recipesPath, b.Recipes)
}
