package engine

import (
	"sort"

	"plantmap/internal/models"
)

// Summarize computes the headline counters: distinct plant names, unit
// count, and total capacity ignoring missing values.
func (cs *ColumnStore) Summarize() models.Summary {
	plants := make(map[string]struct{})
	var total float64
	for i := range cs.Units {
		u := &cs.Units[i]
		if !IsMissing(u.PlantName) {
			plants[u.PlantName] = struct{}{}
		}
		if u.Capacity != nil {
			total += *u.Capacity
		}
	}
	return models.Summary{
		Plants:        len(plants),
		Units:         len(cs.Units),
		TotalCapacity: total,
	}
}

// Breakdown sums capacity per value of a filter column, largest first.
// limit <= 0 returns every value.
func (cs *ColumnStore) Breakdown(col models.Column, limit int) []models.TopItem {
	f := filterIndex(col)
	if f < 0 {
		return nil
	}

	// Array indexing by dictionary ID instead of a map per value.
	dict := cs.dicts[f]
	capacity := make([]float64, len(dict))
	units := make([]int, len(dict))
	for i, id := range cs.ids[f] {
		if id < 0 {
			continue
		}
		units[id]++
		if c := cs.Units[i].Capacity; c != nil {
			capacity[id] += *c
		}
	}

	items := make([]models.TopItem, 0, len(dict))
	for id, name := range dict {
		if units[id] > 0 {
			items = append(items, models.TopItem{Name: name, Capacity: capacity[id], Units: units[id]})
		}
	}

	// dict is sorted, so a stable sort keeps ties in name order.
	sort.SliceStable(items, func(i, j int) bool { return items[i].Capacity > items[j].Capacity })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
