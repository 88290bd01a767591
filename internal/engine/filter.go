package engine

import (
	"slices"

	"plantmap/internal/models"
)

// All is the dropdown sentinel accepting every value.
const All = "All"

// filterParams are the query parameter names of the filter columns.
var filterParams = map[models.Column]string{
	models.ColCountry:         "country",
	models.ColStatus:          "status",
	models.ColFuel:            "fuel",
	models.ColHydrogenCapable: "hydrogen",
	models.ColRegion:          "region",
	models.ColTechnology:      "technology",
	models.ColCHP:             "chp",
}

// FilterParam returns the query parameter name for a filter column.
func FilterParam(col models.Column) string {
	return filterParams[col]
}

// BuildFilters turns one chosen value per filter column into a Selection.
// A missing choice, All, or a value not present in the store selects every
// distinct value of that column. Choices are compared verbatim, since the
// options carry the cell text unchanged.
func BuildFilters(cs *ColumnStore, choices map[models.Column]string) (models.Selection, []models.FilterOption) {
	sel := make(models.Selection, len(models.FilterColumns))
	opts := make([]models.FilterOption, 0, len(models.FilterColumns))

	for _, col := range models.FilterColumns {
		values := cs.Distinct(col)
		choice := choices[col]
		if choice == "" || !contains(values, choice) {
			choice = All
		}

		options := make([]string, 0, len(values)+1)
		options = append(options, All)
		options = append(options, values...)

		if choice == All {
			sel[col] = append([]string(nil), values...)
		} else {
			sel[col] = []string{choice}
		}

		opts = append(opts, models.FilterOption{
			Column:   col,
			Param:    FilterParam(col),
			Options:  options,
			Selected: choice,
		})
	}

	return sel, opts
}

// Apply keeps the units matching every column of sel. Within a column any
// listed value matches; columns with no values are not constrained.
func Apply(cs *ColumnStore, sel models.Selection) *ColumnStore {
	type constraint struct {
		ids    []int32
		accept []bool
	}

	var active []constraint
	for f, col := range models.FilterColumns {
		values, ok := sel[col]
		if !ok || len(values) == 0 {
			continue
		}
		dict := cs.dicts[f]
		accept := make([]bool, len(dict))
		for _, v := range values {
			if id, found := slices.BinarySearch(dict, v); found {
				accept[id] = true
			}
		}
		active = append(active, constraint{ids: cs.ids[f], accept: accept})
	}

	if len(active) == 0 {
		return cs
	}

	kept := make([]models.PlantUnit, 0, len(cs.Units))
	for i := range cs.Units {
		ok := true
		for _, c := range active {
			id := c.ids[i]
			if id < 0 || !c.accept[id] {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, cs.Units[i])
		}
	}

	if len(kept) == len(cs.Units) {
		return cs
	}
	return NewColumnStore(kept, cs.MissingColumns)
}

func contains(sorted []string, v string) bool {
	_, ok := slices.BinarySearch(sorted, v)
	return ok
}
