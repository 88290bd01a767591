package engine

import (
	"sort"

	"plantmap/internal/models"
)

// ColumnStore holds the loaded units plus dictionary-encoded filter columns.
// It is never mutated after construction; filtering returns a new store.
type ColumnStore struct {
	// Units in source order.
	Units []models.PlantUnit

	// MissingColumns lists contract columns absent from the source header.
	MissingColumns []models.Column

	// Dictionary Encoded IDs (0..N), one slice per filter column.
	ids [][]int32

	// Dictionaries (ID -> String), sorted ascending so IDs order like values.
	dicts [][]string
}

// NewColumnStore encodes the filter columns of units.
func NewColumnStore(units []models.PlantUnit, missing []models.Column) *ColumnStore {
	cs := &ColumnStore{
		Units:          units,
		MissingColumns: missing,
		ids:            make([][]int32, len(models.FilterColumns)),
		dicts:          make([][]string, len(models.FilterColumns)),
	}

	for f, col := range models.FilterColumns {
		seen := make(map[string]struct{})
		for i := range units {
			if v := units[i].Text(col); v != "" {
				seen[v] = struct{}{}
			}
		}
		dict := make([]string, 0, len(seen))
		for v := range seen {
			dict = append(dict, v)
		}
		sort.Strings(dict)

		lookup := make(map[string]int32, len(dict))
		for id, v := range dict {
			lookup[v] = int32(id)
		}

		ids := make([]int32, len(units))
		for i := range units {
			if id, ok := lookup[units[i].Text(col)]; ok {
				ids[i] = id
			} else {
				ids[i] = -1
			}
		}

		cs.ids[f] = ids
		cs.dicts[f] = dict
	}

	return cs
}

// Len returns the number of units.
func (cs *ColumnStore) Len() int { return len(cs.Units) }

// Distinct returns the sorted distinct non-empty values of a filter column.
// Non-filter columns return nil.
func (cs *ColumnStore) Distinct(col models.Column) []string {
	f := filterIndex(col)
	if f < 0 {
		return nil
	}
	return cs.dicts[f]
}

// HasColumn reports whether col was present in the source.
func (cs *ColumnStore) HasColumn(col models.Column) bool {
	for _, m := range cs.MissingColumns {
		if m == col {
			return false
		}
	}
	return true
}

func filterIndex(col models.Column) int {
	for i, c := range models.FilterColumns {
		if c == col {
			return i
		}
	}
	return -1
}
