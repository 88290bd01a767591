package dashboard

import (
	"net/url"

	"plantmap/internal/engine"
	"plantmap/internal/models"
)

// ChoicesFromQuery reads one chosen value per filter column from query
// parameters. Absent parameters are left out.
func ChoicesFromQuery(q url.Values) map[models.Column]string {
	choices := make(map[models.Column]string, len(models.FilterColumns))
	for _, col := range models.FilterColumns {
		if v := q.Get(engine.FilterParam(col)); v != "" {
			choices[col] = v
		}
	}
	return choices
}

// Query encodes the non-All selections so links keep the current filters.
func Query(opts []models.FilterOption) string {
	q := url.Values{}
	for _, o := range opts {
		if o.Selected != engine.All {
			q.Set(o.Param, o.Selected)
		}
	}
	return q.Encode()
}
