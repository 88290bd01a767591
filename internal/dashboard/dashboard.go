// Package dashboard assembles one dashboard view per request: load, filter,
// summarize, map, tabulate, and attach the reference material.
package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"plantmap/internal/config"
	"plantmap/internal/engine"
	"plantmap/internal/models"
)

const (
	Title   = "Global Oil & Gas Power Plants"
	Caption = "Bubble size represents capacity (MW). Use the sidebar to filter by country, status, fuel, hydrogen capability, region, technology, and CHP."

	// AssetPrefix is the URL prefix under which reference images are served.
	AssetPrefix = "/assets/"

	breakdownLimit = 10

	defaultGlossary = "glossary.md"
)

// Metric is one headline counter.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ReferenceView is the glossary tab.
type ReferenceView struct {
	Text   string                 `json:"text"`
	Notice string                 `json:"notice,omitempty"`
	Items  []models.ReferenceItem `json:"items"`
}

// View is everything the page shows for one selection.
type View struct {
	Title        string                `json:"title"`
	Caption      string                `json:"caption"`
	Logo         string                `json:"logo,omitempty"`
	Filters      []models.FilterOption `json:"filters"`
	Summary      models.Summary        `json:"summary"`
	Metrics      []Metric              `json:"metrics"`
	ByStatus     []models.TopItem      `json:"by_status"`
	ByCountry    []models.TopItem      `json:"by_country"`
	Map          *models.BubbleMap     `json:"map,omitempty"`
	MapNotice    string                `json:"map_notice,omitempty"`
	Table        *models.DetailTable   `json:"table,omitempty"`
	TableWarning string                `json:"table_warning,omitempty"`
	Reference    ReferenceView         `json:"reference"`
	Query        string                `json:"query"`
}

// Service renders views from the configured dataset.
type Service struct {
	cfg       *config.Config
	loader    *engine.Loader
	reference *engine.ReferenceLoader
	mapOpts   engine.MapOptions
}

// NewService wires the loaders for cfg.
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:       cfg,
		loader:    engine.NewLoader(cfg.Data),
		reference: engine.NewReferenceLoader(),
		mapOpts:   engine.MapOptionsFrom(cfg.Map),
	}
}

// Dataset returns the full loaded dataset.
func (s *Service) Dataset(ctx context.Context) (*engine.ColumnStore, error) {
	cs, err := s.loader.Load(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: load dataset")
	}
	return cs, nil
}

// Filtered loads the dataset and applies one chosen value per filter column.
func (s *Service) Filtered(ctx context.Context, choices map[models.Column]string) (*engine.ColumnStore, []models.FilterOption, error) {
	cs, err := s.Dataset(ctx)
	if err != nil {
		return nil, nil, err
	}
	sel, opts := engine.BuildFilters(cs, choices)
	return engine.Apply(cs, sel), opts, nil
}

// SourceName is the base name of the source workbook.
func (s *Service) SourceName() string { return filepath.Base(s.cfg.Data.Path) }

// MapOptions returns the configured map settings.
func (s *Service) MapOptions() engine.MapOptions { return s.mapOpts }

// Render builds the complete view. The only error is a dataset that cannot
// be loaded; every other failure degrades to a notice inside the view.
func (s *Service) Render(ctx context.Context, choices map[models.Column]string) (*View, error) {
	filtered, opts, err := s.Filtered(ctx, choices)
	if err != nil {
		return nil, err
	}

	v := &View{
		Title:     Title,
		Caption:   Caption,
		Logo:      s.assetURL(s.cfg.Reference.LogoPath),
		Filters:   opts,
		Summary:   filtered.Summarize(),
		ByStatus:  filtered.Breakdown(models.ColStatus, breakdownLimit),
		ByCountry: filtered.Breakdown(models.ColCountry, breakdownLimit),
		Reference: s.Reference(),
		Query:     Query(opts),
	}
	v.Metrics = Metrics(v.Summary)

	if m, ok := engine.RenderMap(filtered, s.mapOpts); ok {
		v.Map = m
	} else {
		v.MapNotice = engine.NoMatchNotice
	}

	if t, err := engine.DetailTable(filtered); err != nil {
		v.TableWarning = err.Error()
		zap.L().Warn("dashboard: detail table omitted", zap.Error(err))
	} else {
		v.Table = t
	}

	return v, nil
}

// Metrics formats the summary counters with thousands separators.
func Metrics(sum models.Summary) []Metric {
	p := message.NewPrinter(language.English)
	return []Metric{
		{Label: "Plants shown", Value: p.Sprintf("%d", sum.Plants)},
		{Label: "Units shown", Value: p.Sprintf("%d", sum.Units)},
		{Label: "Total capacity (MW)", Value: p.Sprintf("%.1f", sum.TotalCapacity)},
	}
}

// Reference builds the glossary tab: the glossary text or a notice, then
// the configured images that exist, with one divider ahead of the first.
func (s *Service) Reference() ReferenceView {
	rv := ReferenceView{Text: s.reference.Load(s.cfg.Reference.GlossaryPath)}
	if strings.TrimSpace(rv.Text) == "" {
		rv.Notice = "No glossary content found in " + glossaryName(s.cfg.Reference.GlossaryPath) + "."
	}

	for _, img := range s.cfg.Reference.Images {
		src := s.assetURL(img)
		if src == "" {
			continue
		}
		if len(rv.Items) == 0 {
			rv.Items = append(rv.Items, models.ReferenceItem{Kind: "divider"})
		}
		rv.Items = append(rv.Items, models.ReferenceItem{Kind: "image", Src: src})
	}
	return rv
}

// AssetPath resolves an asset name to a configured, existing file.
func (s *Service) AssetPath(name string) (string, bool) {
	candidates := append([]string{s.cfg.Reference.LogoPath}, s.cfg.Reference.Images...)
	for _, c := range candidates {
		if c == "" || filepath.Base(c) != name {
			continue
		}
		if fileExists(c) {
			return c, true
		}
	}
	return "", false
}

// glossaryName is the file named in the glossary notice.
func glossaryName(path string) string {
	if path == "" {
		return defaultGlossary
	}
	return filepath.Base(path)
}

func (s *Service) assetURL(path string) string {
	if path == "" || !fileExists(path) {
		return ""
	}
	return AssetPrefix + filepath.Base(path)
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
