package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"plantmap/internal/config"
	"plantmap/internal/engine"
	"plantmap/internal/models"
)

const testSheet = "Gas & Oil Units"

var scenario = []map[models.Column]interface{}{
	{
		models.ColPlantName: "Bayou Plant", models.ColUnitName: "Unit 1", models.ColCountry: "USA",
		models.ColRegion: "Americas", models.ColCity: "Houston", models.ColFuel: "fossil gas",
		models.ColStatus: "Operating", models.ColTechnology: "combined cycle",
		models.ColHydrogenCapable: "no", models.ColCHP: "yes", models.ColOwner: "Gulf Power",
		models.ColCapacity: 100.0, models.ColLatitude: 30.0, models.ColLongitude: -90.0,
		models.ColStartYear: 2005.0,
	},
	{
		models.ColPlantName: "Deccan Station", models.ColUnitName: "Unit A", models.ColCountry: "India",
		models.ColRegion: "Asia", models.ColCity: "Pune", models.ColFuel: "fuel oil",
		models.ColStatus: "Retired", models.ColTechnology: "gas turbine",
		models.ColHydrogenCapable: "unknown", models.ColCHP: "N", models.ColOwner: "State Grid",
		models.ColCapacity: 50.0, models.ColLatitude: 20.0, models.ColLongitude: 80.0,
		models.ColStartYear: 1990.0,
	},
}

func writeWorkbook(t *testing.T, path string, header []models.Column) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", testSheet))

	head := make([]interface{}, len(header))
	for i, c := range header {
		head[i] = string(c)
	}
	require.NoError(t, f.SetSheetRow(testSheet, "A1", &head))
	for r, values := range scenario {
		cells := make([]interface{}, len(header))
		for i, c := range header {
			cells[i] = values[c]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(testSheet, cell, &cells))
	}
	require.NoError(t, f.SaveAs(path))
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		Data: config.DataConfig{
			Path:      filepath.Join(dir, "plants.xlsx"),
			Sheet:     testSheet,
			CachePath: filepath.Join(dir, "plants.parquet"),
		},
		Reference: config.ReferenceConfig{
			GlossaryPath: filepath.Join(dir, "glossary.md"),
			LogoPath:     filepath.Join(dir, "logo.png"),
			Images:       []string{filepath.Join(dir, "tech.png"), filepath.Join(dir, "chp.png")},
		},
		Map:    config.MapConfig{SizeMax: 40, Zoom: 1, Height: 650, Style: "carto-positron"},
		Server: config.ServerConfig{Port: 8080},
	}
}

func newTestService(t *testing.T) (*Service, *config.Config) {
	t.Helper()
	cfg := testConfig(t.TempDir())
	writeWorkbook(t, cfg.Data.Path, models.AllColumns)
	return NewService(cfg), cfg
}

func TestRenderUnfiltered(t *testing.T) {
	svc, _ := newTestService(t)

	v, err := svc.Render(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, Title, v.Title)
	assert.Equal(t, models.Summary{Plants: 2, Units: 2, TotalCapacity: 150}, v.Summary)
	require.NotNil(t, v.Map)
	assert.Len(t, v.Map.Markers, 2)
	assert.Empty(t, v.MapNotice)
	require.NotNil(t, v.Table)
	assert.Len(t, v.Table.Rows, 2)
	assert.Equal(t, "", v.Query)
	require.Len(t, v.ByStatus, 2)
	assert.Equal(t, "Operating", v.ByStatus[0].Name)
}

func TestRenderCountryScenario(t *testing.T) {
	svc, _ := newTestService(t)

	v, err := svc.Render(context.Background(), map[models.Column]string{models.ColCountry: "USA"})
	require.NoError(t, err)

	assert.Equal(t, 1, v.Summary.Units)
	assert.InDelta(t, 100, v.Summary.TotalCapacity, 1e-9)
	assert.Equal(t, []Metric{
		{Label: "Plants shown", Value: "1"},
		{Label: "Units shown", Value: "1"},
		{Label: "Total capacity (MW)", Value: "100.0"},
	}, v.Metrics)
	require.NotNil(t, v.Map)
	require.Len(t, v.Map.Markers, 1)
	assert.Equal(t, "Bayou Plant", v.Map.Markers[0].HoverName)
	assert.Equal(t, "country=USA", v.Query)
	assert.Equal(t, "USA", v.Filters[0].Selected)

	// CHP was normalized at load.
	assert.Equal(t, []string{engine.All, "No", "Yes"}, v.Filters[6].Options)
}

func TestRenderNoMatches(t *testing.T) {
	svc, _ := newTestService(t)

	v, err := svc.Render(context.Background(), map[models.Column]string{
		models.ColCountry: "USA",
		models.ColStatus:  "Retired",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, v.Summary.Units)
	assert.Nil(t, v.Map)
	assert.Equal(t, engine.NoMatchNotice, v.MapNotice)
	require.NotNil(t, v.Table)
	assert.Empty(t, v.Table.Rows)
}

func TestRenderMissingDisplayColumns(t *testing.T) {
	cfg := testConfig(t.TempDir())
	var header []models.Column
	for _, c := range models.AllColumns {
		if c != models.ColOwner {
			header = append(header, c)
		}
	}
	writeWorkbook(t, cfg.Data.Path, header)

	v, err := NewService(cfg).Render(context.Background(), nil)
	require.NoError(t, err)

	assert.Nil(t, v.Table)
	assert.Equal(t, "Missing columns in dataset: Owner", v.TableWarning)
	assert.NotNil(t, v.Map)
	assert.Equal(t, 2, v.Summary.Units)
}

func TestRenderMissingSource(t *testing.T) {
	svc := NewService(testConfig(t.TempDir()))

	_, err := svc.Render(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, engine.ErrDataNotFound))
	assert.Equal(t, "plants.xlsx", svc.SourceName())
}

func TestReferenceWithoutGlossary(t *testing.T) {
	svc, cfg := newTestService(t)
	require.NoError(t, os.WriteFile(cfg.Reference.Images[1], []byte("png"), 0o644))

	rv := svc.Reference()
	assert.Empty(t, rv.Text)
	assert.Equal(t, "No glossary content found in glossary.md.", rv.Notice)
	assert.Equal(t, []models.ReferenceItem{
		{Kind: "divider"},
		{Kind: "image", Src: "/assets/chp.png"},
	}, rv.Items)
}

func TestReferenceWithGlossary(t *testing.T) {
	svc, cfg := newTestService(t)
	require.NoError(t, os.WriteFile(cfg.Reference.GlossaryPath, []byte("# Glossary\n\n**CHP**: combined heat and power\n"), 0o644))
	for _, img := range cfg.Reference.Images {
		require.NoError(t, os.WriteFile(img, []byte("png"), 0o644))
	}

	rv := svc.Reference()
	assert.Contains(t, rv.Text, "combined heat and power")
	assert.Empty(t, rv.Notice)
	require.Len(t, rv.Items, 3)
	assert.Equal(t, "divider", rv.Items[0].Kind)
	assert.Equal(t, "/assets/tech.png", rv.Items[1].Src)
	assert.Equal(t, "/assets/chp.png", rv.Items[2].Src)
}

func TestReferenceBlankGlossary(t *testing.T) {
	svc, cfg := newTestService(t)
	require.NoError(t, os.WriteFile(cfg.Reference.GlossaryPath, []byte("  \n"), 0o644))

	rv := svc.Reference()
	assert.NotEmpty(t, rv.Notice)
	assert.Empty(t, rv.Items)
}

func TestReferenceEmptyGlossaryPath(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Reference.GlossaryPath = ""

	rv := NewService(cfg).Reference()
	assert.Equal(t, "No glossary content found in glossary.md.", rv.Notice)
}

func TestAssetPath(t *testing.T) {
	svc, cfg := newTestService(t)
	require.NoError(t, os.WriteFile(cfg.Reference.LogoPath, []byte("png"), 0o644))

	path, ok := svc.AssetPath("logo.png")
	require.True(t, ok)
	assert.Equal(t, cfg.Reference.LogoPath, path)

	_, ok = svc.AssetPath("tech.png")
	assert.False(t, ok, "configured but absent")

	_, ok = svc.AssetPath("plants.xlsx")
	assert.False(t, ok, "not a reference asset")

	v, err := svc.Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "/assets/logo.png", v.Logo)
}

func TestMetricsGrouping(t *testing.T) {
	got := Metrics(models.Summary{Plants: 1234, Units: 56789, TotalCapacity: 1234567.89})
	assert.Equal(t, "1,234", got[0].Value)
	assert.Equal(t, "56,789", got[1].Value)
	assert.Equal(t, "1,234,567.9", got[2].Value)
}
