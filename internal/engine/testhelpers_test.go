package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"plantmap/internal/config"
	"plantmap/internal/models"
)

const testSheet = "Gas & Oil Units"

type row map[models.Column]interface{}

var fullHeader = []models.Column{
	models.ColPlantName, models.ColUnitName, models.ColCountry, models.ColRegion,
	models.ColCity, models.ColFuel, models.ColStatus, models.ColTechnology,
	models.ColHydrogenCapable, models.ColCHP, models.ColOwner, models.ColCapacity,
	models.ColLatitude, models.ColLongitude, models.ColStartYear,
}

// writeWorkbook saves a workbook with one sheet holding header and rows.
func writeWorkbook(t *testing.T, path string, header []models.Column, rows ...row) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", testSheet))

	head := make([]interface{}, len(header))
	for i, c := range header {
		head[i] = string(c)
	}
	require.NoError(t, f.SetSheetRow(testSheet, "A1", &head))

	for r, values := range rows {
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

// backdate moves a file's mtime into the past so a later cache is fresher.
func backdate(t *testing.T, path string, age time.Duration) time.Time {
	t.Helper()
	ts := time.Now().Add(-age).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, ts, ts))
	return ts
}

func testDataConfig(dir string) config.DataConfig {
	return config.DataConfig{
		Path:      filepath.Join(dir, "plants.xlsx"),
		Sheet:     testSheet,
		CachePath: filepath.Join(dir, "plants.parquet"),
	}
}

func f64(v float64) *float64 { return &v }

// scenarioRows is the two-unit USA/India dataset.
func scenarioRows() []row {
	return []row{
		{
			models.ColPlantName: "Bayou Plant", models.ColUnitName: "Unit 1",
			models.ColCountry: "USA", models.ColRegion: "Americas", models.ColCity: "Houston",
			models.ColFuel: "fossil gas: natural gas", models.ColStatus: "Operating",
			models.ColTechnology: "combined cycle", models.ColHydrogenCapable: "no",
			models.ColCHP: "yes", models.ColOwner: "Gulf Power",
			models.ColCapacity: 100.0, models.ColLatitude: 30.0, models.ColLongitude: -90.0,
			models.ColStartYear: 2005.0,
		},
		{
			models.ColPlantName: "Deccan Station", models.ColUnitName: "Unit A",
			models.ColCountry: "India", models.ColRegion: "Asia", models.ColCity: "Pune",
			models.ColFuel: "fuel oil", models.ColStatus: "Retired",
			models.ColTechnology: "gas turbine", models.ColHydrogenCapable: "unknown",
			models.ColCHP: "N", models.ColOwner: "State Grid",
			models.ColCapacity: 50.0, models.ColLatitude: 20.0, models.ColLongitude: 80.0,
			models.ColStartYear: 1990.0,
		},
	}
}

// sampleStore is a normalized in-memory dataset for filter and map tests.
func sampleStore() *ColumnStore {
	units := []models.PlantUnit{
		{PlantName: "Alpha", UnitName: "A1", Country: "USA", Region: "Americas", Fuel: "gas", Status: "Operating", Technology: "CC", HydrogenCapable: "no", CHP: "Yes", Capacity: f64(100), Latitude: f64(30), Longitude: f64(-90), StartYear: f64(2001)},
		{PlantName: "Alpha", UnitName: "A2", Country: "USA", Region: "Americas", Fuel: "gas", Status: "Planned", Technology: "GT", HydrogenCapable: "yes", CHP: "No", Capacity: f64(25), Latitude: f64(30.5), Longitude: f64(-90.5)},
		{PlantName: "Bravo", UnitName: "B1", Country: "India", Region: "Asia", Fuel: "oil", Status: "Retired", Technology: "GT", HydrogenCapable: "no", CHP: "Unknown", Capacity: f64(50), Latitude: f64(20), Longitude: f64(80)},
		{PlantName: "Charlie", UnitName: "C1", Country: "Chile", Region: "Americas", Fuel: "gas", Status: "Operating", Technology: "CC", HydrogenCapable: "Unknown", CHP: "Not found", Capacity: f64(75)},
		{PlantName: "Delta", UnitName: "D1", Country: "India", Region: "Asia", Fuel: "gas", Status: "Operating", Technology: "ST", HydrogenCapable: "no", CHP: "Yes", Latitude: f64(19), Longitude: f64(73)},
		{PlantName: "", UnitName: "E1", Country: "Unknown", Region: "Unknown", Fuel: "Unknown", Status: "Unknown", Technology: "Unknown", HydrogenCapable: "Unknown", CHP: "Unknown"},
	}
	return NewColumnStore(units, nil)
}
