package models

// Column is a spreadsheet header name. The exact text is part of the data contract.
type Column string

const (
	ColCountry         Column = "Country"
	ColStatus          Column = "Status"
	ColFuel            Column = "Fuel"
	ColRegion          Column = "Region"
	ColHydrogenCapable Column = "Hydrogen capable?"
	ColTechnology      Column = "Technology"
	ColCHP             Column = "CHP"
	ColCapacity        Column = "Capacity (MW)"
	ColLatitude        Column = "Latitude"
	ColLongitude       Column = "Longitude"
	ColStartYear       Column = "Start year"
	ColPlantName       Column = "Plant name"
	ColUnitName        Column = "Unit name"
	ColCity            Column = "City"
	ColOwner           Column = "Owner"
)

// AllColumns lists every column the loader reads, in cache order.
var AllColumns = []Column{
	ColPlantName, ColUnitName, ColCountry, ColRegion, ColCity, ColFuel, ColStatus,
	ColTechnology, ColHydrogenCapable, ColCHP, ColOwner,
	ColCapacity, ColLatitude, ColLongitude, ColStartYear,
}

// FilterColumns is the sidebar order.
var FilterColumns = []Column{
	ColCountry, ColStatus, ColFuel, ColHydrogenCapable, ColRegion, ColTechnology, ColCHP,
}

// TextColumns never hold a missing value after load.
var TextColumns = []Column{
	ColCountry, ColStatus, ColFuel, ColRegion, ColHydrogenCapable, ColTechnology, ColCHP,
}

// NumericColumns are coerced to numbers on load.
var NumericColumns = []Column{ColCapacity, ColLatitude, ColLongitude, ColStartYear}

// DisplayColumns is the detail table projection.
var DisplayColumns = []Column{
	ColPlantName, ColUnitName, ColCountry, ColRegion, ColCity, ColFuel, ColCapacity,
	ColStatus, ColTechnology, ColHydrogenCapable, ColStartYear, ColOwner,
}

// IsNumeric reports whether col holds numbers.
func (c Column) IsNumeric() bool {
	switch c {
	case ColCapacity, ColLatitude, ColLongitude, ColStartYear:
		return true
	}
	return false
}

// PlantUnit is one generating unit (one spreadsheet row).
type PlantUnit struct {
	PlantName       string   `json:"plant_name"`
	UnitName        string   `json:"unit_name"`
	Country         string   `json:"country"`
	Region          string   `json:"region"`
	City            string   `json:"city"`
	Fuel            string   `json:"fuel"`
	Status          string   `json:"status"`
	Technology      string   `json:"technology"`
	HydrogenCapable string   `json:"hydrogen_capable"`
	CHP             string   `json:"chp"`
	Owner           string   `json:"owner"`
	Capacity        *float64 `json:"capacity_mw"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	StartYear       *float64 `json:"start_year"`
}

// Text returns the value of a string column. Numeric columns return "".
func (u *PlantUnit) Text(col Column) string {
	if p := u.textField(col); p != nil {
		return *p
	}
	return ""
}

// SetText assigns a string column. Numeric columns are ignored.
func (u *PlantUnit) SetText(col Column, v string) {
	if p := u.textField(col); p != nil {
		*p = v
	}
}

// Number returns the value of a numeric column, nil when missing.
func (u *PlantUnit) Number(col Column) *float64 {
	if p := u.numberField(col); p != nil {
		return *p
	}
	return nil
}

// SetNumber assigns a numeric column. String columns are ignored.
func (u *PlantUnit) SetNumber(col Column, v *float64) {
	if p := u.numberField(col); p != nil {
		*p = v
	}
}

func (u *PlantUnit) textField(col Column) *string {
	switch col {
	case ColPlantName:
		return &u.PlantName
	case ColUnitName:
		return &u.UnitName
	case ColCountry:
		return &u.Country
	case ColRegion:
		return &u.Region
	case ColCity:
		return &u.City
	case ColFuel:
		return &u.Fuel
	case ColStatus:
		return &u.Status
	case ColTechnology:
		return &u.Technology
	case ColHydrogenCapable:
		return &u.HydrogenCapable
	case ColCHP:
		return &u.CHP
	case ColOwner:
		return &u.Owner
	}
	return nil
}

func (u *PlantUnit) numberField(col Column) **float64 {
	switch col {
	case ColCapacity:
		return &u.Capacity
	case ColLatitude:
		return &u.Latitude
	case ColLongitude:
		return &u.Longitude
	case ColStartYear:
		return &u.StartYear
	}
	return nil
}

// Selection maps a filter column to its accepted values.
// An empty or absent entry accepts every value.
type Selection map[Column][]string

// FilterOption is one sidebar dropdown.
type FilterOption struct {
	Column   Column   `json:"column"`
	Param    string   `json:"param"`
	Options  []string `json:"options"`
	Selected string   `json:"selected"`
}

// Summary holds the three headline counters.
type Summary struct {
	Plants        int     `json:"plants"`
	Units         int     `json:"units"`
	TotalCapacity float64 `json:"total_capacity_mw"`
}

// TopItem is one row of a capacity breakdown.
type TopItem struct {
	Name     string  `json:"name"`
	Capacity float64 `json:"capacity_mw"`
	Units    int     `json:"units"`
}

// Marker is one bubble on the map.
type Marker struct {
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Capacity   float64  `json:"capacity_mw"`
	Diameter   float64  `json:"size"`
	Status     string   `json:"status"`
	Color      string   `json:"color"`
	HoverName  string   `json:"hover_name"`
	HoverLines []string `json:"hover_lines"`
}

// LegendEntry maps a status to its marker color.
type LegendEntry struct {
	Status string `json:"status"`
	Color  string `json:"color"`
}

// Bounds is a lon/lat bounding box.
type Bounds struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// BubbleMap describes the geographic bubble plot.
type BubbleMap struct {
	Markers   []Marker      `json:"markers"`
	Legend    []LegendEntry `json:"legend"`
	Bounds    Bounds        `json:"bounds"`
	CenterLat float64       `json:"center_lat"`
	CenterLon float64       `json:"center_lon"`
	Zoom      float64       `json:"zoom"`
	Height    int           `json:"height"`
	Style     string        `json:"style"`
	SizeMax   float64       `json:"size_max"`
}

// DetailTable is the projected plant listing.
type DetailTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ReferenceItem is an entry appended below the glossary text.
type ReferenceItem struct {
	Kind string `json:"kind"` // "divider" or "image"
	Src  string `json:"src,omitempty"`
}
