package weather

import "fmt"

// Location is the fixed geographic point the job collects readings for.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	// Timezone is forwarded to the upstream API; the run date itself is always UTC.
	Timezone string `json:"timezone" validate:"required"`
}

// Key returns a canonical string key for this location.
func (l Location) Key() string {
	return fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
}

// Canonical column names.
const (
	ColumnTime                = "time"
	ColumnTimestamp           = "timestamp"
	ColumnDate                = "date"
	ColumnTemperature         = "temperature_2m"
	ColumnApparentTemperature = "apparent_temperature"
	ColumnRelativeHumidity    = "relative_humidity_2m"
	ColumnPM10                = "pm10"
	ColumnPM25                = "pm2_5"
)

// WeatherVariables and AirQualityVariables are the hourly variables requested upstream.
var (
	WeatherVariables    = []string{ColumnTemperature, ColumnApparentTemperature, ColumnRelativeHumidity}
	AirQualityVariables = []string{ColumnPM10, ColumnPM25}
)

// NumericColumns are forced to floating point by the cleaner when present.
var NumericColumns = []string{
	ColumnTemperature,
	ColumnApparentTemperature,
	ColumnRelativeHumidity,
	ColumnPM10,
	ColumnPM25,
}

// Series is one hourly series from a single upstream, kept as cell text.
// An empty cell is a missing value.
type Series struct {
	Label   string
	Columns []string // value columns, time excluded
	Times   []string
	Values  map[string][]string
}

// Len returns the number of hourly rows.
func (s Series) Len() int {
	return len(s.Times)
}

// Reading is one cleaned hourly observation.
type Reading struct {
	Timestamp           string  `json:"timestamp" parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8"`
	Temperature         float64 `json:"temperature_2m" parquet:"name=temperature_2m, type=DOUBLE"`
	ApparentTemperature float64 `json:"apparent_temperature" parquet:"name=apparent_temperature, type=DOUBLE"`
	RelativeHumidity    float64 `json:"relative_humidity_2m" parquet:"name=relative_humidity_2m, type=DOUBLE"`
	PM10                float64 `json:"pm10" parquet:"name=pm10, type=DOUBLE"`
	PM25                float64 `json:"pm2_5" parquet:"name=pm2_5, type=DOUBLE"`
	Date                string  `json:"date" parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
}
