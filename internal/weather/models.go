package weather

import (
	"fmt"
	"time"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Condition is one weather condition descriptor. Several may be attached to a
// single observation; the API order is preserved.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Clouds is the cloud cover in percent.
type Clouds struct {
	All int `json:"all"`
}

// Wind speed is in m/s for standard and metric units, mph for imperial.
type Wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
	Gust  float64 `json:"gust,omitempty"`
}

// Precipitation volume in mm for the last 1 or 3 hours.
type Precipitation struct {
	OneHour   float64 `json:"1h,omitempty"`
	ThreeHour float64 `json:"3h,omitempty"`
}

// Main holds temperature, pressure and humidity. Values are only meaningful
// together with the Units of the originating query.
type Main struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
	SeaLevel  float64 `json:"sea_level,omitempty"`
	GrndLevel float64 `json:"grnd_level,omitempty"`
	TempKf    float64 `json:"temp_kf,omitempty"`
}

// CurrentSys is the metadata block of a current observation.
type CurrentSys struct {
	Type    int    `json:"type"`
	ID      int    `json:"id"`
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

// CurrentWeather is a point-in-time observation.
type CurrentWeather struct {
	Coord      Coordinates    `json:"coord"`
	Weather    []Condition    `json:"weather"`
	Base       string         `json:"base"`
	Main       Main           `json:"main"`
	Visibility int            `json:"visibility"`
	Wind       Wind           `json:"wind"`
	Clouds     Clouds         `json:"clouds"`
	Rain       *Precipitation `json:"rain,omitempty"`
	Snow       *Precipitation `json:"snow,omitempty"`
	Dt         int64          `json:"dt"`
	Sys        CurrentSys     `json:"sys"`
	Timezone   int            `json:"timezone"`
	ID         FlexInt        `json:"id"`
	Name       string         `json:"name"`
	Cod        FlexInt        `json:"cod"`
}

// Time returns the observation time in UTC.
func (c CurrentWeather) Time() time.Time {
	return unixUTC(c.Dt)
}

// City is the location summary attached to forecasts.
type City struct {
	ID         FlexInt     `json:"id"`
	Name       string      `json:"name"`
	Coord      Coordinates `json:"coord"`
	Country    string      `json:"country"`
	Population int         `json:"population"`
	Timezone   int         `json:"timezone"`
	Sunrise    int64       `json:"sunrise"`
	Sunset     int64       `json:"sunset"`
}

// PartOfDay is "d" or "n".
type PartOfDay struct {
	Pod string `json:"pod"`
}

// ForecastEntry is one step of an hourly or 3-hourly forecast.
type ForecastEntry struct {
	Dt         int64          `json:"dt"`
	Main       Main           `json:"main"`
	Weather    []Condition    `json:"weather"`
	Clouds     Clouds         `json:"clouds"`
	Wind       Wind           `json:"wind"`
	Visibility int            `json:"visibility"`
	Pop        float64        `json:"pop"`
	Rain       *Precipitation `json:"rain,omitempty"`
	Snow       *Precipitation `json:"snow,omitempty"`
	Sys        PartOfDay      `json:"sys"`
	DtTxt      string         `json:"dt_txt"`
}

// Time returns the forecast step time in UTC.
func (e ForecastEntry) Time() time.Time {
	return unixUTC(e.Dt)
}

// Forecast is an hourly or 3-hourly forecast, ordered by Dt ascending.
type Forecast struct {
	Cod     FlexInt         `json:"cod"`
	Message float64         `json:"message"`
	Count   int             `json:"cnt"`
	List    []ForecastEntry `json:"list"`
	City    City            `json:"city"`
}

// Validate reports whether the declared count matches the entries and the
// entries are chronological. The decoder does not call it; the upstream data
// is returned as received.
func (f Forecast) Validate() error {
	times := make([]int64, len(f.List))
	for i, e := range f.List {
		times[i] = e.Dt
	}
	return validateSequence(f.Count, times)
}

// DayTemperature is a temperature split by part of day.
type DayTemperature struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min,omitempty"`
	Max   float64 `json:"max,omitempty"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// DailyEntry is one day of a daily or climate forecast.
type DailyEntry struct {
	Dt        int64          `json:"dt"`
	Sunrise   int64          `json:"sunrise"`
	Sunset    int64          `json:"sunset"`
	Temp      DayTemperature `json:"temp"`
	FeelsLike DayTemperature `json:"feels_like"`
	Pressure  float64        `json:"pressure"`
	Humidity  float64        `json:"humidity"`
	Weather   []Condition    `json:"weather"`
	Speed     float64        `json:"speed"`
	Deg       int            `json:"deg"`
	Gust      float64        `json:"gust,omitempty"`
	Clouds    int            `json:"clouds"`
	Pop       float64        `json:"pop"`
	Rain      float64        `json:"rain,omitempty"`
	Snow      float64        `json:"snow,omitempty"`
}

// Time returns the day's timestamp in UTC.
func (e DailyEntry) Time() time.Time {
	return unixUTC(e.Dt)
}

// DailyForecast is a daily (16 day) or climate (30 day) forecast.
type DailyForecast struct {
	Cod     FlexInt      `json:"cod"`
	Message float64      `json:"message"`
	Count   int          `json:"cnt"`
	List    []DailyEntry `json:"list"`
	City    City         `json:"city"`
}

// Validate has the same semantics as Forecast.Validate.
func (f DailyForecast) Validate() error {
	times := make([]int64, len(f.List))
	for i, e := range f.List {
		times[i] = e.Dt
	}
	return validateSequence(f.Count, times)
}

func validateSequence(count int, times []int64) error {
	if len(times) != count {
		return fmt.Errorf("%w: cnt=%d entries=%d", ErrCountMismatch, count, len(times))
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return fmt.Errorf("%w: entry %d at %d precedes %d", ErrOutOfOrder, i, times[i], times[i-1])
		}
	}
	return nil
}

func unixUTC(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// Location is a place tracked by the poller.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// Query returns the city-name lookup for the location.
func (l Location) Query() Query {
	return ByCityName(l.City, "", l.Country)
}

// Snapshot is a stored current observation for a tracked location.
type Snapshot struct {
	Location  Location       `json:"location"`
	FetchedAt time.Time      `json:"fetchedAt"` // always UTC
	Units     Units          `json:"units"`
	Weather   CurrentWeather `json:"weather"`
}
