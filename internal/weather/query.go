package weather

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Units selects the measurement system of the response.
type Units string

const (
	UnitsStandard Units = "standard"
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Format is the response mode. Only JSON is decoded by this client.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// Horizon selects the forecast product and therefore the endpoint path.
type Horizon int

const (
	Current Horizon = iota
	ThreeHourly
	Hourly
	Daily
	Climate
)

var horizonPaths = map[Horizon]string{
	Current:     "weather",
	ThreeHourly: "forecast",
	Hourly:      "forecast/hourly",
	Daily:       "forecast/daily",
	Climate:     "forecast/climate",
}

// Path returns the endpoint path relative to the API base URL.
func (h Horizon) Path() string {
	return horizonPaths[h]
}

func (h Horizon) String() string {
	switch h {
	case Current:
		return "current"
	case ThreeHourly:
		return "forecast"
	case Hourly:
		return "hourly"
	case Daily:
		return "daily"
	case Climate:
		return "climate"
	default:
		return "horizon(" + strconv.Itoa(int(h)) + ")"
	}
}

// CityName looks a place up by name, optionally narrowed by state and country.
type CityName struct {
	Name    string
	State   string
	Country string
}

// Zip looks a place up by postal code.
type Zip struct {
	Code    string
	Country string
	State   string
}

// Query is a weather lookup: exactly one lookup mode plus optional modifiers.
// Build it with ByCityName, ByCityID, ByZip or ByCoordinates; the With
// methods return modified copies.
type Query struct {
	City   *CityName
	CityID *int
	Zip    *Zip
	Coords *Coordinates

	Units  Units  `validate:"omitempty,oneof=standard metric imperial"`
	Lang   string `validate:"omitempty,max=8"`
	Count  int    `validate:"gte=0"`
	Format Format `validate:"omitempty,oneof=json xml"`
}

func ByCityName(name, state, country string) Query {
	return Query{City: &CityName{Name: name, State: state, Country: country}}
}

func ByCityID(id int) Query {
	return Query{CityID: &id}
}

func ByZip(code, country, state string) Query {
	return Query{Zip: &Zip{Code: code, Country: country, State: state}}
}

func ByCoordinates(lat, lon float64) Query {
	return Query{Coords: &Coordinates{Lat: lat, Lon: lon}}
}

func (q Query) WithUnits(u Units) Query {
	q.Units = u
	return q
}

func (q Query) WithLang(lang string) Query {
	q.Lang = lang
	return q
}

func (q Query) WithCount(n int) Query {
	q.Count = n
	return q
}

func (q Query) WithFormat(f Format) Query {
	q.Format = f
	return q
}

func (q Query) modes() []string {
	var set []string
	if q.City != nil {
		set = append(set, "city")
	}
	if q.CityID != nil {
		set = append(set, "id")
	}
	if q.Zip != nil {
		set = append(set, "zip")
	}
	if q.Coords != nil {
		set = append(set, "coordinates")
	}
	return set
}

// Validate checks the query without touching the network. Every error it
// returns matches ErrInvalidQuery.
func (q Query) Validate() error {
	switch modes := q.modes(); len(modes) {
	case 0:
		return &QueryError{Reason: "no lookup mode set"}
	case 1:
	default:
		return &QueryError{Reason: "multiple lookup modes set: " + strings.Join(modes, ", ")}
	}

	switch {
	case q.City != nil:
		if err := validate.Var(strings.TrimSpace(q.City.Name), "required"); err != nil {
			return &QueryError{Field: "city", Reason: "city name cannot be null or empty"}
		}
	case q.Zip != nil:
		if err := validate.Var(strings.TrimSpace(q.Zip.Code), "required"); err != nil {
			return &QueryError{Field: "zip", Reason: "ZIP code cannot be null or empty"}
		}
	case q.CityID != nil:
		if *q.CityID <= 0 {
			return &QueryError{Field: "id", Reason: "city id must be positive"}
		}
	case q.Coords != nil:
		if err := validate.Struct(q.Coords); err != nil {
			return queryError(err)
		}
	}

	if err := validate.Struct(q); err != nil {
		return queryError(err)
	}
	if q.Format == FormatXML {
		return &QueryError{Field: "mode", Reason: "xml responses are not supported"}
	}
	return nil
}

func queryError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &QueryError{
			Field:  strings.ToLower(fe.Field()),
			Reason: fmt.Sprintf("failed %q constraint (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &QueryError{Reason: err.Error()}
}

// Identifier is the looked-up value as echoed in not-found errors.
func (q Query) Identifier() string {
	switch {
	case q.City != nil:
		return joinParts(strings.TrimSpace(q.City.Name), q.City.State, q.City.Country)
	case q.Zip != nil:
		return joinParts(strings.TrimSpace(q.Zip.Code), q.Zip.State, q.Zip.Country)
	case q.CityID != nil:
		return strconv.Itoa(*q.CityID)
	case q.Coords != nil:
		return formatFloat(q.Coords.Lat) + "," + formatFloat(q.Coords.Lon)
	default:
		return ""
	}
}

func (q Query) String() string {
	var b strings.Builder
	b.WriteString(q.Identifier())
	if q.Units != "" {
		b.WriteString(" units=" + string(q.Units))
	}
	if q.Lang != "" {
		b.WriteString(" lang=" + q.Lang)
	}
	if q.Count > 0 {
		b.WriteString(" cnt=" + strconv.Itoa(q.Count))
	}
	return b.String()
}

// Encode validates the query and renders its query string. Parameters come in
// a fixed order: identifier, units, lang, cnt, mode, appid. Absent modifiers
// are left out entirely.
func (q Query) Encode(apiKey string) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
	}

	switch {
	case q.City != nil:
		add("q", escapeParts(strings.TrimSpace(q.City.Name), q.City.State, q.City.Country))
	case q.Zip != nil:
		add("zip", escapeParts(strings.TrimSpace(q.Zip.Code), q.Zip.State, q.Zip.Country))
	case q.CityID != nil:
		add("id", strconv.Itoa(*q.CityID))
	case q.Coords != nil:
		add("lat", formatFloat(q.Coords.Lat))
		add("lon", formatFloat(q.Coords.Lon))
	}

	if q.Units != "" && q.Units != UnitsStandard {
		add("units", string(q.Units))
	}
	if q.Lang != "" {
		add("lang", url.QueryEscape(q.Lang))
	}
	if q.Count > 0 {
		add("cnt", strconv.Itoa(q.Count))
	}
	if q.Format != "" && q.Format != FormatJSON {
		add("mode", string(q.Format))
	}
	add("appid", url.QueryEscape(apiKey))

	return b.String(), nil
}

// URL returns "path?query" for the horizon, relative to the API base URL.
func (q Query) URL(h Horizon, apiKey string) (string, error) {
	path := h.Path()
	if path == "" {
		return "", &QueryError{Field: "horizon", Reason: "unknown forecast horizon " + h.String()}
	}
	raw, err := q.Encode(apiKey)
	if err != nil {
		return "", err
	}
	return path + "?" + raw, nil
}

func joinParts(head string, rest ...string) string {
	parts := []string{head}
	for _, p := range rest {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ",")
}

func escapeParts(head string, rest ...string) string {
	parts := []string{url.QueryEscape(head)}
	for _, p := range rest {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, url.QueryEscape(p))
		}
	}
	return strings.Join(parts, ",")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
