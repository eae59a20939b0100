package meteo

import (
	"bytes"
	"encoding/json"
)

// Field maps an output attribute to the vendor codes that may carry it, in preference order.
type Field struct {
	Name  string
	Codes []string
}

// Fields lists every measurement exposed in a Reading.
var Fields = []Field{
	{Name: "temp", Codes: []string{"temp_current_external", "temp_current"}},
	{Name: "humidity", Codes: []string{"humidity_outdoor", "humidity_value"}},
	{Name: "windSpeedAvg", Codes: []string{"windspeed_avg"}},
	{Name: "windGust", Codes: []string{"windspeed_gust"}},
	{Name: "rain1h", Codes: []string{"rain_1h"}},
	{Name: "rain24h", Codes: []string{"rain_24h"}},
	{Name: "rainRate", Codes: []string{"rain_rate"}},
	// the vendor misspells this code
	{Name: "pressure", Codes: []string{"atmospheric_pressture"}},
	{Name: "uvIndex", Codes: []string{"uv_index"}},
	{Name: "dewPoint", Codes: []string{"dew_point_temp"}},
	{Name: "feelsLike", Codes: []string{"feellike_temp"}},
}

var jsonNull = []byte("null")

// Lookup returns the value of the first item carrying code.
func Lookup(items []StatusItem, code string) (json.RawMessage, bool) {
	for _, item := range items {
		if item.Code == code {
			return item.Value, true
		}
	}
	return nil, false
}

// Extract tries each code in order and returns the first present, non-null value.
// A nil result means none of the codes matched.
func Extract(items []StatusItem, codes ...string) json.RawMessage {
	for _, code := range codes {
		value, ok := Lookup(items, code)
		if !ok || isNull(value) {
			continue
		}
		return value
	}
	return nil
}

func isNull(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull)
}

func buildReading(timestamp string, status DeviceStatus) Reading {
	values := make(map[string]json.RawMessage, len(Fields))
	for _, f := range Fields {
		values[f.Name] = Extract(status.Items, f.Codes...)
	}
	raw := status.Raw
	if len(bytes.TrimSpace(raw)) == 0 || isNull(raw) {
		raw = json.RawMessage("[]")
	}
	return Reading{
		Timestamp:    timestamp,
		Temp:         values["temp"],
		Humidity:     values["humidity"],
		WindSpeedAvg: values["windSpeedAvg"],
		WindGust:     values["windGust"],
		Rain1h:       values["rain1h"],
		Rain24h:      values["rain24h"],
		RainRate:     values["rainRate"],
		Pressure:     values["pressure"],
		UVIndex:      values["uvIndex"],
		DewPoint:     values["dewPoint"],
		FeelsLike:    values["feelsLike"],
		Raw:          raw,
	}
}
