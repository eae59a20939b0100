package meteo

import (
	"encoding/json"
	"fmt"
)

// StatusItem is one code/value pair reported by the device status query.
type StatusItem struct {
	Code  string          `json:"code"`
	Value json.RawMessage `json:"value"`
}

// DeviceStatus is what the upstream adapter hands back on success.
type DeviceStatus struct {
	Items []StatusItem
	// Raw is the vendor status list exactly as received.
	Raw json.RawMessage
}

// Reading is serialized back to API consumers. Absent measurements encode as null.
type Reading struct {
	Timestamp    string          `json:"timestamp"`
	Temp         json.RawMessage `json:"temp"`
	Humidity     json.RawMessage `json:"humidity"`
	WindSpeedAvg json.RawMessage `json:"windSpeedAvg"`
	WindGust     json.RawMessage `json:"windGust"`
	Rain1h       json.RawMessage `json:"rain1h"`
	Rain24h      json.RawMessage `json:"rain24h"`
	RainRate     json.RawMessage `json:"rainRate"`
	Pressure     json.RawMessage `json:"pressure"`
	UVIndex      json.RawMessage `json:"uvIndex"`
	DewPoint     json.RawMessage `json:"dewPoint"`
	FeelsLike    json.RawMessage `json:"feelsLike"`
	Raw          json.RawMessage `json:"raw"`
}

// Config wires runtime dependencies for the meteo domain.
type Config struct {
	DeviceID string
}

// RejectedError reports that the vendor answered but flagged the call as unsuccessful.
type RejectedError struct {
	Code    int
	Message string
	// Raw is the full vendor response body.
	Raw json.RawMessage
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tuya reported failure (code %d)", e.Code)
	}
	return fmt.Sprintf("tuya reported failure (code %d): %s", e.Code, e.Message)
}

// ResponseError reports a non-success HTTP status from the vendor.
type ResponseError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("tuya responded with status %d", e.StatusCode)
}
