package meteo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	items := []StatusItem{
		{Code: "temp_current", Value: json.RawMessage(`215`)},
		{Code: "uv_index", Value: json.RawMessage(`3`)},
		{Code: "temp_current", Value: json.RawMessage(`999`)},
	}

	value, ok := Lookup(items, "uv_index")
	require.True(t, ok)
	require.JSONEq(t, `3`, string(value))

	value, ok = Lookup(items, "temp_current")
	require.True(t, ok)
	require.JSONEq(t, `215`, string(value), "first match wins")

	value, ok = Lookup(items, "rain_1h")
	require.False(t, ok)
	require.Nil(t, value)
}

func TestExtractFallback(t *testing.T) {
	tests := []struct {
		name  string
		items []StatusItem
		want  string
	}{
		{
			name: "primary preferred",
			items: []StatusItem{
				{Code: "temp_current", Value: json.RawMessage(`215`)},
				{Code: "temp_current_external", Value: json.RawMessage(`187`)},
			},
			want: `187`,
		},
		{
			name:  "secondary when primary absent",
			items: []StatusItem{{Code: "temp_current", Value: json.RawMessage(`215`)}},
			want:  `215`,
		},
		{
			name: "secondary when primary null",
			items: []StatusItem{
				{Code: "temp_current_external", Value: json.RawMessage(`null`)},
				{Code: "temp_current", Value: json.RawMessage(`215`)},
			},
			want: `215`,
		},
		{
			name: "zero is a value",
			items: []StatusItem{
				{Code: "temp_current_external", Value: json.RawMessage(`0`)},
				{Code: "temp_current", Value: json.RawMessage(`215`)},
			},
			want: `0`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.items, "temp_current_external", "temp_current")
			require.JSONEq(t, tc.want, string(got))
		})
	}
}

func TestExtractAbsent(t *testing.T) {
	require.Nil(t, Extract(nil, "humidity_outdoor", "humidity_value"))
	require.Nil(t, Extract([]StatusItem{{Code: "uv_index", Value: json.RawMessage(`1`)}}, "rain_rate"))
}

func TestBuildReadingEmptyStatus(t *testing.T) {
	reading := buildReading("2024-07-01T10:00:00.000Z", DeviceStatus{})

	data, err := json.Marshal(reading)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"timestamp": "2024-07-01T10:00:00.000Z",
		"temp": null, "humidity": null, "windSpeedAvg": null, "windGust": null,
		"rain1h": null, "rain24h": null, "rainRate": null, "pressure": null,
		"uvIndex": null, "dewPoint": null, "feelsLike": null,
		"raw": []
	}`, string(data))
}

func TestFieldsCoverReading(t *testing.T) {
	require.Len(t, Fields, 11)

	var reading map[string]any
	data, err := json.Marshal(buildReading("ts", DeviceStatus{}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &reading))
	for _, f := range Fields {
		require.Contains(t, reading, f.Name)
	}
}
