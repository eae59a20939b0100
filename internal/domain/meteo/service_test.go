package meteo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/meteo-tuya/pkg/errors"
)

const statusFixture = `[
	{"code":"temp_current","value":231},
	{"code":"temp_current_external","value":187},
	{"code":"humidity_value","value":55},
	{"code":"windspeed_avg","value":12},
	{"code":"windspeed_gust","value":30},
	{"code":"rain_1h","value":0},
	{"code":"rain_24h","value":42},
	{"code":"rain_rate","value":3},
	{"code":"atmospheric_pressture","value":10132},
	{"code":"uv_index","value":5},
	{"code":"dew_point_temp","value":96},
	{"code":"feellike_temp","value":180},
	{"code":"battery_state","value":"high"}
]`

func TestServiceCurrentSuccess(t *testing.T) {
	var items []StatusItem
	require.NoError(t, json.Unmarshal([]byte(statusFixture), &items))
	client := &stubStatusClient{status: DeviceStatus{Items: items, Raw: json.RawMessage(statusFixture)}}
	publisher := &stubPublisher{}

	svc := newTestService(client, publisher)
	reading, err := svc.Current(context.Background())
	require.NoError(t, err)

	require.Equal(t, "dev-1", client.lastDeviceID)
	require.Equal(t, 1, client.calls)
	require.Equal(t, "2024-07-01T02:00:00.000Z", reading.Timestamp)
	require.JSONEq(t, `187`, string(reading.Temp))
	require.JSONEq(t, `55`, string(reading.Humidity))
	require.JSONEq(t, `12`, string(reading.WindSpeedAvg))
	require.JSONEq(t, `30`, string(reading.WindGust))
	require.JSONEq(t, `0`, string(reading.Rain1h))
	require.JSONEq(t, `42`, string(reading.Rain24h))
	require.JSONEq(t, `3`, string(reading.RainRate))
	require.JSONEq(t, `10132`, string(reading.Pressure))
	require.JSONEq(t, `5`, string(reading.UVIndex))
	require.JSONEq(t, `96`, string(reading.DewPoint))
	require.JSONEq(t, `180`, string(reading.FeelsLike))
	require.Equal(t, statusFixture, string(reading.Raw))
	require.Len(t, publisher.readings, 1)
}

func TestServiceCurrentEmptyStatus(t *testing.T) {
	svc := newTestService(&stubStatusClient{status: DeviceStatus{Raw: json.RawMessage(`[]`)}}, nil)

	reading, err := svc.Current(context.Background())
	require.NoError(t, err)
	_, err = time.Parse(time.RFC3339, reading.Timestamp)
	require.NoError(t, err)
	require.Nil(t, reading.Temp)
	require.Nil(t, reading.Humidity)
	require.Nil(t, reading.FeelsLike)
	require.JSONEq(t, `[]`, string(reading.Raw))
}

func TestServiceCurrentRejected(t *testing.T) {
	body := json.RawMessage(`{"success":false,"code":1106,"msg":"permission deny"}`)
	publisher := &stubPublisher{}
	svc := newTestService(&stubStatusClient{err: &RejectedError{Code: 1106, Message: "permission deny", Raw: body}}, publisher)

	_, err := svc.Current(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeNotSuccess))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Equal(t, body, appErr.Data)
	require.Empty(t, publisher.readings)
}

func TestServiceCurrentTransportFailure(t *testing.T) {
	svc := newTestService(&stubStatusClient{err: errors.New("timeout")}, nil)

	_, err := svc.Current(context.Background())
	require.True(t, apperrors.IsCode(err, CodeRequestFailed))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.EqualError(t, appErr.Err, "timeout")
	require.Nil(t, appErr.Data)
}

func TestServiceCurrentHTTPFailureKeepsBody(t *testing.T) {
	body := json.RawMessage(`{"msg":"bad gateway"}`)
	svc := newTestService(&stubStatusClient{err: &ResponseError{StatusCode: 502, Body: body}}, nil)

	_, err := svc.Current(context.Background())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Equal(t, CodeRequestFailed, appErr.Code)
	require.Equal(t, body, appErr.Data)
}

func TestServiceCurrentPublishFailureIgnored(t *testing.T) {
	svc := newTestService(&stubStatusClient{status: DeviceStatus{Raw: json.RawMessage(`[]`)}}, &stubPublisher{err: errors.New("broker down")})

	_, err := svc.Current(context.Background())
	require.NoError(t, err)
}

func newTestService(client StatusClient, publisher Publisher) *service {
	if publisher == nil {
		publisher = DiscardPublisher{}
	}
	return &service{
		cfg:       Config{DeviceID: "dev-1"},
		client:    client,
		publisher: publisher,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time {
			return mustParse("2024-07-01T10:00:00+08:00")
		},
	}
}

type stubStatusClient struct {
	status       DeviceStatus
	err          error
	lastDeviceID string
	calls        int
}

func (s *stubStatusClient) DeviceStatus(ctx context.Context, deviceID string) (DeviceStatus, error) {
	s.calls++
	s.lastDeviceID = deviceID
	if s.err != nil {
		return DeviceStatus{}, s.err
	}
	return s.status, nil
}

type stubPublisher struct {
	readings []Reading
	err      error
}

func (s *stubPublisher) Publish(ctx context.Context, reading Reading) error {
	if s.err != nil {
		return s.err
	}
	s.readings = append(s.readings, reading)
	return nil
}

func mustParse(value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return ts
}
