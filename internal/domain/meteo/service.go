package meteo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/meteo-tuya/pkg/errors"
)

// Error codes surfaced to API consumers.
const (
	CodeNotSuccess    = "tuya_not_success"
	CodeRequestFailed = "tuya_request_failed"
)

// timestampLayout matches ISO-8601 UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Service exposes the current weather reading of the configured station.
type Service interface {
	Current(ctx context.Context) (Reading, error)
}

// StatusClient queries the vendor cloud for a device's status.
type StatusClient interface {
	DeviceStatus(ctx context.Context, deviceID string) (DeviceStatus, error)
}

// Publisher forwards readings to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, reading Reading) error
}

// DiscardPublisher drops every reading.
type DiscardPublisher struct{}

// Publish implements Publisher.
func (DiscardPublisher) Publish(context.Context, Reading) error { return nil }

type service struct {
	cfg       Config
	client    StatusClient
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires up the meteo domain.
func NewService(cfg Config, client StatusClient, publisher Publisher, logger *slog.Logger) Service {
	if publisher == nil {
		publisher = DiscardPublisher{}
	}
	return &service{
		cfg:       cfg,
		client:    client,
		publisher: publisher,
		logger:    logger.With("component", "meteo.service"),
		now:       time.Now,
	}
}

func (s *service) Current(ctx context.Context) (Reading, error) {
	status, err := s.client.DeviceStatus(ctx, s.cfg.DeviceID)
	if err != nil {
		return Reading{}, s.classify(err)
	}
	s.logger.Debug("tuya device status fetched", "device_id", s.cfg.DeviceID, "items", len(status.Items), "raw", string(status.Raw))

	reading := buildReading(s.now().UTC().Format(timestampLayout), status)

	if err := s.publisher.Publish(ctx, reading); err != nil {
		s.logger.Warn("publish reading failed", "device_id", s.cfg.DeviceID, "error", err)
	}
	return reading, nil
}

func (s *service) classify(err error) error {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		s.logger.Error("tuya reported failure", "device_id", s.cfg.DeviceID, "code", rejected.Code, "msg", rejected.Message, "raw", string(rejected.Raw))
		return apperrors.WrapWithData(CodeNotSuccess, "tuya reported failure", nullable(rejected.Raw), err)
	}

	var data json.RawMessage
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		data = nullable(respErr.Body)
	}
	s.logger.Error("tuya request failed", "device_id", s.cfg.DeviceID, "error", err, "raw", string(data))
	return apperrors.WrapWithData(CodeRequestFailed, "tuya request failed", data, err)
}

// nullable collapses empty payloads so they serialize as null.
func nullable(raw json.RawMessage) json.RawMessage {
	if strings.TrimSpace(string(raw)) == "" {
		return nil
	}
	return raw
}
