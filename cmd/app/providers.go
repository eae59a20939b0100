package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/meteo-tuya/internal/domain/meteo"
	"github.com/yanqian/meteo-tuya/internal/infra/config"
	"github.com/yanqian/meteo-tuya/internal/infra/mqtt"
	"github.com/yanqian/meteo-tuya/internal/infra/tokenstore"
	"github.com/yanqian/meteo-tuya/internal/infra/tuya"
)

func provideMeteoConfig(cfg *config.Config) meteo.Config {
	return meteo.Config{DeviceID: cfg.Tuya.DeviceID}
}

func provideTuyaClient(cfg *config.Config, store tuya.TokenStore, logger *slog.Logger) (*tuya.Client, error) {
	return tuya.NewClient(tuya.Config{
		BaseURL:      cfg.Tuya.BaseURL,
		AccessID:     cfg.Tuya.AccessID,
		AccessSecret: cfg.Tuya.AccessSecret,
		Timeout:      cfg.Tuya.Timeout,
	}, store, logger)
}

func provideTokenStore(cfg *config.Config, logger *slog.Logger) (tuya.TokenStore, func()) {
	noop := func() {}
	if !cfg.TokenCache.Valkey.Enabled {
		return tokenstore.NewMemoryStore(), noop
	}
	opt, err := buildValkeyOptions(cfg.TokenCache.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory token store", "error", err)
		return tokenstore.NewMemoryStore(), noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory token store", "error", err)
		return tokenstore.NewMemoryStore(), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory token store", "error", err)
		client.Close()
		return tokenstore.NewMemoryStore(), noop
	}
	logger.Info("valkey token store enabled", "addr", cfg.TokenCache.Valkey.Addr)
	return tokenstore.NewValkeyStore(client, cfg.TokenCache.Valkey.Prefix), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func providePublisher(cfg *config.Config, logger *slog.Logger) (meteo.Publisher, func()) {
	noop := func() {}
	if !cfg.MQTT.Enabled {
		return meteo.DiscardPublisher{}, noop
	}
	publisher, err := mqtt.NewPublisher(mqtt.Config{
		Broker:   cfg.MQTT.Broker,
		ClientID: cfg.MQTT.ClientID,
		Topic:    cfg.MQTT.Topic,
		QoS:      byte(cfg.MQTT.QoS),
		Retained: cfg.MQTT.Retained,
	}, logger)
	if err != nil {
		logger.Error("invalid mqtt configuration, readings will not be published", "error", err)
		return meteo.DiscardPublisher{}, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := publisher.Connect(ctx); err != nil {
		// the client keeps retrying in the background
		logger.Warn("mqtt broker not reachable yet", "broker", cfg.MQTT.Broker, "error", err)
	}
	return publisher, publisher.Disconnect
}

// provideNoPublisher keeps one-shot commands from forwarding readings.
func provideNoPublisher() meteo.Publisher {
	return meteo.DiscardPublisher{}
}
