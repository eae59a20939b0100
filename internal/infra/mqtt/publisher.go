package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/yanqian/meteo-tuya/internal/domain/meteo"
)

const publishTimeout = 5 * time.Second

// Config describes the broker and topic readings are forwarded to.
type Config struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
	Retained bool
}

// Publisher forwards readings to an MQTT topic.
type Publisher struct {
	client    paho.Client
	cfg       Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPublisher prepares a client; call Connect before publishing.
func NewPublisher(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if strings.TrimSpace(cfg.Broker) == "" {
		return nil, errors.New("mqtt broker cannot be empty")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("mqtt topic cannot be empty")
	}
	if cfg.QoS > 2 {
		return nil, fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", cfg.QoS)
	}

	p := &Publisher{
		cfg:    cfg,
		logger: logger.With("component", "mqtt.publisher"),
		stopCh: make(chan struct{}),
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ paho.Client) {
		p.setConnected(true)
		p.logger.Info("mqtt connected", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.setConnected(false)
		p.logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = paho.NewClient(opts)
	return p, nil
}

// Connect waits for the initial broker connection, honouring ctx and Disconnect.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return errors.New("publisher stopped")
	default:
	}

	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return errors.New("publisher stopped")
		default:
		}
	}
}

// Publish implements meteo.Publisher.
func (p *Publisher) Publish(ctx context.Context, reading meteo.Reading) error {
	if !p.IsConnected() {
		return errors.New("mqtt client not connected")
	}

	data, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	token := p.client.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retained, data)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish timeout for topic %s", p.cfg.Topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish reading: %w", err)
	}

	p.logger.Debug("published reading", "topic", p.cfg.Topic, "timestamp", reading.Timestamp)
	return nil
}

// IsConnected returns whether the client is connected.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the client. Safe to call multiple times.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	if p.client != nil {
		p.client.Disconnect(250)
	}
	p.setConnected(false)
	p.logger.Info("mqtt disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

var _ meteo.Publisher = (*Publisher)(nil)
