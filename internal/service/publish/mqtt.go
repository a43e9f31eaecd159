package publish

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"facegreeter/internal/config"
	"facegreeter/internal/logger"
	"facegreeter/internal/model"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ErrConnectPending means the broker was not reachable within the connect wait. The client
// keeps retrying in the background and Publish starts succeeding once it connects.
var ErrConnectPending = errors.New("mqtt broker not reachable yet")

const defaultConnectWait = 5 * time.Second

// MQTTPublisher publishes greeting events as JSON to an MQTT topic.
type MQTTPublisher struct {
	cfg         config.MQTTConfig
	client      mqtt.Client
	logger      *logger.Logger
	connectWait time.Duration

	mu        sync.RWMutex
	connected bool
}

func NewMQTTPublisher(cfg config.MQTTConfig, logger *logger.Logger) *MQTTPublisher {
	return &MQTTPublisher{cfg: cfg, logger: logger, connectWait: defaultConnectWait}
}

// Connect starts the client and waits briefly for the first connection. A broker that is
// down yields ErrConnectPending while the client keeps retrying; the publisher stays usable.
func (p *MQTTPublisher) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(p.cfg.Broker)
	opts.SetClientID(p.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		p.setConnected(true)
		p.logger.Info("MQTT connected to %s", p.cfg.Broker)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		p.setConnected(false)
		p.logger.Warning("MQTT connection lost, reconnecting: %v", err)
	}

	p.client = mqtt.NewClient(opts)

	token := p.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		p.Disconnect()
		return fmt.Errorf("mqtt connection cancelled: %w", ctx.Err())
	case <-time.After(p.connectWait):
		return fmt.Errorf("%w: %s", ErrConnectPending, p.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		p.Disconnect()
		return fmt.Errorf("mqtt connection failed: %w", err)
	}

	p.setConnected(true)
	return nil
}

func (p *MQTTPublisher) Name() string {
	return "mqtt"
}

func (p *MQTTPublisher) Publish(ctx context.Context, event model.GreetingEvent) error {
	if !p.isConnected() {
		return fmt.Errorf("%w: mqtt not connected", model.ErrExternalService)
	}

	payload, err := Encode(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	token := p.client.Publish(p.cfg.Topic, 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: mqtt publish cancelled: %v", model.ErrExternalService, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: mqtt publish failed: %v", model.ErrExternalService, err)
	}
	return nil
}

// Disconnect closes the broker connection and stops any pending reconnect attempts.
func (p *MQTTPublisher) Disconnect() {
	if p.client != nil {
		p.client.Disconnect(250)
		p.logger.Info("MQTT disconnected")
	}
	p.setConnected(false)
}

func (p *MQTTPublisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

func (p *MQTTPublisher) isConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}
