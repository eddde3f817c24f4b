// Package mqtt forwards attendance transition events to an MQTT broker so
// downstream systems (payroll, dashboards) can consume them as a stream.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/wrenchworks/dispatch/core/events"
	"github.com/wrenchworks/dispatch/infra/logger"
	"github.com/wrenchworks/dispatch/internal/eventbus"
)

// Config defines the connection parameters for the event forwarder.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
	TimeoutMS   int    `json:"timeout_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "dispatch-" + uuid.NewString()[:8]
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "dispatch/attendance"
	}
	if c.TimeoutMS == 0 {
		c.TimeoutMS = 5000
	}
}

// Validate checks mandatory fields when the forwarder is enabled.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("broker is required when mqtt is enabled")
	}
	return nil
}

// pahoClient is the slice of the Paho API the forwarder needs; tests swap it
// for a mock.
type pahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Forwarder publishes attendance events from the internal bus to the broker.
type Forwarder struct {
	cli     pahoClient
	prefix  string
	qos     byte
	timeout time.Duration
	log     logger.Logger
}

// NewForwarder connects to the broker.
func NewForwarder(cfg Config) (*Forwarder, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true)
	log := logger.New("mqtt-forwarder")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, token.Error())
	}
	return &Forwarder{
		cli:     cli,
		prefix:  cfg.TopicPrefix,
		qos:     cfg.QoS,
		timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		log:     log,
	}, nil
}

// Run consumes the bus until the context is cancelled. Non-attendance events
// are ignored; publish failures are logged, never retried here.
func (f *Forwarder) Run(ctx context.Context, bus eventbus.EventBus) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			topic, payload := f.encode(ev)
			if topic == "" {
				continue
			}
			if err := f.publish(topic, payload); err != nil {
				f.log.Errorf("publish %s: %v", topic, err)
			}
		}
	}
}

// encode maps an event to its topic suffix and JSON payload.
func (f *Forwarder) encode(ev eventbus.Event) (string, []byte) {
	var suffix string
	switch ev.(type) {
	case events.AttendanceCheckedIn:
		suffix = "checkin"
	case events.AttendanceCheckedOut:
		suffix = "checkout"
	case events.AttendanceReopened:
		suffix = "reopen"
	default:
		return "", nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		f.log.Errorf("encode %T: %v", ev, err)
		return "", nil
	}
	return f.prefix + "/" + suffix, payload
}

func (f *Forwarder) publish(topic string, payload []byte) error {
	token := f.cli.Publish(topic, f.qos, false, payload)
	if !token.WaitTimeout(f.timeout) {
		return fmt.Errorf("publish timeout after %s", f.timeout)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (f *Forwarder) Close() {
	f.cli.Disconnect(250)
}
