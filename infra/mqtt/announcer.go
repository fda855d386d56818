// Package mqtt publishes generated schedules to the microgrid's device
// controllers. It is an optional boundary adapter; the scheduling core
// never depends on it.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/microgrid/core/model"
	"github.com/kilianp07/microgrid/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT announcer.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
	Retain      bool   `json:"retain"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "microgrid-scheduler"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "microgrid"
	}
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// newMQTTClient builds the underlying Paho client. Tests override it.
var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Announcer publishes schedule summaries and per-slot setpoints.
type Announcer struct {
	cli    pahoClient
	prefix string
	qos    byte
	retain bool
	log    logger.Logger
}

// NewAnnouncer connects to the broker.
func NewAnnouncer(cfg Config) (*Announcer, error) {
	cfg.SetDefaults()
	log := logger.New("mqtt-announcer")
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true)
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Announcer{cli: cli, prefix: cfg.TopicPrefix, qos: cfg.QoS, retain: cfg.Retain, log: log}, nil
}

// summary is the retained per-schedule message.
type summary struct {
	ScheduleID string                    `json:"schedule_id"`
	Date       time.Time                 `json:"date"`
	Mode       string                    `json:"mode"`
	FinalSoC   float64                   `json:"final_soc"`
	Metrics    model.OptimizationMetrics `json:"metrics"`
}

// AnnounceSchedule publishes the run summary and one setpoint message per
// slot under <prefix>/<microgrid_id>/schedule and .../slots.
func (a *Announcer) AnnounceSchedule(s *model.Schedule) error {
	base := fmt.Sprintf("%s/%s", a.prefix, s.MicrogridID)
	sum, err := json.Marshal(summary{
		ScheduleID: s.ID,
		Date:       s.Date,
		Mode:       s.Mode.String(),
		FinalSoC:   s.FinalSoC,
		Metrics:    s.Metrics,
	})
	if err != nil {
		return err
	}
	if err := a.publish(base+"/schedule", sum, true); err != nil {
		return err
	}
	for _, slot := range s.Slots {
		payload, err := json.Marshal(slot)
		if err != nil {
			return err
		}
		if err := a.publish(base+"/slots", payload, false); err != nil {
			return err
		}
	}
	a.log.Infof("announced schedule %s (%d slots)", s.ID, len(s.Slots))
	return nil
}

func (a *Announcer) publish(topic string, payload []byte, retain bool) error {
	token := a.cli.Publish(topic, a.qos, retain && a.retain, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (a *Announcer) Close() {
	if a.cli != nil && a.cli.IsConnected() {
		a.cli.Disconnect(250)
	}
}
