package notify

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"patroltrack/internal/config"
	"patroltrack/internal/logger"
	pkgmqtt "patroltrack/pkg/mqtt"
)

// IncidentEvent is published when an incident is reported, assigned or
// resolved so mobile clients can react without waiting for the next poll.
type IncidentEvent struct {
	Event         string    `json:"event"`
	IncidentID    string    `json:"incident_id"`
	Seq           int64     `json:"seq"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Location      string    `json:"location"`
	AssignedTanod string    `json:"assigned_tanod,omitempty"`
	Time          time.Time `json:"time"`
}

// PatrolEvent is published on time-in/time-out and duty status changes.
type PatrolEvent struct {
	Event    string    `json:"event"`
	Username string    `json:"username"`
	Action   string    `json:"action"`
	Status   string    `json:"status,omitempty"`
	Location string    `json:"location,omitempty"`
	Time     time.Time `json:"time"`
}

// Publisher fans out events to subscribed clients. Publishing is strictly
// best effort: a failed or missing broker never fails the originating
// operation.
type Publisher interface {
	PublishIncident(evt *IncidentEvent)
	PublishPatrol(evt *PatrolEvent)
}

// MQTTPublisher publishes events over an MQTT broker.
type MQTTPublisher struct {
	client        *pkgmqtt.Client
	incidentTopic string
	patrolTopic   string
}

func NewMQTTPublisher(cfg *config.MQTTConfig) (*MQTTPublisher, error) {
	client := pkgmqtt.NewClient(&pkgmqtt.Config{
		Broker:         cfg.Broker,
		ClientID:       cfg.ClientID,
		Username:       cfg.Username,
		Password:       cfg.Password,
		KeepAlive:      cfg.KeepAlive,
		ConnectTimeout: cfg.ConnectTimeout,
		QoS:            byte(cfg.QoS),
	})

	if err := client.Connect(); err != nil {
		return nil, err
	}

	return &MQTTPublisher{
		client:        client,
		incidentTopic: cfg.IncidentTopic,
		patrolTopic:   cfg.PatrolTopic,
	}, nil
}

func (p *MQTTPublisher) PublishIncident(evt *IncidentEvent) {
	p.publish(p.incidentTopic, evt)
}

func (p *MQTTPublisher) PublishPatrol(evt *PatrolEvent) {
	p.publish(p.patrolTopic, evt)
}

func (p *MQTTPublisher) publish(topic string, evt interface{}) {
	payload, err := json.Marshal(evt)
	if err != nil {
		logger.Warn("Failed to encode push event", zap.Error(err))
		return
	}

	if err := p.client.Publish(topic, false, payload); err != nil {
		logger.Warn("Failed to publish push event",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect()
}

// NopPublisher is used when no broker is configured; clients fall back to
// the polling updates feed.
type NopPublisher struct{}

func (NopPublisher) PublishIncident(*IncidentEvent) {}

func (NopPublisher) PublishPatrol(*PatrolEvent) {}
