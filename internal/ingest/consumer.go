package ingest

import (
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/5ivekayri/DWv2/internal/health"
	"github.com/5ivekayri/DWv2/internal/station"
)

// Topic all stations publish measurements to.
const Topic = "weather/stations/+/measurements"

// Config holds MQTT broker settings.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	ClientID  string
	Keepalive time.Duration
}

// Consumer subscribes to the station measurement topic and persists valid
// payloads into the observation store. Duplicates (same station and
// timestamp) are ignored.
type Consumer struct {
	client mqtt.Client
	store  *station.Store
	health *health.Registry // optional
}

// NewConsumer builds a Consumer. The registry may be nil.
func NewConsumer(cfg Config, store *station.Store, registry *health.Registry) *Consumer {
	c := &Consumer{
		store:  store,
		health: registry,
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "dwv2-consumer-" + uuid.NewString()[:8]
	}
	keepalive := cfg.Keepalive
	if keepalive <= 0 {
		keepalive = 60 * time.Second
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)).
		SetClientID(clientID).
		SetKeepAlive(keepalive).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Printf("ingest: connected to MQTT broker, subscribing to %s", Topic)
		if token := client.Subscribe(Topic, 0, c.handleMessage); token.Wait() && token.Error() != nil {
			log.Printf("ingest: subscribe failed: %v", token.Error())
		}
	})

	c.client = mqtt.NewClient(opts)
	return c
}

// Start connects to the broker. Message handling happens on paho's
// goroutines after the subscription is established.
func (c *Consumer) Start() error {
	token := c.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to MQTT broker: %w", err)
	}
	return nil
}

// Stop disconnects from the broker.
func (c *Consumer) Stop() {
	c.client.Disconnect(250)
}

func (c *Consumer) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	c.Ingest(msg.Topic(), msg.Payload())
}

// Ingest validates and stores one raw message. Split out from the MQTT
// callback so it can be driven directly in tests.
func (c *Consumer) Ingest(topic string, payload []byte) {
	obs, err := ParsePayload(topic, payload)
	if err != nil {
		log.Printf("ingest: dropping message from %s: %v", topic, err)
		return
	}

	if !c.store.Add(obs) {
		log.Printf("ingest: duplicate observation ignored for station %s", obs.StationID)
		return
	}
	if c.health != nil {
		c.health.RecordStationHeartbeat(obs.StationID, obs.ObservedAt)
	}
	log.Printf("ingest: stored observation for station %s at %s", obs.StationID, obs.ObservedAt.Format(time.RFC3339))
}
