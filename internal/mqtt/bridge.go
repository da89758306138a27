package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/dm/voltie-go/internal/engine"
	"github.com/dm/voltie-go/internal/entity"
)

const (
	payloadOnline  = "online"
	payloadOffline = "offline"
	payloadOn      = "ON"
	payloadOff     = "OFF"

	publishTimeout = 5 * time.Second
)

// Client is the subset of paho.Client the bridge needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

type Config struct {
	DiscoveryPrefix string
	TopicPrefix     string
	QoS             byte
}

// Bridge mirrors charger caches onto MQTT using Home Assistant discovery and
// turns switch commands into controller calls.
type Bridge struct {
	client    Client
	cfg       Config
	instances []*engine.Instance
	log       zerolog.Logger

	mu       sync.Mutex
	detach   []func()
	commands sync.WaitGroup
	stopped  bool
	ctx      context.Context
}

func (c Config) withDefaults() Config {
	if c.DiscoveryPrefix == "" {
		c.DiscoveryPrefix = "homeassistant"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "voltie"
	}
	return c
}

// BridgeTopic carries the bridge's own availability. Use it as the broker
// will topic so chargers go unavailable when the bridge dies.
func (c Config) BridgeTopic() string {
	return c.withDefaults().TopicPrefix + "/bridge"
}

func NewBridge(client Client, cfg Config, instances []*engine.Instance, log zerolog.Logger) *Bridge {
	return &Bridge{client: client, cfg: cfg.withDefaults(), instances: instances, log: log}
}

func (b *Bridge) BridgeTopic() string {
	return b.cfg.BridgeTopic()
}

func (b *Bridge) baseTopic(name string) string {
	return b.cfg.TopicPrefix + "/" + name
}

func (b *Bridge) stateTopic(name string) string        { return b.baseTopic(name) + "/state" }
func (b *Bridge) availabilityTopic(name string) string { return b.baseTopic(name) + "/availability" }
func (b *Bridge) commandTopic(name string) string      { return b.baseTopic(name) + "/switch/set" }

func (b *Bridge) discoveryTopic(name string, d entity.Descriptor) string {
	return fmt.Sprintf("%s/%s/voltie_%s/%s/config", b.cfg.DiscoveryPrefix, d.Kind, name, d.Key)
}

// Start announces every entity, subscribes to switch commands and begins
// publishing state after each refresh. Commands run under ctx.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	if err := b.publish(b.BridgeTopic(), true, payloadOnline); err != nil {
		return err
	}

	for _, inst := range b.instances {
		for _, d := range entity.Catalogue() {
			payload, err := json.Marshal(b.discoveryConfig(inst.Name, d))
			if err != nil {
				return fmt.Errorf("encode discovery for %s: %w", d.Key, err)
			}
			if err := b.publish(b.discoveryTopic(inst.Name, d), true, payload); err != nil {
				return err
			}
		}

		inst := inst
		token := b.client.Subscribe(b.commandTopic(inst.Name), b.cfg.QoS, func(_ paho.Client, msg paho.Message) {
			b.handleCommand(inst, msg)
		})
		if err := wait(token); err != nil {
			return fmt.Errorf("subscribe %s: %w", b.commandTopic(inst.Name), err)
		}

		// publishing waits on the broker, keep it off the polling goroutine
		detach := inst.Cache.SubscribeLatest(func(st engine.State) { b.publishState(inst.Name, st) })
		b.mu.Lock()
		b.detach = append(b.detach, detach)
		b.mu.Unlock()

		if st := inst.Cache.State(); st.Ready() {
			b.publishState(inst.Name, st)
		}
	}
	b.log.Info().Int("chargers", len(b.instances)).Msg("mqtt bridge started")
	return nil
}

// Stop detaches from the caches, waits for running commands and marks every
// charger offline.
func (b *Bridge) Stop() {
	b.mu.Lock()
	detach := b.detach
	b.detach = nil
	b.stopped = true
	b.mu.Unlock()
	for _, fn := range detach {
		fn()
	}

	topics := make([]string, 0, len(b.instances))
	for _, inst := range b.instances {
		topics = append(topics, b.commandTopic(inst.Name))
	}
	if len(topics) > 0 {
		_ = wait(b.client.Unsubscribe(topics...))
	}
	b.commands.Wait()

	for _, inst := range b.instances {
		_ = b.publish(b.availabilityTopic(inst.Name), true, payloadOffline)
	}
	_ = b.publish(b.BridgeTopic(), true, payloadOffline)
}

type availability struct {
	Topic string `json:"topic"`
}

type discoveryConfig struct {
	Name              string            `json:"name"`
	UniqueID          string            `json:"unique_id"`
	ObjectID          string            `json:"object_id"`
	StateTopic        string            `json:"state_topic"`
	ValueTemplate     string            `json:"value_template"`
	Availability      []availability    `json:"availability"`
	AvailabilityMode  string            `json:"availability_mode"`
	CommandTopic      string            `json:"command_topic,omitempty"`
	PayloadOn         string            `json:"payload_on,omitempty"`
	PayloadOff        string            `json:"payload_off,omitempty"`
	UnitOfMeasurement string            `json:"unit_of_measurement,omitempty"`
	DeviceClass       string            `json:"device_class,omitempty"`
	StateClass        string            `json:"state_class,omitempty"`
	Icon              string            `json:"icon,omitempty"`
	Device            entity.DeviceInfo `json:"device"`
}

func (b *Bridge) discoveryConfig(name string, d entity.Descriptor) discoveryConfig {
	cfg := discoveryConfig{
		Name:          d.DisplayName(name),
		UniqueID:      d.UniqueID(name),
		ObjectID:      d.UniqueID(name),
		StateTopic:    b.stateTopic(name),
		ValueTemplate: "{{ value_json." + d.Key + " }}",
		Availability: []availability{
			{Topic: b.BridgeTopic()},
			{Topic: b.availabilityTopic(name)},
		},
		AvailabilityMode:  "all",
		UnitOfMeasurement: d.Unit,
		DeviceClass:       d.DeviceClass,
		StateClass:        d.StateClass,
		Icon:              d.Icon,
		Device:            entity.Device(name),
	}
	switch d.Kind {
	case entity.KindBinarySensor:
		cfg.PayloadOn, cfg.PayloadOff = payloadOn, payloadOff
	case entity.KindSwitch:
		cfg.PayloadOn, cfg.PayloadOff = payloadOn, payloadOff
		cfg.CommandTopic = b.commandTopic(name)
	}
	return cfg
}

// StatePayload renders every reading of st as the JSON document consumed by
// the value templates. Unavailable sensors are null.
func StatePayload(st engine.State) ([]byte, error) {
	doc := make(map[string]any)
	for _, r := range entity.Project(st.Snapshot) {
		switch {
		case !r.Available:
			doc[r.Key] = nil
		case r.Kind == entity.KindSensor:
			doc[r.Key] = r.Value
		default:
			doc[r.Key] = r.State()
		}
	}
	return json.Marshal(doc)
}

func (b *Bridge) publishState(name string, st engine.State) {
	avail := payloadOnline
	if !st.Ready() || st.LastError != nil {
		avail = payloadOffline
	}
	if err := b.publish(b.availabilityTopic(name), true, avail); err != nil {
		b.log.Warn().Err(err).Str("charger", name).Msg("publish availability")
	}
	if !st.Ready() {
		return
	}

	payload, err := StatePayload(st)
	if err != nil {
		b.log.Error().Err(err).Str("charger", name).Msg("encode state")
		return
	}
	if err := b.publish(b.stateTopic(name), false, payload); err != nil {
		b.log.Warn().Err(err).Str("charger", name).Msg("publish state")
	}
}

func (b *Bridge) handleCommand(inst *engine.Instance, msg paho.Message) {
	payload := strings.ToUpper(strings.TrimSpace(string(msg.Payload())))

	var cmd engine.Command
	switch payload {
	case payloadOn:
		cmd = engine.CommandStart
	case payloadOff:
		cmd = engine.CommandStop
	default:
		b.log.Warn().Str("charger", inst.Name).Str("payload", payload).Msg("ignoring switch command")
		return
	}

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		b.log.Warn().Str("charger", inst.Name).Str("payload", payload).Msg("bridge stopped, dropping switch command")
		return
	}
	ctx := b.ctx
	// Add under mu so Stop never waits on a counter that is still growing
	b.commands.Add(1)
	b.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	// paho delivers messages sequentially; the settle delay must not block it
	go func() {
		defer b.commands.Done()
		inst.Controller.Execute(ctx, cmd)
	}()
}

func (b *Bridge) publish(topic string, retained bool, payload interface{}) error {
	if err := wait(b.client.Publish(topic, b.cfg.QoS, retained, payload)); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func wait(t paho.Token) error {
	if !t.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out after %s", publishTimeout)
	}
	return t.Error()
}
