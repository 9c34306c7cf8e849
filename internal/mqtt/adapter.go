package mqtt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/wheelibin/merossd/internal/bridge"
	"github.com/wheelibin/merossd/internal/models"
)

const commandTimeout = 10 * time.Second

type Config struct {
	Broker          string
	Username        string
	Password        string
	TopicPrefix     string
	DiscoveryPrefix string
}

type commandHandler interface {
	Devices() []models.DeviceIdentity
	HandleCommand(ctx context.Context, id string, cmd bridge.Command) error
	SetLogLevel(level string) error
}

// Adapter exposes every registered device to Home Assistant as a light and
// feeds its commands into the bridge.
type Adapter struct {
	client  pahomqtt.Client
	handler commandHandler
	cfg     Config
	logger  *log.Logger
	ctx     context.Context
	cancel  context.CancelFunc

	// in-flight command handlers
	inflight sync.WaitGroup

	mu     sync.Mutex
	states map[string]map[string]any
}

func newAdapter(logger *log.Logger, handler commandHandler, cfg Config) *Adapter {
	ctx, cancel := context.WithCancel(context.Background())
	return &Adapter{
		handler: handler,
		cfg:     cfg,
		logger:  logger.With("component", "mqtt"),
		ctx:     ctx,
		cancel:  cancel,
		states:  map[string]map[string]any{},
	}
}

// NewAdapter creates the adapter and connects to the broker. Discovery and
// command subscriptions are (re)published on every connect.
func NewAdapter(logger *log.Logger, handler commandHandler, cfg Config) (*Adapter, error) {
	a := newAdapter(logger, handler, cfg)

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID("merossd-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetOrderMatters(false).
		SetWill(availabilityTopic(cfg.TopicPrefix), "offline", 1, true).
		SetOnConnectHandler(func(_ pahomqtt.Client) {
			a.logger.Info("connected", "broker", cfg.Broker)
			a.onConnect()
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			a.logger.Warn("connection lost", "err", err)
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	a.client = client
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		a.cancel()
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		a.cancel()
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return a, nil
}

// Stop publishes the offline availability and disconnects
func (a *Adapter) Stop() {
	a.cancel()
	a.inflight.Wait()
	a.publish(availabilityTopic(a.cfg.TopicPrefix), []byte("offline"), true)
	a.client.Disconnect(1000)
	a.logger.Info("stopped")
}

func (a *Adapter) onConnect() {
	a.publish(availabilityTopic(a.cfg.TopicPrefix), []byte("online"), true)

	for _, device := range a.handler.Devices() {
		msg := buildDiscovery(device, a.cfg)
		a.publish(msg.Topic, msg.Payload, true)

		a.client.Subscribe(commandTopic(a.cfg.TopicPrefix, device), 1, a.commandHandler(device.ID))
		a.logger.Debug("published discovery", "device", device.ID)
	}

	a.client.Subscribe(logLevelTopic(a.cfg.TopicPrefix), 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		a.handleLogLevel(msg.Payload())
	})
}

// commandHandler hands each message to its own goroutine. Device calls can
// block for the whole command timeout and must not hold up other devices;
// commands for the same device are serialised by the translator.
func (a *Adapter) commandHandler(id string) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		payload := msg.Payload()
		a.inflight.Add(1)
		go func() {
			defer a.inflight.Done()
			a.handleCommand(id, payload)
		}()
	}
}

func (a *Adapter) handleCommand(id string, payload []byte) {
	in, err := decodeCommand(payload)
	if err != nil {
		a.logger.Warn("ignoring command", "device", id, "err", err)
		return
	}
	cmd, err := toBridgeCommand(in)
	if err != nil {
		a.logger.Warn("ignoring command", "device", id, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(a.ctx, commandTimeout)
	defer cancel()

	if err := a.handler.HandleCommand(ctx, id, cmd); err != nil {
		a.logger.Warn("command failed", "device", id, "err", err)
		return
	}

	a.mu.Lock()
	state, ok := a.states[id]
	if !ok {
		state = map[string]any{}
		a.states[id] = state
	}
	applyCommand(state, in)
	out := mustJSON(state)
	a.mu.Unlock()

	a.publish(a.stateTopicFor(id), out, true)
}

func (a *Adapter) handleLogLevel(payload []byte) {
	level := strings.TrimSpace(string(payload))
	if err := a.handler.SetLogLevel(level); err != nil {
		a.logger.Warn("ignoring log level", "level", level, "err", err)
		return
	}
	a.logger.Info("log level changed", "level", level)
}

func (a *Adapter) stateTopicFor(id string) string {
	return stateTopic(a.cfg.TopicPrefix, models.DeviceIdentity{ID: id})
}

func (a *Adapter) publish(topic string, payload []byte, retained bool) {
	token := a.client.Publish(topic, 1, retained, payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			a.logger.Warn("publish timeout", "topic", topic)
		} else if err := token.Error(); err != nil {
			a.logger.Warn("publish error", "topic", topic, "err", err)
		}
	}()
}
