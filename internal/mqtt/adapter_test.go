package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wheelibin/merossd/internal/bridge"
	"github.com/wheelibin/merossd/internal/models"
)

var testConfig = Config{TopicPrefix: "merossd", DiscoveryPrefix: "homeassistant"}

var lamp = models.DeviceIdentity{ID: "Desk.Lamp", Name: "Desk lamp", Address: "10.0.0.9", Secret: "s3cret"}

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (doneToken) Error() error { return nil }

type published struct {
	topic    string
	payload  []byte
	retained bool
}

// fakeClient records publishes and subscriptions; anything else panics
type fakeClient struct {
	pahomqtt.Client

	mu         sync.Mutex
	published  []published
	subscribed map[string]pahomqtt.MessageHandler
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{topic: topic, payload: payload.([]byte), retained: retained})
	return doneToken{}
}

func (f *fakeClient) Subscribe(topic string, qos byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribed == nil {
		f.subscribed = map[string]pahomqtt.MessageHandler{}
	}
	f.subscribed[topic] = callback
	return doneToken{}
}

func (f *fakeClient) last(topic string) (published, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.published) - 1; i >= 0; i-- {
		if f.published[i].topic == topic {
			return f.published[i], true
		}
	}
	return published{}, false
}

var strip = models.DeviceIdentity{ID: "strip", Name: "Strip", Address: "10.0.0.10", Secret: "x"}

type fakeMessage struct {
	pahomqtt.Message
	payload []byte
}

func (m fakeMessage) Payload() []byte {
	return m.payload
}

type fakeHandler struct {
	err     error
	level   string
	devices []models.DeviceIdentity
	// commands for these device ids wait until the channel is closed
	blocked map[string]chan struct{}

	mu       sync.Mutex
	commands []bridge.Command
}

func (h *fakeHandler) Devices() []models.DeviceIdentity {
	if h.devices == nil {
		return []models.DeviceIdentity{lamp}
	}
	return h.devices
}

func (h *fakeHandler) HandleCommand(ctx context.Context, id string, cmd bridge.Command) error {
	if wait, ok := h.blocked[id]; ok {
		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = append(h.commands, cmd)
	return h.err
}

func (h *fakeHandler) SetLogLevel(level string) error {
	if level == "loud" {
		return errors.New("unknown level")
	}
	h.level = level
	return nil
}

func newTestAdapter(handler *fakeHandler) (*Adapter, *fakeClient) {
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
	a := newAdapter(logger, handler, testConfig)
	client := &fakeClient{}
	a.client = client
	return a, client
}

func Test_BuildDiscovery(t *testing.T) {

	t.Run("should describe a json schema light with hs and xy colour", func(t *testing.T) {
		msg := buildDiscovery(lamp, testConfig)

		assert.Equal(t, "homeassistant/light/meross_desk_lamp/light/config", msg.Topic)

		var payload haLight
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "json", payload.Schema)
		assert.Equal(t, "Desk lamp", payload.Name)
		assert.Equal(t, "merossd/desk_lamp", payload.StateTopic)
		assert.Equal(t, "merossd/desk_lamp/set", payload.CommandTopic)
		assert.Equal(t, "merossd/bridge/state", payload.AvailabilityTopic)
		assert.Equal(t, 254, payload.BrightnessScale)
		assert.ElementsMatch(t, []string{"hs", "xy"}, payload.SupportedColorModes)
	})

	t.Run("should never include the device secret", func(t *testing.T) {
		msg := buildDiscovery(lamp, testConfig)

		assert.NotContains(t, string(msg.Payload), lamp.Secret)
	})
}

func Test_ToBridgeCommand(t *testing.T) {

	decode := func(t *testing.T, payload string) bridge.Command {
		t.Helper()
		in, err := decodeCommand([]byte(payload))
		require.NoError(t, err)
		cmd, err := toBridgeCommand(in)
		require.NoError(t, err)
		return cmd
	}

	t.Run("should map state and brightness", func(t *testing.T) {
		cmd := decode(t, `{"state":"ON","brightness":127}`)

		require.NotNil(t, cmd.On)
		assert.True(t, *cmd.On)
		require.NotNil(t, cmd.Brightness)
		assert.Equal(t, 127, *cmd.Brightness)
		assert.Nil(t, cmd.Color)
	})

	t.Run("should rescale hs from degrees and percent", func(t *testing.T) {
		cmd := decode(t, `{"color":{"h":120,"s":100}}`)

		require.NotNil(t, cmd.Color)
		assert.Equal(t, 85, cmd.Color.Hue)
		assert.Equal(t, 254, cmd.Color.Saturation)
		assert.Nil(t, cmd.On)
	})

	t.Run("out of range hs: should clamp", func(t *testing.T) {
		cmd := decode(t, `{"color":{"h":400,"s":-5}}`)

		assert.Equal(t, 254, cmd.Color.Hue)
		assert.Equal(t, 0, cmd.Color.Saturation)
	})

	t.Run("should pass xy through", func(t *testing.T) {
		cmd := decode(t, `{"color":{"x":0.3,"y":0.4}}`)

		require.NotNil(t, cmd.XY)
		assert.Equal(t, 0.3, cmd.XY.X)
		assert.Equal(t, 0.4, cmd.XY.Y)
	})

	t.Run("unknown state: should return an error", func(t *testing.T) {
		in, err := decodeCommand([]byte(`{"state":"TOGGLE"}`))
		require.NoError(t, err)

		_, err = toBridgeCommand(in)

		assert.Error(t, err)
	})

	t.Run("invalid json: should return an error", func(t *testing.T) {
		_, err := decodeCommand([]byte(`{`))

		assert.Error(t, err)
	})
}

func Test_Adapter(t *testing.T) {

	t.Run("on connect: should announce availability, discovery and subscriptions", func(t *testing.T) {
		a, client := newTestAdapter(&fakeHandler{})

		a.onConnect()

		availability, ok := client.last("merossd/bridge/state")
		require.True(t, ok)
		assert.Equal(t, "online", string(availability.payload))
		assert.True(t, availability.retained)
		_, ok = client.last("homeassistant/light/meross_desk_lamp/light/config")
		assert.True(t, ok)
		assert.Contains(t, client.subscribed, "merossd/desk_lamp/set")
		assert.Contains(t, client.subscribed, "merossd/bridge/log_level/set")
	})

	t.Run("successful command: should publish the confirmed state", func(t *testing.T) {
		// arrange
		handler := &fakeHandler{}
		a, client := newTestAdapter(handler)

		// act
		a.handleCommand(lamp.ID, []byte(`{"state":"ON","brightness":200,"color":{"h":120,"s":50}}`))

		// assert
		require.Len(t, handler.commands, 1)
		state, ok := client.last("merossd/desk_lamp")
		require.True(t, ok)
		assert.True(t, state.retained)
		assert.JSONEq(t, `{"state":"ON","brightness":200,"color_mode":"hs","color":{"h":120,"s":50}}`, string(state.payload))
	})

	t.Run("off: should keep the last brightness", func(t *testing.T) {
		a, client := newTestAdapter(&fakeHandler{})

		a.handleCommand(lamp.ID, []byte(`{"state":"ON","brightness":10}`))
		a.handleCommand(lamp.ID, []byte(`{"state":"OFF"}`))

		state, ok := client.last("merossd/desk_lamp")
		require.True(t, ok)
		assert.JSONEq(t, `{"state":"OFF","brightness":10}`, string(state.payload))
	})

	t.Run("failed command: should not publish state", func(t *testing.T) {
		a, client := newTestAdapter(&fakeHandler{err: errors.New("unreachable")})

		a.handleCommand(lamp.ID, []byte(`{"state":"ON"}`))

		_, ok := client.last("merossd/desk_lamp")
		assert.False(t, ok)
	})

	t.Run("invalid command: should not reach the bridge", func(t *testing.T) {
		handler := &fakeHandler{}
		a, _ := newTestAdapter(handler)

		a.handleCommand(lamp.ID, []byte(`not json`))

		assert.Empty(t, handler.commands)
	})

	t.Run("log level message: should be forwarded", func(t *testing.T) {
		handler := &fakeHandler{}
		a, _ := newTestAdapter(handler)

		a.handleLogLevel([]byte(" debug\n"))
		a.handleLogLevel([]byte("loud"))

		assert.Equal(t, "debug", handler.level)
	})

	t.Run("blocked device: should not hold up commands for other devices", func(t *testing.T) {
		// arrange
		release := make(chan struct{})
		handler := &fakeHandler{
			devices: []models.DeviceIdentity{lamp, strip},
			blocked: map[string]chan struct{}{lamp.ID: release},
		}
		a, client := newTestAdapter(handler)
		defer func() {
			close(release)
			a.inflight.Wait()
		}()
		a.onConnect()
		lampCommands := client.subscribed["merossd/desk_lamp/set"]
		stripCommands := client.subscribed["merossd/strip/set"]
		require.NotNil(t, lampCommands)
		require.NotNil(t, stripCommands)

		// act
		lampCommands(client, fakeMessage{payload: []byte(`{"state":"ON"}`)})
		stripCommands(client, fakeMessage{payload: []byte(`{"state":"ON"}`)})

		// assert
		require.Eventually(t, func() bool {
			_, ok := client.last("merossd/strip")
			return ok
		}, 2*time.Second, 10*time.Millisecond)
		_, ok := client.last("merossd/desk_lamp")
		assert.False(t, ok)
	})
}
