package lights

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/merossd/internal/concurrency"
	"github.com/wheelibin/merossd/internal/constants"
	"github.com/wheelibin/merossd/internal/meross"
	"github.com/wheelibin/merossd/internal/models"
)

// ErrUnsupportedIntent is returned for intents the protocol cannot express
var ErrUnsupportedIntent = errors.New("unsupported intent")

type commandSender interface {
	Send(ctx context.Context, address string, secret string, namespace string, method string, payload any, timeout time.Duration) (meross.Response, error)
}

// LightService translates power/brightness/colour intents into device
// commands. Brightness and colour share one light command on the wire, so
// the last commanded values are cached per device and resent together.
type LightService struct {
	logger  *log.Logger
	sender  commandSender
	timeout time.Duration
	locks   *concurrency.KeyedMutex

	mu     sync.RWMutex
	states map[string]models.LightState
}

func NewLightService(logger *log.Logger, sender commandSender, timeout time.Duration) *LightService {
	return &LightService{
		logger:  logger,
		sender:  sender,
		timeout: timeout,
		locks:   concurrency.NewKeyedMutex(),
		states:  map[string]models.LightState{},
	}
}

func DefaultLightState() models.LightState {
	return models.LightState{RGB: constants.DefaultRGB, Luminance: constants.DefaultLuminance}
}

// AddDevice (re)initialises the cached state of a device to the default
func (l *LightService) AddDevice(device models.DeviceIdentity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states[device.ID] = DefaultLightState()
}

// State returns a snapshot of the cached state for a device
func (l *LightService) State(deviceID string) models.LightState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if s, ok := l.states[deviceID]; ok {
		return s
	}
	return DefaultLightState()
}

func (l *LightService) SetPower(ctx context.Context, device models.DeviceIdentity, on bool) error {
	unlock := l.locks.Lock(device.ID)
	defer unlock()

	return l.sendToggle(ctx, device, on)
}

func (l *LightService) SetBrightness(ctx context.Context, device models.DeviceIdentity, levelRaw int) error {
	unlock := l.locks.Lock(device.ID)
	defer unlock()

	return l.setBrightness(ctx, device, levelRaw, false, nil)
}

// SetBrightnessWithOnOff switches the device on first when the resulting
// luminance is above zero. The light command is only sent once power-on
// has succeeded.
func (l *LightService) SetBrightnessWithOnOff(ctx context.Context, device models.DeviceIdentity, levelRaw int) error {
	unlock := l.locks.Lock(device.ID)
	defer unlock()

	return l.setBrightness(ctx, device, levelRaw, true, nil)
}

func (l *LightService) SetHueSaturation(ctx context.Context, device models.DeviceIdentity, hue254 int, sat254 int) error {
	unlock := l.locks.Lock(device.ID)
	defer unlock()

	r, g, b := HueSaturationToRGB(hue254, sat254)
	next := l.State(device.ID)
	next.RGB = PackRGB(r, g, b)

	l.logger.Debugf("(%s): hue %d sat %d -> rgb #%06x", device.ID, hue254, sat254, next.RGB)
	return l.sendLight(ctx, device, next)
}

// SetLight sets brightness and colour together in one light command, so the
// device never shows the new brightness with the old colour. withOnOff has
// the same meaning as in SetBrightnessWithOnOff.
func (l *LightService) SetLight(ctx context.Context, device models.DeviceIdentity, levelRaw int, hue254 int, sat254 int, withOnOff bool) error {
	unlock := l.locks.Lock(device.ID)
	defer unlock()

	r, g, b := HueSaturationToRGB(hue254, sat254)
	rgb := PackRGB(r, g, b)
	return l.setBrightness(ctx, device, levelRaw, withOnOff, &rgb)
}

// SetColorXY is not translated: converting CIE xy to RGB needs a gamut the
// protocol does not define.
func (l *LightService) SetColorXY(_ context.Context, device models.DeviceIdentity, x float64, y float64) error {
	l.logger.Warn("xy colour is not supported, ignoring", "device", device.ID, "x", x, "y", y)
	return ErrUnsupportedIntent
}

// Probe asks the device for its full system state
func (l *LightService) Probe(ctx context.Context, device models.DeviceIdentity) (meross.Response, error) {
	unlock := l.locks.Lock(device.ID)
	defer unlock()

	return l.sender.Send(ctx, device.Address, device.Secret, constants.NamespaceSystemAll, constants.MethodGet, nil, l.timeout)
}

// setBrightness replaces the cached colour as well when rgb is set
func (l *LightService) setBrightness(ctx context.Context, device models.DeviceIdentity, levelRaw int, withOnOff bool, rgb *int) error {
	luminance := LevelToLuminance(levelRaw)

	if withOnOff && luminance > 0 {
		if err := l.sendToggle(ctx, device, true); err != nil {
			return fmt.Errorf("error switching device (%s) on before setting brightness: %w", device.ID, err)
		}
	}

	next := l.State(device.ID)
	next.Luminance = luminance
	if rgb != nil {
		next.RGB = *rgb
	}

	l.logger.Debugf("(%s): level %d -> luminance %d, rgb #%06x", device.ID, levelRaw, luminance, next.RGB)
	return l.sendLight(ctx, device, next)
}

func (l *LightService) sendToggle(ctx context.Context, device models.DeviceIdentity, on bool) error {
	onoff := 0
	if on {
		onoff = 1
	}
	payload := models.ToggleXRequest{ToggleX: models.TogglePayload{Channel: device.Channel, OnOff: onoff}}

	_, err := l.sender.Send(ctx, device.Address, device.Secret, constants.NamespaceToggleX, constants.MethodSet, payload, l.timeout)
	if err != nil {
		return fmt.Errorf("error setting device (%s) power to %t: %w", device.ID, on, err)
	}
	return nil
}

// sendLight commits next to the cache as the send starts, unless the caller
// has already given up.
func (l *LightService) sendLight(ctx context.Context, device models.DeviceIdentity, next models.LightState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	l.states[device.ID] = next
	l.mu.Unlock()

	rgb := next.RGB
	payload := models.LightRequest{Light: models.LightPayload{
		Channel:   device.Channel,
		Capacity:  constants.CapacityLuminanceRGB,
		Luminance: next.Luminance,
		RGB:       &rgb,
	}}

	_, err := l.sender.Send(ctx, device.Address, device.Secret, constants.NamespaceLight, constants.MethodSet, payload, l.timeout)
	if err != nil {
		return fmt.Errorf("error setting device (%s) light: %w", device.ID, err)
	}
	return nil
}
