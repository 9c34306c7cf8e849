package bridge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/wheelibin/merossd/internal/concurrency"
	"github.com/wheelibin/merossd/internal/config"
	"github.com/wheelibin/merossd/internal/constants"
	"github.com/wheelibin/merossd/internal/lights"
	"github.com/wheelibin/merossd/internal/meross"
	"github.com/wheelibin/merossd/internal/models"
)

// ErrUnknownDevice is returned for commands addressed to an unregistered id
var ErrUnknownDevice = errors.New("unknown device")

type LightService interface {
	AddDevice(device models.DeviceIdentity)
	State(deviceID string) models.LightState
	SetPower(ctx context.Context, device models.DeviceIdentity, on bool) error
	SetBrightness(ctx context.Context, device models.DeviceIdentity, levelRaw int) error
	SetBrightnessWithOnOff(ctx context.Context, device models.DeviceIdentity, levelRaw int) error
	SetHueSaturation(ctx context.Context, device models.DeviceIdentity, hue254 int, sat254 int) error
	SetLight(ctx context.Context, device models.DeviceIdentity, levelRaw int, hue254 int, sat254 int, withOnOff bool) error
	SetColorXY(ctx context.Context, device models.DeviceIdentity, x float64, y float64) error
	Probe(ctx context.Context, device models.DeviceIdentity) (meross.Response, error)
}

type StatusRepo interface {
	Add(devices []models.DeviceIdentity) error
	MarkDeviceAsUpdated(id string, intent string) error
	SetDeviceUnreachable(id string, intent string, cause error) error
	SetDeviceError(id string, intent string, cause error) error
}

type EventPublisher interface {
	Publish(event models.DeviceEvent)
}

// HueSaturation is a colour on the 0-254 host scale
type HueSaturation struct {
	Hue        int
	Saturation int
}

type XY struct {
	X float64
	Y float64
}

// Command is one host write to a light endpoint. Any combination of fields
// may be set; nil fields are left alone.
type Command struct {
	On         *bool
	Brightness *int
	Color      *HueSaturation
	XY         *XY
}

// Bridge owns the registered devices and routes host commands to the
// translator, recording every outcome.
type Bridge struct {
	logger    *log.Logger
	lights    LightService
	repo      StatusRepo
	publisher EventPublisher

	mu      sync.RWMutex
	devices map[string]models.DeviceIdentity
}

func NewBridge(logger *log.Logger, lights LightService, repo StatusRepo, publisher EventPublisher) *Bridge {
	return &Bridge{
		logger:    logger,
		lights:    lights,
		repo:      repo,
		publisher: publisher,
		devices:   map[string]models.DeviceIdentity{},
	}
}

// Register validates the whole device list before registering any of it
func (b *Bridge) Register(devices []config.Device) error {
	if err := config.ValidateDevices(devices); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range devices {
		if _, ok := b.devices[d.ID]; ok {
			return &config.ConfigurationError{DeviceID: d.ID, Field: "id", Reason: "is already registered"}
		}
	}

	// nothing is registered in memory unless the status rows were stored
	identities := lo.Map(devices, func(d config.Device, _ int) models.DeviceIdentity { return d.Identity() })
	if err := b.repo.Add(identities); err != nil {
		return fmt.Errorf("error storing registered devices: %w", err)
	}

	for _, identity := range identities {
		b.devices[identity.ID] = identity
		b.lights.AddDevice(identity)
		b.logger.Info("registered device", "device", identity.String())
	}
	return nil
}

// Devices returns the registered devices ordered by id
func (b *Bridge) Devices() []models.DeviceIdentity {
	b.mu.RLock()
	defer b.mu.RUnlock()

	devices := lo.Values(b.devices)
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices
}

func (b *Bridge) Device(id string) (models.DeviceIdentity, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.devices[id]
	return d, ok
}

func (b *Bridge) State(id string) models.LightState {
	return b.lights.State(id)
}

// SetLogLevel changes the level of the shared logger at runtime
func (b *Bridge) SetLogLevel(level string) error {
	l, err := config.ParseLogLevel(level)
	if err != nil {
		return err
	}
	b.logger.SetLevel(l)
	return nil
}

// Initialise probes every registered device once. Failures are recorded and
// logged but never stop the bridge.
func (b *Bridge) Initialise(ctx context.Context) {
	b.logger.Debug("Bridge.Initialise")

	ids := lo.Map(b.Devices(), func(d models.DeviceIdentity, _ int) string { return d.ID })
	worker := concurrency.NewThrottledWorker(constants.ProbeInterval, func(ctx context.Context, id string) error {
		device, _ := b.Device(id)
		resp, err := b.lights.Probe(ctx, device)
		b.record(device, constants.IntentProbe, err)
		if err == nil {
			b.logger.Debug("probed device", "device", id, "status", resp.StatusCode, "json", resp.IsJSON())
		}
		return err
	})

	errs := worker.Run(ctx, ids)
	for id, err := range errs {
		b.logger.Warn("device did not answer the startup probe", "device", id, "err", err)
	}
	b.logger.Info("startup probe complete", "devices", len(ids), "failed", len(errs))
}

// HandleCommand applies a host command to a device. Power off wins over
// everything else in the command. Brightness and colour given together go
// out as one light command; otherwise power comes first, stopping at the
// first failure.
func (b *Bridge) HandleCommand(ctx context.Context, id string, cmd Command) error {
	device, ok := b.Device(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}

	if cmd.On != nil && !*cmd.On {
		return b.apply(device, constants.IntentPower, b.lights.SetPower(ctx, device, false))
	}

	turnOn := cmd.On != nil && *cmd.On

	var err error
	switch {
	case cmd.Brightness != nil && cmd.Color != nil:
		err = b.apply(device, constants.IntentLight, b.lights.SetLight(ctx, device, *cmd.Brightness, cmd.Color.Hue, cmd.Color.Saturation, turnOn))
	case cmd.Brightness != nil && turnOn:
		err = b.apply(device, constants.IntentBrightnessOnOff, b.lights.SetBrightnessWithOnOff(ctx, device, *cmd.Brightness))
	case cmd.Brightness != nil:
		err = b.apply(device, constants.IntentBrightness, b.lights.SetBrightness(ctx, device, *cmd.Brightness))
	case turnOn:
		err = b.apply(device, constants.IntentPower, b.lights.SetPower(ctx, device, true))
	}
	if err != nil {
		return err
	}

	if cmd.Color != nil && cmd.Brightness == nil {
		if err := b.apply(device, constants.IntentHueSaturation, b.lights.SetHueSaturation(ctx, device, cmd.Color.Hue, cmd.Color.Saturation)); err != nil {
			return err
		}
	}

	if cmd.XY != nil {
		err := b.lights.SetColorXY(ctx, device, cmd.XY.X, cmd.XY.Y)
		if errors.Is(err, lights.ErrUnsupportedIntent) {
			b.logger.Debug("ignoring xy colour", "device", id)
		} else if err := b.apply(device, constants.IntentColorXY, err); err != nil {
			return err
		}
	}

	return nil
}

func (b *Bridge) apply(device models.DeviceIdentity, intent string, err error) error {
	b.record(device, intent, err)
	return err
}

func (b *Bridge) record(device models.DeviceIdentity, intent string, cause error) {
	var repoErr error
	var unreachable *meross.DeviceUnreachableError
	switch {
	case cause == nil:
		repoErr = b.repo.MarkDeviceAsUpdated(device.ID, intent)
	case errors.As(cause, &unreachable):
		b.logger.Error("device unreachable", "device", device.ID, "intent", intent, "err", cause)
		repoErr = b.repo.SetDeviceUnreachable(device.ID, intent, cause)
	default:
		b.logger.Error("device command failed", "device", device.ID, "intent", intent, "err", cause)
		repoErr = b.repo.SetDeviceError(device.ID, intent, cause)
	}
	if repoErr != nil {
		b.logger.Error(repoErr)
	}

	event := models.DeviceEvent{
		Device: device.ID,
		Intent: intent,
		OK:     cause == nil,
		State:  b.lights.State(device.ID),
		Time:   time.Now(),
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	b.publisher.Publish(event)
}
