package mqtt

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/wheelibin/merossd/internal/bridge"
	"github.com/wheelibin/merossd/internal/constants"
	"github.com/wheelibin/merossd/internal/models"
)

type discoveryMsg struct {
	Topic   string
	Payload []byte
}

type haDevice struct {
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Name         string   `json:"name"`
}

// haLight is a json schema light discovery payload
type haLight struct {
	Name                string   `json:"name"`
	UniqueID            string   `json:"unique_id"`
	Schema              string   `json:"schema"`
	StateTopic          string   `json:"state_topic"`
	CommandTopic        string   `json:"command_topic"`
	AvailabilityTopic   string   `json:"availability_topic"`
	Brightness          bool     `json:"brightness"`
	BrightnessScale     int      `json:"brightness_scale"`
	SupportedColorModes []string `json:"supported_color_modes"`
	Device              haDevice `json:"device"`
}

// haColor carries hs (degrees, percent) or xy
type haColor struct {
	H *float64 `json:"h,omitempty"`
	S *float64 `json:"s,omitempty"`
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

type haCommand struct {
	State      string   `json:"state"`
	Brightness *float64 `json:"brightness"`
	Color      *haColor `json:"color"`
}

func nodeID(device models.DeviceIdentity) string {
	return "meross_" + topicName(device)
}

// topicName keeps only characters that are safe in a topic level
func topicName(device models.DeviceIdentity) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, strings.ToLower(device.ID))
}

func stateTopic(prefix string, device models.DeviceIdentity) string {
	return prefix + "/" + topicName(device)
}

func commandTopic(prefix string, device models.DeviceIdentity) string {
	return stateTopic(prefix, device) + "/set"
}

func availabilityTopic(prefix string) string {
	return prefix + "/bridge/state"
}

func logLevelTopic(prefix string) string {
	return prefix + "/bridge/log_level/set"
}

func buildDiscovery(device models.DeviceIdentity, cfg Config) discoveryMsg {
	id := nodeID(device)
	payload := haLight{
		Name:                device.Name,
		UniqueID:            id + "_light",
		Schema:              "json",
		StateTopic:          stateTopic(cfg.TopicPrefix, device),
		CommandTopic:        commandTopic(cfg.TopicPrefix, device),
		AvailabilityTopic:   availabilityTopic(cfg.TopicPrefix),
		Brightness:          true,
		BrightnessScale:     constants.MaxLevel,
		SupportedColorModes: []string{"hs", "xy"},
		Device: haDevice{
			Identifiers:  []string{id},
			Manufacturer: "Meross",
			Name:         device.Name,
		},
	}
	return discoveryMsg{
		Topic:   fmt.Sprintf("%s/light/%s/light/config", cfg.DiscoveryPrefix, id),
		Payload: mustJSON(payload),
	}
}

func decodeCommand(payload []byte) (haCommand, error) {
	var in haCommand
	if err := json.Unmarshal(payload, &in); err != nil {
		return haCommand{}, fmt.Errorf("invalid command json: %w", err)
	}
	return in, nil
}

// toBridgeCommand converts a json schema light command into a bridge
// command. Hue arrives in degrees and saturation in percent; both are
// rescaled to the 0-254 range the translator works in.
func toBridgeCommand(in haCommand) (bridge.Command, error) {
	cmd := bridge.Command{}
	switch strings.ToUpper(in.State) {
	case "ON":
		on := true
		cmd.On = &on
	case "OFF":
		off := false
		cmd.On = &off
	case "":
	default:
		return bridge.Command{}, fmt.Errorf("invalid state %q", in.State)
	}

	if in.Brightness != nil {
		level := int(math.Round(*in.Brightness))
		cmd.Brightness = &level
	}

	if c := in.Color; c != nil {
		switch {
		case c.H != nil && c.S != nil:
			cmd.Color = &bridge.HueSaturation{
				Hue:        scale(*c.H, 360),
				Saturation: scale(*c.S, 100),
			}
		case c.X != nil && c.Y != nil:
			cmd.XY = &bridge.XY{X: *c.X, Y: *c.Y}
		}
	}

	return cmd, nil
}

func scale(v float64, max float64) int {
	scaled := int(math.Round(v / max * constants.MaxLevel))
	if scaled < 0 {
		return 0
	}
	if scaled > constants.MaxLevel {
		return constants.MaxLevel
	}
	return scaled
}

// applyCommand folds a successful command into the published state.
// xy is never applied so it is not reported back.
func applyCommand(state map[string]any, in haCommand) {
	switch strings.ToUpper(in.State) {
	case "OFF":
		state["state"] = "OFF"
		return
	case "ON":
		state["state"] = "ON"
	}
	if in.Brightness != nil {
		state["brightness"] = int(math.Round(*in.Brightness))
	}
	if c := in.Color; c != nil && c.H != nil && c.S != nil {
		state["color_mode"] = "hs"
		state["color"] = map[string]float64{"h": *c.H, "s": *c.S}
	}
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
