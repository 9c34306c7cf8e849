package models

import (
	"fmt"
	"time"
)

// DeviceIdentity is everything needed to address a single device on the LAN.
// Secret must never reach a log line or a marshalled payload.
type DeviceIdentity struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Secret  string `json:"-"`
	Channel int    `json:"channel"`
}

func (d DeviceIdentity) String() string {
	return fmt.Sprintf("%s (%s@%s ch%d)", d.Name, d.ID, d.Address, d.Channel)
}

// LightState is the last commanded colour/brightness for a device
type LightState struct {
	// 24-bit packed 0xRRGGBB
	RGB int `json:"rgb"`
	// 0-100
	Luminance int `json:"luminance"`
}

type TogglePayload struct {
	Channel int `json:"channel"`
	OnOff   int `json:"onoff"`
}

type LightPayload struct {
	Channel   int  `json:"channel"`
	Capacity  int  `json:"capacity"`
	Luminance int  `json:"luminance"`
	RGB       *int `json:"rgb,omitempty"`
}

// payload bodies as the device expects them, keyed by capability
type ToggleXRequest struct {
	ToggleX TogglePayload `json:"togglex"`
}

type LightRequest struct {
	Light LightPayload `json:"light"`
}

// DeviceStatus is the diagnostic view of a device kept by the status repo
type DeviceStatus struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Address        string     `json:"address"`
	Channel        int        `json:"channel"`
	Unreachable    bool       `json:"unreachable"`
	LastIntent     string     `json:"last_intent,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	LastUpdateTime *time.Time `json:"last_update_time,omitempty"`
}

// an intent outcome published on the event stream
type DeviceEvent struct {
	Device string     `json:"device"`
	Intent string     `json:"intent"`
	OK     bool       `json:"ok"`
	Error  string     `json:"error,omitempty"`
	State  LightState `json:"state"`
	Time   time.Time  `json:"time"`
}
