package constants

import "time"

// protocol namespaces
const NamespaceToggleX = "Appliance.Control.ToggleX"
const NamespaceLight = "Appliance.Control.Light"
const NamespaceSystemAll = "Appliance.System.All"

const MethodGet = "GET"
const MethodSet = "SET"

const PayloadVersion = 1

// light payload capacity bits
const CapacityRGB = 1
const CapacityLuminance = 4
const CapacityLuminanceRGB = CapacityLuminance | CapacityRGB

const DefaultRequestTimeout = 5 * time.Second
const ProbeInterval = 100 * time.Millisecond

// default cache state: full white, full brightness
const DefaultRGB = 0xFFFFFF
const DefaultLuminance = 100

// 0-254 scale used by host level/hue/saturation attributes
const MaxLevel = 254

// event stream
const EventStreamDevices = "devices"

const IntentPower = "power"
const IntentBrightness = "brightness"
const IntentBrightnessOnOff = "brightness_onoff"
const IntentHueSaturation = "hue_saturation"
const IntentLight = "light"
const IntentColorXY = "color_xy"
const IntentProbe = "probe"
