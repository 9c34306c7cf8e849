package meross

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
)

type Header struct {
	From           string `json:"from"`
	MessageID      string `json:"messageId"`
	Method         string `json:"method"`
	Namespace      string `json:"namespace"`
	PayloadVersion int    `json:"payloadVersion"`
	Timestamp      int64  `json:"timestamp"`
	Sign           string `json:"sign"`
}

// Envelope is the signed request body posted to a device
type Envelope struct {
	Header  Header `json:"header"`
	Payload any    `json:"payload"`
}

// Sign computes the header signature the device checks: md5 over
// messageId, secret and the decimal timestamp, in that order.
func Sign(messageID string, secret string, timestamp int64) string {
	sum := md5.Sum([]byte(messageID + secret + strconv.FormatInt(timestamp, 10)))
	return hex.EncodeToString(sum[:])
}

func endpointURL(address string) string {
	return "http://" + address + "/config"
}
