package events

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	sse "github.com/r3labs/sse/v2"
	"github.com/wheelibin/merossd/internal/constants"
	"github.com/wheelibin/merossd/internal/models"
)

// Publisher fans device events out to SSE subscribers of the devices stream
type Publisher struct {
	logger *log.Logger
	server *sse.Server
}

func NewPublisher(logger *log.Logger) *Publisher {
	server := sse.New()
	// late subscribers only get new events
	server.AutoReplay = false
	server.CreateStream(constants.EventStreamDevices)

	return &Publisher{logger: logger, server: server}
}

func (p *Publisher) Publish(event models.DeviceEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("error encoding device event", "device", event.Device, "err", err)
		return
	}
	p.server.Publish(constants.EventStreamDevices, &sse.Event{
		Event: []byte(event.Intent),
		Data:  data,
	})
}

// Handler serves the devices stream regardless of the stream query parameter
func (p *Publisher) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		q.Set("stream", constants.EventStreamDevices)
		r.URL.RawQuery = q.Encode()
		p.server.ServeHTTP(w, r)
	})
}

func (p *Publisher) HasStream() bool {
	return p.server.StreamExists(constants.EventStreamDevices)
}

func (p *Publisher) Close() {
	p.server.Close()
}
