// Package publish publishes changed PLC tag values to an MQTT broker.
package publish

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/yatesdr/gos7link/config"
	"github.com/yatesdr/gos7link/s7"
)

// DebugLogger receives publisher diagnostics.
type DebugLogger interface {
	LogPublish(format string, args ...interface{})
}

var debugLog DebugLogger

// SetDebugLogger installs a diagnostics sink for the package.
func SetDebugLogger(l DebugLogger) { debugLog = l }

func logf(format string, args ...interface{}) {
	if debugLog != nil {
		debugLog.LogPublish(format, args...)
	}
}

// Tag is one configured address to poll and publish under Name.
type Tag struct {
	Name    string
	Address *s7.TagAddress
	Size    int
}

// TagMessage is the JSON payload published for a changed tag.
type TagMessage struct {
	Tag       string `json:"tag"`
	Value     string `json:"value"`
	Timestamp string `json:"timestamp"`
}

// Publisher polls a Client on a ticker and publishes any tag whose raw
// bytes changed since the last poll to an MQTT topic.
//
// Non-goal: this is read-only telemetry. Unlike the gateway this package
// is modeled on, it does not subscribe to a write topic or dispatch
// incoming MQTT messages back to the PLC — this module's scope is a tag
// publisher, not a bidirectional gateway.
type Publisher struct {
	cfg    config.PublishConfig
	client *s7.Client
	mqtt   pahomqtt.Client
	tags   []Tag

	mu         sync.Mutex
	running    bool
	lastValues map[string]string
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// New builds a Publisher over an already-connected Client.
func New(cfg config.PublishConfig, client *s7.Client) (*Publisher, error) {
	tags := make([]Tag, 0, len(cfg.Tags))
	for _, t := range cfg.Tags {
		addr, err := s7.ParseTagAddress(t.Address)
		if err != nil {
			return nil, fmt.Errorf("publish: tag %q: %w", t.Name, err)
		}
		tags = append(tags, Tag{Name: t.Name, Address: addr, Size: t.Size})
	}
	return &Publisher{
		cfg:        cfg,
		client:     client,
		lastValues: make(map[string]string),
		tags:       tags,
	}, nil
}

// Start connects to the broker and begins the poll loop. It returns once
// the connection is established; polling continues in the background
// until Stop is called.
func (p *Publisher) Start() error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(p.cfg.Broker)
	opts.SetClientID(p.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetKeepAlive(30 * time.Second)

	client := pahomqtt.NewClient(opts)
	logf("publish: connecting to %s", p.cfg.Broker)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish: connection to %s timed out", p.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: connect: %w", err)
	}

	p.mu.Lock()
	p.mqtt = client
	p.running = true
	p.stopCh = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.loop()
	return nil
}

// Stop halts polling and disconnects from the broker.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	client := p.mqtt
	p.mqtt = nil
	p.mu.Unlock()

	p.wg.Wait()
	if client != nil {
		client.Disconnect(250)
	}
}

func (p *Publisher) loop() {
	defer p.wg.Done()
	rate := p.cfg.PollRate
	if rate <= 0 {
		rate = time.Second
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

func (p *Publisher) pollOnce() {
	for _, tag := range p.tags {
		buf := make([]byte, max(tag.Size, 1))
		item := tag.Address.DataItem(tag.Size, buf)
		if err := p.client.ReadMultiVars([]*s7.DataItem{item}); err != nil {
			logf("publish: read %s: %v", tag.Name, err)
			continue
		}
		if item.Err != nil {
			logf("publish: read %s: %v", tag.Name, item.Err)
			continue
		}
		p.publishIfChanged(tag.Name, buf)
	}
}

func (p *Publisher) publishIfChanged(name string, raw []byte) {
	encoded := fmt.Sprintf("% X", raw)

	p.mu.Lock()
	last, seen := p.lastValues[name]
	client := p.mqtt
	p.mu.Unlock()

	if seen && last == encoded {
		return
	}

	p.mu.Lock()
	p.lastValues[name] = encoded
	p.mu.Unlock()

	if client == nil {
		return
	}
	msg := TagMessage{Tag: name, Value: encoded, Timestamp: time.Now().UTC().Format(time.RFC3339Nano)}
	payload, err := json.Marshal(msg)
	if err != nil {
		logf("publish: marshal %s: %v", name, err)
		return
	}
	topic := p.cfg.Topic
	if topic == "" {
		topic = "s7/tags"
	}
	client.Publish(topic+"/"+name, 0, false, payload)
}
