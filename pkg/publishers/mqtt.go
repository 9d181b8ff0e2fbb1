// LED Widgets
// Copyright (c) 2025 The LED Widgets Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of LED Widgets.
//
// LED Widgets is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// LED Widgets is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with LED Widgets.  If not, see <http://www.gnu.org/licenses/>.

// Package publishers forwards ping samples to external consumers.
package publishers

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/ledwidgets/ledwidgets/pkg/history"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultQueueSize is how many samples may wait for the broker before new
	// ones are dropped.
	DefaultQueueSize = 64
	// DefaultTopic is used when no topic is configured.
	DefaultTopic   = "ledwidgets/ping"
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	disconnectWait = 250
)

// SampleMessage is the JSON body of a published sample. LatencyMS is null
// when the ping got no reply.
type SampleMessage struct {
	Time      time.Time `json:"time"`
	LatencyMS *float64  `json:"latency_ms"`
	Host      string    `json:"host"`
	OK        bool      `json:"ok"`
}

// NewSampleMessage builds the message for one measurement.
func NewSampleMessage(host string, s history.Sample, at time.Time) SampleMessage {
	msg := SampleMessage{Host: host, Time: at.UTC()}
	if v, ok := s.Value(); ok {
		msg.LatencyMS = &v
		msg.OK = true
	}
	return msg
}

// MQTTPublisher publishes ping samples to an MQTT broker. Publish never
// blocks; samples are queued and sent from a background goroutine.
type MQTTPublisher struct {
	client   mqtt.Client
	queue    chan SampleMessage
	stopCh   chan struct{}
	broker   string
	topic    string
	username string
	password string
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewMQTTPublisher creates a publisher for broker and topic. A non-positive
// queue size uses DefaultQueueSize and an empty topic uses DefaultTopic.
func NewMQTTPublisher(broker, topic string, queueSize int) *MQTTPublisher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return &MQTTPublisher{
		broker: broker,
		topic:  topic,
		queue:  make(chan SampleMessage, queueSize),
		stopCh: make(chan struct{}),
	}
}

// SetCredentials sets the broker login. It must be called before Start.
func (p *MQTTPublisher) SetCredentials(username, password string) {
	p.username = username
	p.password = password
}

// BrokerURL adds the tcp scheme to a bare host:port.
func BrokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}

func (p *MQTTPublisher) options() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(BrokerURL(p.broker))
	opts.SetClientID("ledwidgets-" + uuid.New().String()[:8])
	// reconnect after a lost connection, but fail fast on the first one
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(connectTimeout)
	if p.username != "" {
		opts.SetUsername(p.username)
		opts.SetPassword(p.password)
	}

	opts.OnConnect = func(_ mqtt.Client) {
		log.Info().Msgf("mqtt publisher: connected to %s", p.broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt publisher: connection lost")
	}
	return opts
}

// Start connects to the broker and begins draining the queue. A broker that
// does not answer within the connect timeout is an error.
func (p *MQTTPublisher) Start() error {
	if p.client == nil {
		p.client = mqtt.NewClient(p.options())
	}

	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		p.client.Disconnect(0)
		return fmt.Errorf("failed to connect to MQTT broker %s: timed out after %s", p.broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		p.client.Disconnect(0)
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	log.Info().Msgf("mqtt publisher: publishing samples to %s (topic: %s)", p.broker, p.topic)

	p.wg.Add(1)
	go p.run()
	return nil
}

// Publish queues a sample. When the queue is full the sample is dropped.
func (p *MQTTPublisher) Publish(host string, s history.Sample, at time.Time) {
	select {
	case p.queue <- NewSampleMessage(host, s, at):
	default:
		log.Debug().Msg("mqtt publisher: queue full, dropping sample")
	}
}

// Stop halts the publishing goroutine and disconnects. It is safe to call
// more than once.
func (p *MQTTPublisher) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.wg.Wait()

		if p.client != nil {
			log.Debug().Msg("mqtt publisher: disconnecting")
			p.client.Disconnect(disconnectWait)
		}
	})
}

func (p *MQTTPublisher) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			log.Debug().Msg("mqtt publisher: stopping")
			return
		case msg := <-p.queue:
			p.send(msg)
		}
	}
}

func (p *MQTTPublisher) send(msg SampleMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("mqtt publisher: failed to marshal sample")
		return
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		log.Warn().Msg("mqtt publisher: publish timed out")
		return
	}
	if token.Error() != nil {
		log.Error().Err(token.Error()).Msg("mqtt publisher: failed to publish sample")
		return
	}
	log.Debug().Msgf("mqtt publisher: published sample for %s", msg.Host)
}
