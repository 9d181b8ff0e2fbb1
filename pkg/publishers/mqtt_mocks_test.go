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

package publishers

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ledwidgets/ledwidgets/pkg/helpers/syncutil"
)

// mockMQTTClient implements mqtt.Client for testing
type mockMQTTClient struct {
	connectError   error
	publishError   error
	published      chan publishedMessage
	disconnectCall int
	connected      bool
	connectHangs   bool
	mu             syncutil.Mutex
}

type publishedMessage struct {
	payload  any
	topic    string
	qos      byte
	retained bool
}

func newMockMQTTClient() *mockMQTTClient {
	return &mockMQTTClient{
		published: make(chan publishedMessage, 16),
	}
}

func (m *mockMQTTClient) disconnects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnectCall
}

func (m *mockMQTTClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockMQTTClient) IsConnectionOpen() bool {
	return m.IsConnected()
}

func (m *mockMQTTClient) Connect() mqtt.Token {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connectHangs {
		return &mockToken{pending: true}
	}
	if m.connectError != nil {
		return &mockToken{err: m.connectError}
	}
	m.connected = true
	return &mockToken{}
}

func (m *mockMQTTClient) Disconnect(_ uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.disconnectCall++
}

func (m *mockMQTTClient) Publish(topic string, qos byte, retained bool, payload any) mqtt.Token {
	if m.publishError != nil {
		return &mockToken{err: m.publishError}
	}
	m.published <- publishedMessage{
		topic:    topic,
		qos:      qos,
		retained: retained,
		payload:  payload,
	}
	return &mockToken{}
}

func (*mockMQTTClient) Subscribe(_ string, _ byte, _ mqtt.MessageHandler) mqtt.Token {
	return &mockToken{}
}

func (*mockMQTTClient) SubscribeMultiple(_ map[string]byte, _ mqtt.MessageHandler) mqtt.Token {
	return &mockToken{}
}

func (*mockMQTTClient) Unsubscribe(_ ...string) mqtt.Token {
	return &mockToken{}
}

func (*mockMQTTClient) AddRoute(_ string, _ mqtt.MessageHandler) {}

func (*mockMQTTClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

// mockToken implements mqtt.Token for testing. A pending token never
// completes, like a connect to a broker that does not answer.
type mockToken struct {
	err     error
	pending bool
}

func (t *mockToken) Wait() bool {
	return !t.pending
}

func (t *mockToken) WaitTimeout(_ time.Duration) bool {
	return !t.pending
}

func (t *mockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.pending {
		close(ch)
	}
	return ch
}

func (t *mockToken) Error() error {
	return t.err
}
