/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package monitor implements the Connection Monitor (§4.3): a process-wide
// aggregator of connection lifecycle notifications that may also advise the
// outbound engine to defer new sends.
package monitor

import (
	"errors"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Monitor receives lifecycle notifications from the outbound and inbound
// engines and may report send-blocked to throttle new sends.
type Monitor interface {
	IsSendBlocked() bool
	// SetSendBlocked lets an operator (or a test harness simulating
	// backpressure) toggle the send-blocked advisory.
	SetSendBlocked(blocked bool)

	Scheduled(bytes int)
	SendStarting(bytes int)
	SendCompleted(bytes int)
	ReceiveStarting()
	ReceiveCompleted(bytes int)
	ReceiveDispatched(bytes int)
	Closed()
}

type mon struct {
	blocked atomic.Bool

	scheduledBytes    prometheus.Counter
	sendStartingBytes prometheus.Counter
	sendCompleteBytes prometheus.Counter
	sendInFlight      prometheus.Gauge
	recvStartedTotal  prometheus.Counter
	recvCompleteBytes prometheus.Counter
	recvDispatchBytes prometheus.Counter
	closedTotal       prometheus.Counter
	blockedGauge      prometheus.Gauge
}

// New constructs a Monitor and registers its metrics with reg. A nil
// registerer is valid and simply disables metrics export while keeping the
// send-blocked advisory functional; pass prometheus.DefaultRegisterer to
// export under the usual process metrics.
func New(reg prometheus.Registerer) Monitor {
	m := &mon{
		scheduledBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcpsock_send_scheduled_bytes_total",
			Help: "Bytes handed to enqueue_send, before coalescing.",
		}),
		sendStartingBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcpsock_send_posted_bytes_total",
			Help: "Bytes posted in one OS send.",
		}),
		sendCompleteBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcpsock_send_completed_bytes_total",
			Help: "Bytes confirmed sent by the OS.",
		}),
		sendInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tcpsock_send_in_flight",
			Help: "Number of sends currently posted to the OS, across all connections.",
		}),
		recvStartedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcpsock_receive_started_total",
			Help: "Number of receive operations armed.",
		}),
		recvCompleteBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcpsock_receive_completed_bytes_total",
			Help: "Bytes confirmed received by the OS.",
		}),
		recvDispatchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcpsock_receive_dispatched_bytes_total",
			Help: "Bytes handed to a consumer callback.",
		}),
		closedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcpsock_connection_closed_total",
			Help: "Number of connections closed.",
		}),
		blockedGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tcpsock_send_blocked",
			Help: "1 if new sends are currently being deferred, 0 otherwise.",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.scheduledBytes, m.sendStartingBytes, m.sendCompleteBytes, m.sendInFlight,
			m.recvStartedTotal, m.recvCompleteBytes, m.recvDispatchBytes,
			m.closedTotal, m.blockedGauge,
		} {
			if err := reg.Register(c); err != nil {
				// a shared process-wide monitor may be constructed more than
				// once in tests; AlreadyRegisteredError is expected and benign.
				var are prometheus.AlreadyRegisteredError
				if !errors.As(err, &are) {
					panic(err)
				}
			}
		}
	}

	return m
}

func (m *mon) IsSendBlocked() bool {
	return m.blocked.Load()
}

func (m *mon) SetSendBlocked(blocked bool) {
	m.blocked.Store(blocked)
	if blocked {
		m.blockedGauge.Set(1)
	} else {
		m.blockedGauge.Set(0)
	}
}

func (m *mon) Scheduled(bytes int) {
	m.scheduledBytes.Add(float64(bytes))
}

func (m *mon) SendStarting(bytes int) {
	m.sendStartingBytes.Add(float64(bytes))
	m.sendInFlight.Inc()
}

func (m *mon) SendCompleted(bytes int) {
	m.sendCompleteBytes.Add(float64(bytes))
	m.sendInFlight.Dec()
}

func (m *mon) ReceiveStarting() {
	m.recvStartedTotal.Inc()
}

func (m *mon) ReceiveCompleted(bytes int) {
	m.recvCompleteBytes.Add(float64(bytes))
}

func (m *mon) ReceiveDispatched(bytes int) {
	m.recvDispatchBytes.Add(float64(bytes))
}

func (m *mon) Closed() {
	m.closedTotal.Inc()
}
