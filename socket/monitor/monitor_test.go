package monitor_test

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nabbar/tcpsock/socket/monitor"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Monitor", func() {
	It("defaults to not send-blocked", func() {
		m := monitor.New(nil)
		Expect(m.IsSendBlocked()).To(BeFalse())
	})

	It("reflects SetSendBlocked", func() {
		m := monitor.New(nil)
		m.SetSendBlocked(true)
		Expect(m.IsSendBlocked()).To(BeTrue())
		m.SetSendBlocked(false)
		Expect(m.IsSendBlocked()).To(BeFalse())
	})

	It("accepts every lifecycle notification without panicking", func() {
		m := monitor.New(nil)
		m.Scheduled(10)
		m.SendStarting(10)
		m.SendCompleted(10)
		m.ReceiveStarting()
		m.ReceiveCompleted(5)
		m.ReceiveDispatched(5)
		m.Closed()
	})

	It("can be constructed more than once against the same registerer", func() {
		reg := prometheus.NewRegistry()
		Expect(func() {
			_ = monitor.New(reg)
			_ = monitor.New(reg)
		}).ToNot(Panic())
	})
})
