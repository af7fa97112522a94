package conn_test

import (
	"net"
	"sync"
	"time"

	"github.com/nabbar/tcpsock/logger"
	"github.com/nabbar/tcpsock/socket/bufpool"
	"github.com/nabbar/tcpsock/socket/config"
	"github.com/nabbar/tcpsock/socket/conn"
	"github.com/nabbar/tcpsock/socket/monitor"
	"github.com/nabbar/tcpsock/socket/oppool"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Connection", func() {
	var (
		cn     *conn.Connection
		client net.Conn
		peer   net.Conn
	)

	BeforeEach(func() {
		cfg := config.Default()
		pool := bufpool.New(4, 1024)
		ctxPool := oppool.New(4)
		mon := monitor.New(nil)
		log := logger.Discard()

		client, peer = net.Pipe()
		cn = conn.NewUnbound("pipe", cfg, pool, ctxPool, mon, log, nil)
	})

	AfterEach(func() {
		_ = cn.Close()
		_ = client.Close()
	})

	It("coalesces an enqueued send into one socket write", func() {
		Expect(cn.InitSocket(client)).To(Succeed())

		Expect(cn.EnqueueSend([]byte("hello"))).To(Succeed())

		buf := make([]byte, 5)
		peer.SetReadDeadline(time.Now().Add(time.Second))
		n, err := peer.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("hello"))
	})

	It("dispatches received bytes to the registered consumer", func() {
		received := make(chan []byte, 1)
		Expect(cn.SetConsumer(func(ranges []conn.FilledRange) {
			for _, r := range ranges {
				b := make([]byte, r.Len())
				copy(b, r.Bytes())
				received <- b
			}
		})).To(Succeed())

		Expect(cn.InitSocket(client)).To(Succeed())

		go func() {
			_, _ = peer.Write([]byte("world"))
		}()

		Eventually(received, time.Second).Should(Receive(Equal([]byte("world"))))
	})

	It("rejects a second consumer registration", func() {
		Expect(cn.SetConsumer(func([]conn.FilledRange) {})).To(Succeed())
		Expect(cn.SetConsumer(func([]conn.FilledRange) {})).To(HaveOccurred())
	})

	It("runs the close callback exactly once", func() {
		count := 0
		cn2 := conn.NewUnbound("pipe2", config.Default(), bufpool.New(4, 1024), oppool.New(4), monitor.New(nil), logger.Discard(), func(error) {
			count++
		})
		c2, p2 := net.Pipe()
		Expect(cn2.InitSocket(c2)).To(Succeed())
		defer p2.Close()

		_ = cn2.Close()
		_ = cn2.Close()

		Eventually(func() int { return count }, time.Second).Should(Equal(1))
	})

	It("rejects sends once closed", func() {
		Expect(cn.InitSocket(client)).To(Succeed())
		_ = cn.Close()

		Eventually(func() error { return cn.EnqueueSend([]byte("x")) }, time.Second).Should(HaveOccurred())
	})

	It("supports re-registering the consumer from within its own invocation", func() {
		var mu sync.Mutex
		var received [][]byte
		done := make(chan struct{}, 1)

		var onBatch func(ranges []conn.FilledRange)
		onBatch = func(ranges []conn.FilledRange) {
			mu.Lock()
			for _, r := range ranges {
				b := make([]byte, r.Len())
				copy(b, r.Bytes())
				received = append(received, b)
			}
			n := len(received)
			mu.Unlock()

			if n < 2 {
				Expect(cn.SetConsumer(onBatch)).To(Succeed())
			} else {
				done <- struct{}{}
			}
		}
		Expect(cn.SetConsumer(onBatch)).To(Succeed())
		Expect(cn.InitSocket(client)).To(Succeed())

		go func() {
			_, _ = peer.Write([]byte("aaa"))
			_, _ = peer.Write([]byte("bbb"))
		}()

		Eventually(done, time.Second).Should(Receive())
	})

	It("reports the current queued send count via SendQueueSize", func() {
		Expect(cn.InitSocket(client)).To(Succeed())

		Expect(cn.EnqueueSend([]byte("first"))).To(Succeed())
		Expect(cn.EnqueueSend([]byte("second"))).To(Succeed())

		Eventually(cn.SendQueueSize, time.Second).Should(BeNumerically(">", 0))

		buf := make([]byte, 64)
		peer.SetReadDeadline(time.Now().Add(time.Second))
		_, _ = peer.Read(buf)
		_, _ = peer.Read(buf)

		Eventually(cn.SendQueueSize, time.Second).Should(Equal(0))
	})

	It("defers sends while the monitor reports send-blocked", func() {
		cfg := config.Default()
		mon := monitor.New(nil)
		blocked, unblocked := net.Pipe()
		cn2 := conn.NewUnbound("pipe-blocked", cfg, bufpool.New(4, 1024), oppool.New(4), mon, logger.Discard(), nil)
		Expect(cn2.InitSocket(blocked)).To(Succeed())
		defer func() {
			_ = cn2.Close()
			_ = unblocked.Close()
		}()

		mon.SetSendBlocked(true)
		Expect(cn2.EnqueueSend([]byte("blocked"))).To(Succeed())

		buf := make([]byte, 16)
		unblocked.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		_, err := unblocked.Read(buf)
		Expect(err).To(HaveOccurred())

		mon.SetSendBlocked(false)
		Expect(cn2.EnqueueSend([]byte("go"))).To(Succeed())

		unblocked.SetReadDeadline(time.Now().Add(time.Second))
		n, err := unblocked.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("blockedgo"))
	})
})
