package tcp_test

import (
	"context"
	"net"
	"time"

	"github.com/nabbar/tcpsock/socket/config"
	"github.com/nabbar/tcpsock/socket/conn"
	sckrt "github.com/nabbar/tcpsock/socket/server/tcp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func echoHandler(b *conn.Bridge) {
	buf := make([]byte, 4096)
	for {
		n, err := b.Read(buf)
		if n > 0 {
			_, _ = b.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

var _ = Describe("TCP Server", func() {
	var (
		srv sckrt.ServerTCP
		ctx context.Context
		cnl context.CancelFunc
	)

	BeforeEach(func() {
		var err error
		srv, err = sckrt.New(nil, echoHandler, config.Default(), "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())

		ctx, cnl = context.WithCancel(context.Background())
	})

	AfterEach(func() {
		_ = srv.Close()
		cnl()
	})

	It("rejects a non-nil tls placeholder", func() {
		_, err := sckrt.New(struct{}{}, echoHandler, config.Default(), "127.0.0.1:0")
		Expect(err).To(HaveOccurred())
	})

	It("tracks open connections and echoes data", func() {
		addr := "127.0.0.1:18099"
		s2, err := sckrt.New(nil, echoHandler, config.Default(), addr)
		Expect(err).ToNot(HaveOccurred())
		defer s2.Close()

		go func() { _ = s2.Listen(ctx) }()
		Eventually(s2.IsRunning, time.Second).Should(BeTrue())

		c, err := net.Dial("tcp", addr)
		Expect(err).ToNot(HaveOccurred())
		defer c.Close()

		Eventually(s2.OpenConnections, time.Second).Should(Equal(int64(1)))

		_, err = c.Write([]byte("echo"))
		Expect(err).ToNot(HaveOccurred())

		buf := make([]byte, 4)
		c.SetReadDeadline(time.Now().Add(time.Second))
		n, err := c.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("echo"))

		_ = c.Close()
		Eventually(s2.OpenConnections, time.Second).Should(Equal(int64(0)))
	})

	It("aggregates each connection's terminal close error", func() {
		addr := "127.0.0.1:18100"
		s3, err := sckrt.New(nil, echoHandler, config.Default(), addr)
		Expect(err).ToNot(HaveOccurred())
		defer s3.Close()

		go func() { _ = s3.Listen(ctx) }()
		Eventually(s3.IsRunning, time.Second).Should(BeTrue())

		c, err := net.Dial("tcp", addr)
		Expect(err).ToNot(HaveOccurred())

		Eventually(s3.OpenConnections, time.Second).Should(Equal(int64(1)))
		_ = c.Close()

		Eventually(s3.Errors, time.Second).ShouldNot(BeEmpty())
	})
})
