package tcp_test

import (
	"context"
	"net"
	"time"

	sckclt "github.com/nabbar/tcpsock/socket/client/tcp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// startLoopbackEcho starts a minimal echo listener for client tests, without
// depending on the server/tcp factory package (kept independent on purpose,
// the way the examples test client and server packages in isolation).
func startLoopbackEcho() (addr string, stop func()) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).ToNot(HaveOccurred())

	go func() {
		for {
			c, aerr := ln.Accept()
			if aerr != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 4096)
				for {
					n, rerr := c.Read(buf)
					if n > 0 {
						_, _ = c.Write(buf[:n])
					}
					if rerr != nil {
						return
					}
				}
			}(c)
		}
	}()

	return ln.Addr().String(), func() { _ = ln.Close() }
}

var _ = Describe("TCP Client Creation", func() {
	Context("with valid addresses", func() {
		It("creates a client for a host:port address", func() {
			cli, err := sckclt.New("127.0.0.1:8080")
			Expect(err).ToNot(HaveOccurred())
			Expect(cli).ToNot(BeNil())
		})

		It("creates a client for a port-only address", func() {
			cli, err := sckclt.New(":8082")
			Expect(err).ToNot(HaveOccurred())
			Expect(cli).ToNot(BeNil())
		})
	})

	Context("with invalid addresses", func() {
		It("fails with an empty address", func() {
			cli, err := sckclt.New("")
			Expect(err).To(MatchError(sckclt.ErrAddress))
			Expect(cli).To(BeNil())
		})

		It("fails with an unresolvable address", func() {
			cli, err := sckclt.New("not a valid address")
			Expect(err).To(MatchError(sckclt.ErrAddress))
			Expect(cli).To(BeNil())
		})
	})
})

var _ = Describe("TCP Client Communication", func() {
	It("connects, writes and reads an echoed response", func() {
		addr, stop := startLoopbackEcho()
		defer stop()

		cli, err := sckclt.New(addr)
		Expect(err).ToNot(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		Expect(cli.Connect(ctx)).To(Succeed())
		defer cli.Close()

		Expect(cli.IsConnected()).To(BeTrue())

		n, err := cli.Write([]byte("ping"))
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(4))

		buf := make([]byte, 4)
		n, err = cli.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("ping"))
	})

	It("reports not connected before Connect", func() {
		cli, err := sckclt.New("127.0.0.1:1")
		Expect(err).ToNot(HaveOccurred())
		Expect(cli.IsConnected()).To(BeFalse())
	})
})
