package oppool_test

import (
	"context"
	"net"

	"github.com/nabbar/tcpsock/socket/bufpool"
	"github.com/nabbar/tcpsock/socket/oppool"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pool", func() {
	It("yields a context with empty slots", func() {
		p := oppool.New(2)
		c := p.Get()
		Expect(c.Socket()).To(BeNil())
		_, ok := c.Buffer()
		Expect(ok).To(BeFalse())
		Expect(c.Listener()).To(BeNil())
	})

	It("clears socket, buffer and listener on Return (ContextAccounting)", func() {
		p := oppool.New(1)
		bp := bufpool.New(1, 16)
		b, _ := bp.CheckOut(context.Background())

		c := p.Get()
		c.BindSocket(&net.TCPConn{})
		c.BindBuffer(b)
		c.SetListener(func(int, error) {})

		p.Return(c)

		Expect(c.Socket()).To(BeNil())
		_, ok := c.Buffer()
		Expect(ok).To(BeFalse())
		Expect(c.Listener()).To(BeNil())
	})

	It("does not leak a reference to the buffer it once held", func() {
		p := oppool.New(1)
		bp := bufpool.New(1, 16)
		b, _ := bp.CheckOut(context.Background())

		c := p.Get()
		c.BindBuffer(b)
		c.UnbindBuffer()

		_, ok := c.Buffer()
		Expect(ok).To(BeFalse())
	})
})
