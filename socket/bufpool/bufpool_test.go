package bufpool_test

import (
	"context"
	"time"

	"github.com/nabbar/tcpsock/socket/bufpool"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pool", func() {
	Describe("CheckOut / CheckIn", func() {
		It("yields a region of exactly the configured chunk size", func() {
			p := bufpool.New(4, 128)
			b, err := p.CheckOut(context.Background())
			Expect(err).ToNot(HaveOccurred())
			Expect(b.Len()).To(Equal(128))
			Expect(p.CheckIn(b)).To(Succeed())
		})

		It("accounts for every checked-out buffer exactly once (BufferAccounting)", func() {
			p := bufpool.New(2, 64)
			a, _ := p.CheckOut(context.Background())
			b, _ := p.CheckOut(context.Background())
			Expect(p.CheckIn(a)).To(Succeed())
			Expect(p.CheckIn(b)).To(Succeed())
		})

		It("detects a double check-in as a programming error", func() {
			p := bufpool.New(1, 64)
			b, _ := p.CheckOut(context.Background())
			Expect(p.CheckIn(b)).To(Succeed())
			Expect(p.CheckIn(b)).To(HaveOccurred())
		})

		It("blocks CheckOut when exhausted until a buffer returns", func() {
			p := bufpool.New(1, 64)
			b, _ := p.CheckOut(context.Background())

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, err := p.CheckOut(ctx)
			Expect(err).To(HaveOccurred())

			Expect(p.CheckIn(b)).To(Succeed())

			ctx2, cancel2 := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel2()
			_, err = p.CheckOut(ctx2)
			Expect(err).ToNot(HaveOccurred())
		})

		It("does not zero regions between uses", func() {
			p := bufpool.New(1, 8)
			b, _ := p.CheckOut(context.Background())
			copy(b.Bytes(), []byte("ABCDEFGH"))
			Expect(p.CheckIn(b)).To(Succeed())

			b2, _ := p.CheckOut(context.Background())
			Expect(b2.Bytes()).To(Equal([]byte("ABCDEFGH")))
		})
	})

	Describe("Cap and ChunkSize", func() {
		It("reports the constructed capacity and chunk size", func() {
			p := bufpool.New(7, 256)
			Expect(p.Cap()).To(Equal(7))
			Expect(p.ChunkSize()).To(Equal(256))
		})
	})
})
