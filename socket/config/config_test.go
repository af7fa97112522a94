package config_test

import (
	"github.com/nabbar/tcpsock/socket/config"
	libptc "github.com/nabbar/tcpsock/network/protocol"
	"github.com/spf13/viper"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	Describe("Default", func() {
		It("validates", func() {
			Expect(config.Default().Validate()).To(Succeed())
		})
	})

	Describe("Validate", func() {
		It("rejects a zero buffer pool", func() {
			c := config.Default()
			c.BufferChunksCount = 0
			Expect(c.Validate()).To(HaveOccurred())
		})

		It("rejects a non-stream network", func() {
			c := config.Default()
			c.Network = libptc.NetworkUDP
			Expect(c.Validate()).To(HaveOccurred())
		})

		It("rejects a negative close timeout", func() {
			c := config.Default()
			c.SocketCloseTimeout = -1
			Expect(c.Validate()).To(HaveOccurred())
		})
	})

	Describe("Load", func() {
		It("decodes a network field given as a string", func() {
			v := viper.New()
			v.Set("network", "tcp")
			v.Set("buffer_chunks_count", 10)
			v.Set("socket_buffer_size", 4096)
			v.Set("send_receive_pool_size", 4)
			v.Set("max_send_packet_size", 65536)

			c, err := config.Load(v)
			Expect(err).ToNot(HaveOccurred())
			Expect(c.Network).To(Equal(libptc.NetworkTCP))
			Expect(c.BufferChunksCount).To(Equal(10))
		})
	})
})
