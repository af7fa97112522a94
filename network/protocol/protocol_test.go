package protocol_test

import (
	"encoding/json"

	. "github.com/nabbar/tcpsock/network/protocol"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NetworkProtocol", func() {
	Describe("String", func() {
		It("returns the net package name for known protocols", func() {
			Expect(NetworkTCP.String()).To(Equal("tcp"))
			Expect(NetworkTCP4.String()).To(Equal("tcp4"))
			Expect(NetworkTCP6.String()).To(Equal("tcp6"))
			Expect(NetworkUnix.String()).To(Equal("unix"))
		})

		It("returns empty string for unknown values", func() {
			Expect(NetworkProtocol(255).String()).To(Equal(""))
		})
	})

	Describe("Parse", func() {
		It("is case insensitive", func() {
			Expect(Parse("TCP")).To(Equal(NetworkTCP))
			Expect(Parse("Tcp4")).To(Equal(NetworkTCP4))
		})

		It("returns NetworkEmpty for unrecognized input", func() {
			Expect(Parse("carrier-pigeon")).To(Equal(NetworkEmpty))
		})
	})

	Describe("IsStream", func() {
		It("is true for tcp and unix", func() {
			Expect(NetworkTCP.IsStream()).To(BeTrue())
			Expect(NetworkUnix.IsStream()).To(BeTrue())
		})

		It("is false for datagram protocols", func() {
			Expect(NetworkUDP.IsStream()).To(BeFalse())
			Expect(NetworkUnixGram.IsStream()).To(BeFalse())
		})
	})

	Describe("JSON round trip", func() {
		It("marshals and unmarshals back to the same value", func() {
			data, err := json.Marshal(NetworkTCP)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(Equal(`"tcp"`))

			var got NetworkProtocol
			Expect(json.Unmarshal(data, &got)).To(Succeed())
			Expect(got).To(Equal(NetworkTCP))
		})
	})
})
