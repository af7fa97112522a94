package tcp_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestClientTCP(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "socket/client/tcp Suite")
}
