package bufpool_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBufPool(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "socket/bufpool Suite")
}
