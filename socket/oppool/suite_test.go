package oppool_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestOpPool(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "socket/oppool Suite")
}
