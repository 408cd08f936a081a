package quorum_test

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/quorumtest"
)

func TestCodecSchema(t *testing.T) {
	quorumtest.AssertCodec(t, "codec.proto", &quorum.Metadata{})
}
