package rpc

import (
	"os"
	"testing"

	"github.com/solgateway/rpc-consensus/pkg/slog"
)

func TestMain(m *testing.M) {
	slog.Init(nil)
	os.Exit(m.Run())
}
