package service

import (
	"elearn_backend/pkg/logger"
	"os"
	"testing"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}
