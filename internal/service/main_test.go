package service

import (
	"os"
	"testing"

	"dailydrop-service/pkg/config"
	"dailydrop-service/prometheus"
)

func TestMain(m *testing.M) {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	prometheus.InitMetrics(cfg)
	os.Exit(m.Run())
}
