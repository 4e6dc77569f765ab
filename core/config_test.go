package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ENV", "")
		conf := NewConfig()
		assert.Equal(t, "DEV", conf.Env)
		assert.Equal(t, "Codekids", conf.AppName)
		assert.True(t, conf.Debug)
		assert.False(t, conf.TestMode)
		assert.Equal(t, ":8000", conf.Server.Address)
		assert.Equal(t, 5*time.Second, conf.Server.ShutdownTimeout)
	})

	t.Run("test", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("TEST_SEEDFILE", "/tmp/seed.yaml")
		t.Setenv("TEST_SERVERSHUTDOWNTIMEOUT", "1s")
		conf := NewConfig()
		assert.Equal(t, "TEST", conf.Env)
		assert.True(t, conf.TestMode)
		assert.Equal(t, "/tmp/seed.yaml", conf.SeedFile)
		assert.Equal(t, time.Second, conf.Server.ShutdownTimeout)
	})

	t.Run("prod", func(t *testing.T) {
		t.Setenv("ENV", "prod")
		t.Setenv("PROD_ROLLBARTOKEN", "token")
		conf := NewConfig()
		assert.False(t, conf.Debug)
		assert.Equal(t, "token", conf.RollbarToken)
	})
}
