package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInstance(t *testing.T) {
	clear1 := setEnv("BERRYPOKER_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := setEnv("BERRYPOKER_PORT", "9191")
	defer clear2()

	config = Config{}

	a := assert.New(t)
	cfg := Instance()
	a.Equal("127.0.0.1", cfg.BindAddress)
	a.Equal(9191, cfg.Port)
	a.Equal("testdata.db", cfg.DatabasePath)
	a.Equal(45*time.Minute, cfg.RoomIdleTimeout)

	// ensure that it's only loaded once
	_ = os.Setenv("BERRYPOKER_PORT", "9292")
	// ensure we aren't using a pointer
	cfg.Port = 1
	cfg = Instance()
	a.Equal(9191, cfg.Port)
}

func TestDefaults(t *testing.T) {
	assert.NoError(t, Load())
	cfg := Instance()
	assert.Equal(t, "0.0.0.0", cfg.BindAddress)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func setEnv(key, val string) func() {
	orig := os.Getenv(key)
	_ = os.Setenv(key, val)
	return func() {
		if orig == "" {
			_ = os.Unsetenv(key)
		} else {
			_ = os.Setenv(key, orig)
		}
	}
}
