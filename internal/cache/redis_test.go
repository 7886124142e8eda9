package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"IMA_BACK-END/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{Redis: config.RedisConfig{
		Host:         "127.0.0.1",
		Port:         1,
		Password:     "secret",
		DB:           2,
		DialTimeout:  100 * time.Millisecond,
		ReadTimeout:  100 * time.Millisecond,
		WriteTimeout: 100 * time.Millisecond,
	}}
}

func TestOptions(t *testing.T) {
	opts := Options(testConfig())

	assert.Equal(t, "127.0.0.1:1", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 100*time.Millisecond, opts.DialTimeout)
}

func TestPing_Unreachable(t *testing.T) {
	client := NewClient(testConfig())
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := Ping(ctx, client)
	assert.ErrorContains(t, err, "redis ping 127.0.0.1:1")
}
