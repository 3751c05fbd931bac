package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model",
		"ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS", "MATCH_BATCH_SIZE",
		"FREE_MESSAGE_QUOTA", "REPLY_DELAY_MIN_MS", "REPLY_DELAY_MAX_MS", "REPLY_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, 6, cfg.AI.MatchBatchSize)
	assert.Nil(t, cfg.AI.Temperature)
	assert.Equal(t, 5, cfg.Chat.FreeMessageQuota)
	assert.Equal(t, 2*time.Second, cfg.Chat.ReplyDelayMin)
	assert.Equal(t, 5*time.Second, cfg.Chat.ReplyDelayMax)
	assert.Equal(t, 20*time.Second, cfg.Chat.ReplyTimeout)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9090")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "doubao-pro")
	t.Setenv("ARK_TEMPERATURE", "0.7")
	t.Setenv("FREE_MESSAGE_QUOTA", "10")
	t.Setenv("REPLY_DELAY_MIN_MS", "100")
	t.Setenv("REPLY_DELAY_MAX_MS", "300")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.True(t, cfg.AI.Enabled())
	require.NotNil(t, cfg.AI.Temperature)
	assert.InDelta(t, 0.7, *cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 10, cfg.Chat.FreeMessageQuota)
	assert.Equal(t, 100*time.Millisecond, cfg.Chat.ReplyDelayMin)
	assert.Equal(t, 300*time.Millisecond, cfg.Chat.ReplyDelayMax)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"PORT":               "80 80",
		"ARK_MAX_TOKENS":     "lots",
		"FREE_MESSAGE_QUOTA": "-1",
		"REPLY_DELAY_MIN_MS": "9000",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAIConfigEnabledWithAccessKeys(t *testing.T) {
	cfg := AIConfig{Model: "m", AccessKey: "ak", SecretKey: "sk"}
	assert.True(t, cfg.Enabled())

	cfg.SecretKey = ""
	assert.False(t, cfg.Enabled())
}
