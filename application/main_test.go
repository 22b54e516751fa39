package application

import (
	"os"
	"testing"

	"casino/economy-bot/config"
)

func TestMain(m *testing.M) {
	// Set up test config once for all tests
	testConfig := config.NewTestConfig()
	testConfig.DiscordToken = "test-token"
	config.SetTestConfig(testConfig)

	_ = config.Get()

	code := m.Run()

	os.Exit(code)
}
