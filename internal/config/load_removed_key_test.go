package config

import (
	"strings"
	"testing"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// TestUnmarshalExact_RejectsRemovedDSNKey guards against silently accepting
// a leftover MySQL-era config key once the server surface is gone.
func TestUnmarshalExact_RejectsRemovedDSNKey(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")

	configYAML := `
database:
  path: mirror.db
  dsn: "user:pass@tcp(localhost:4000)/test"
`

	if err := v.ReadConfig(strings.NewReader(configYAML)); err != nil {
		t.Fatalf("failed to read config yaml: %v", err)
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc()))
	if err == nil {
		t.Fatal("expected unmarshal error for removed database.dsn key")
	}
	if !strings.Contains(err.Error(), "dsn") {
		t.Fatalf("expected error to mention dsn, got: %v", err)
	}
}
