package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 5200 || cfg.DataDir != "data" || cfg.LayoutsSource != LayoutsFromDir {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.DraftIdleTTL != 2*time.Hour || cfg.OptimizerTimeout != 30*time.Second {
		t.Fatalf("durations = %v %v", cfg.DraftIdleTTL, cfg.OptimizerTimeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DRAFT_IDLE_TTL", "15m")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("LAYOUTS_SOURCE", " DIR ")
	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 || cfg.DraftIdleTTL != 15*time.Minute {
		t.Fatalf("cfg = %+v", cfg)
	}
	if o := cfg.Origins(); len(o) != 2 || o[0] != "http://a.test" || o[1] != "http://b.test" {
		t.Fatalf("origins = %v", o)
	}
	if cfg.LayoutsSource != LayoutsFromDir {
		t.Fatalf("layouts source = %q", cfg.LayoutsSource)
	}
}

func TestValidateR2NeedsBucket(t *testing.T) {
	t.Setenv("LAYOUTS_SOURCE", "r2")
	if _, err := FromViper(viper.New()); err == nil {
		t.Fatalf("expected error without bucket")
	}
	t.Setenv("R2_BUCKET_NAME", "layouts")
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "acc")
	if _, err := FromViper(viper.New()); err != nil {
		t.Fatalf("r2 config: %v", err)
	}
	t.Setenv("LAYOUTS_SOURCE", "ftp")
	if _, err := FromViper(viper.New()); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}
