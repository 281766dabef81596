package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mcerrors "github.com/matzehuels/mavcrawl/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvMongoURI, "")
	t.Setenv(EnvRedisAddr, "")
	path := writeConfig(t, `
repository = "cloudera"

[crawl]
workers = 4
sample_size = 100
interval = "500ms"

[probe]
timeout = "45s"
args = ["-o"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Crawl.Workers != 4 || cfg.Crawl.SampleSize != 100 {
		t.Errorf("crawl = %+v", cfg.Crawl)
	}
	if cfg.Crawl.Interval.Duration != 500*time.Millisecond {
		t.Errorf("interval = %v", cfg.Crawl.Interval)
	}
	if cfg.Probe.Timeout.Duration != 45*time.Second || cfg.Probe.Binary != "mvn" {
		t.Errorf("probe = %+v", cfg.Probe)
	}
	repo, err := cfg.Repo()
	if err != nil {
		t.Fatal(err)
	}
	if repo.Name != "cloudera" || len(repo.ProbeRepositories) == 0 {
		t.Errorf("repo = %+v", repo)
	}
}

func TestLoadCustomRepository(t *testing.T) {
	t.Setenv(EnvMongoURI, "")
	t.Setenv(EnvRedisAddr, "")
	path := writeConfig(t, `
repository = "internal"

[repositories.internal]
base_url = "https://nexus.example.com/repository/maven-public"
file_info = "head"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	repo, _ := cfg.Repo()
	if repo.Name != "internal" || repo.BaseURL != "https://nexus.example.com/repository/maven-public/" {
		t.Errorf("repo = %+v", repo)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvMongoURI, "mongodb://localhost:27017")
	t.Setenv(EnvRedisAddr, "localhost:6379")
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Backend != StoreMongo || cfg.Store.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvMongoURI, "")
	t.Setenv(EnvRedisAddr, "")
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "colour = \"blue\"\n"},
		{"unknown repository", "repository = \"nowhere\"\n"},
		{"mongo without uri", "[store]\nbackend = \"mongo\"\n"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n"},
		{"bad duration", "[probe]\ntimeout = \"soon\"\n"},
		{"bad repository url", "repository = \"x\"\n[repositories.x]\nbase_url = \"ftp://x\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !mcerrors.Is(err, mcerrors.ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want INVALID_CONFIG", mcerrors.GetCode(err))
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestDefaultValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}
