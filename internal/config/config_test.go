package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestReadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Read(viper.New())
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if got := cfg.BaseURL.String(); got != DefaultBaseURL {
		t.Errorf("expected base url %s, got %s", DefaultBaseURL, got)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.Timeout)
	}
	if cfg.SessionDriver != DriverFile {
		t.Errorf("expected file driver, got %q", cfg.SessionDriver)
	}
	if cfg.MaxTitleLength != 100 || cfg.MaxContentLength != 2000 {
		t.Errorf("unexpected form limits %d/%d", cfg.MaxTitleLength, cfg.MaxContentLength)
	}
	if !strings.HasSuffix(cfg.SessionDbUrl, "session.db") {
		t.Errorf("expected db url derived from session dir, got %q", cfg.SessionDbUrl)
	}
}

func TestReadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GOBLOG_API_BASE_URL", "https://blog.example.org/api")
	t.Setenv("GOBLOG_SESSION_DRIVER", "SQLite")
	t.Setenv("GOBLOG_FORM_MAX_TITLE_LENGTH", "42")
	t.Setenv("GOBLOG_DEBUG", "true")

	cfg, err := Read(viper.New())
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if cfg.BaseURL.Host != "blog.example.org" || cfg.BaseURL.Path != "/api" {
		t.Errorf("unexpected base url %s", cfg.BaseURL)
	}
	if cfg.SessionDriver != DriverSQLite {
		t.Errorf("expected sqlite driver, got %q", cfg.SessionDriver)
	}
	if cfg.MaxTitleLength != 42 {
		t.Errorf("expected max title length 42, got %d", cfg.MaxTitleLength)
	}
	if !cfg.Debug {
		t.Error("expected debug to be enabled")
	}
}

func TestReadRejectsInvalid(t *testing.T) {
	cases := []struct {
		Casename string
		Key      string
		Value    string
	}{
		{"relative base url", "GOBLOG_API_BASE_URL", "localhost:5000"},
		{"unknown driver", "GOBLOG_SESSION_DRIVER", "etcd"},
		{"zero content length", "GOBLOG_FORM_MAX_CONTENT_LENGTH", "0"},
	}

	for _, c := range cases {
		t.Run(c.Casename, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(c.Key, c.Value)
			if _, err := Read(viper.New()); err == nil {
				t.Errorf("expected an error for %s=%s", c.Key, c.Value)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test (testing.T.Chdir needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
