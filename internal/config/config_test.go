package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/webagent/internal/vendors"
)

func TestLoad_CreatesDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "webagent")
	conf, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, conf, Default)
	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}
	testboil.FailTestIfDiff(t, conf.Model(), vendors.DefaultChoice)
	ttl, err := conf.TTL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, ttl, 24*time.Hour)
}

func TestLoad_AppendsNewFields(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{"listen": ":9000", "default-model": "Gemini 2.5 Flash"}`), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	conf, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, conf.Listen, ":9000")
	testboil.FailTestIfDiff(t, conf.Model(), vendors.Gemini25Flash)
	testboil.FailTestIfDiff(t, conf.MaxIterations, Default.MaxIterations)

	b, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	testboil.AssertStringContains(t, string(b), `"tool-output-rune-limit": 21600`)
}

func TestLoad_Invalid(t *testing.T) {
	for name, content := range map[string]string{
		"bad json":     `{"listen":`,
		"bad model":    `{"default-model": "Llama"}`,
		"bad ttl":      `{"session-ttl": "forever"}`,
		"bad provider": `{"search-provider": "bing"}`,
		"negative":     `{"max-iterations": -1}`,
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			conf, err := Load(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			testboil.FailTestIfDiff(t, conf, Default)
		})
	}
}

func TestValidate_KeyedProviderWithoutKey(t *testing.T) {
	t.Setenv("BRAVE_API_KEY", "")
	c := Default
	c.SearchProvider = "brave"
	if err := c.Validate(); err != nil {
		t.Fatalf("a missing key should be reported at use, got: %v", err)
	}
}

func TestDir(t *testing.T) {
	t.Setenv("WEBAGENT_CONFIG_DIR", "/some/where")
	d, err := Dir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, d, filepath.Join("/some/where", "webagent"))
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is a warning", func(t *testing.T) {
		err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
		var w *ConfigurationWarning
		if !errors.As(err, &w) {
			t.Fatalf("expected ConfigurationWarning, got: %v", err)
		}
	})

	t.Run("loads variables", func(t *testing.T) {
		t.Setenv("WEBAGENT_TEST_VAR", "")
		os.Unsetenv("WEBAGENT_TEST_VAR")
		p := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(p, []byte("WEBAGENT_TEST_VAR=from-dotenv\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := LoadDotEnv(p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, os.Getenv("WEBAGENT_TEST_VAR"), "from-dotenv")
	})
}

func TestSetNonZeroValueFields(t *testing.T) {
	type s struct {
		A string
		B int
		c int
	}
	a := s{A: "set"}
	changed := setNonZeroValueFields(&a, &s{A: "other", B: 2, c: 3})
	testboil.FailTestIfDiff(t, changed, true)
	testboil.FailTestIfDiff(t, a, s{A: "set", B: 2})
	testboil.FailTestIfDiff(t, setNonZeroValueFields(&a, &s{B: 5}), false)
}
