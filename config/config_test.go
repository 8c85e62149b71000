package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"smartfraud/ml"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9000
ml:
  model_path: /srv/models/fraud.json
  reload: on_change
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Port != 9000 {
		t.Errorf("port: %d", cfg.Http.Port)
	}
	if cfg.Http.Timeout != 30*time.Second {
		t.Errorf("timeout default not applied: %v", cfg.Http.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level default not applied: %q", cfg.Log.Level)
	}
	if cfg.ReloadPolicy() != ml.ReloadOnChange {
		t.Errorf("reload: %q", cfg.ML.Reload)
	}
}

func TestLoadParsesDurations(t *testing.T) {
	cfg, err := Load(writeConfig(t, "http:\n  timeout: 5s\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Timeout != 5*time.Second {
		t.Fatalf("timeout: %v", cfg.Http.Timeout)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []string{
		"http:\n  port: 0\n",
		"ml:\n  model_path: \"\"\n",
		"ml:\n  reload: sometimes\n",
		"http: [broken\n",
	}
	for _, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("expected error for %q", body)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "config.yaml")
	body := `
ml:
  model_path: ./models/finish_model.json
database:
  path: reference.db
log:
  file: /var/log/smartfraud.log
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	// loaded from a subdirectory the way cmd/main.go falls back to ../config.yaml
	sub := filepath.Join(root, "cmd")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	rel, err := filepath.Rel(sub, path)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(filepath.Join(sub, rel))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := filepath.Join(root, "models", "finish_model.json"); cfg.ML.ModelPath != want {
		t.Errorf("model path: got %q want %q", cfg.ML.ModelPath, want)
	}
	if want := filepath.Join(root, "reference.db"); cfg.Database.Path != want {
		t.Errorf("database path: got %q want %q", cfg.Database.Path, want)
	}
	if cfg.Log.File != "/var/log/smartfraud.log" {
		t.Errorf("absolute log path changed: %q", cfg.Log.File)
	}
}

func TestResolvePathsKeepsEmptyPaths(t *testing.T) {
	cfg := Default()
	cfg.ResolvePaths("..")
	if cfg.Database.Path != "" || cfg.Log.File != "" {
		t.Fatalf("empty paths should stay empty: %+v", cfg)
	}
	if want := filepath.Join("..", "models", "finish_model.json"); cfg.ML.ModelPath != want {
		t.Fatalf("model path: got %q want %q", cfg.ML.ModelPath, want)
	}
}
