package cli

import (
	"os"
	"path/filepath"
	"testing"

	"gastos/internal/config"
	"gastos/internal/log"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	if err := LoadEnvFile(); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}

	t.Setenv("GASTOS_TEST_VALUE", "")
	os.Unsetenv("GASTOS_TEST_VALUE")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GASTOS_TEST_VALUE=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnvFile(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("GASTOS_TEST_VALUE"); got != "from-dotenv" {
		t.Fatalf("GASTOS_TEST_VALUE = %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "json"}, log.ComponentWorker)
	if logger.Component() != log.ComponentWorker {
		t.Fatalf("component = %q", logger.Component())
	}
}
