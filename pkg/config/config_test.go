package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testConf struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type validatedConf struct {
	Port int `yaml:"port"`
}

func (c *validatedConf) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_CONF_NAME", "inventar")
	path := writeConf(t, "name: ${TEST_CONF_NAME}\nport: 8080\n")

	var c testConf
	if err := Load(path, &c); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Name != "inventar" || c.Port != 8080 {
		t.Errorf("config = %+v", c)
	}
}

func TestLoadRunsValidator(t *testing.T) {
	path := writeConf(t, "port: 0\n")
	var c validatedConf
	if err := Load(path, &c); err == nil {
		t.Error("expected validation error for port 0")
	}
}

func TestLoadIfPresentMissingFile(t *testing.T) {
	c := testConf{Name: "default"}
	found, err := LoadIfPresent(filepath.Join(t.TempDir(), "nope.yaml"), &c)
	if err != nil {
		t.Fatalf("LoadIfPresent: %v", err)
	}
	if found {
		t.Error("found = true for missing file")
	}
	if c.Name != "default" {
		t.Errorf("target modified: %+v", c)
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	path := writeConf(t, "")
	c := testConf{Name: "default", Port: 8080}
	if err := Load(path, &c); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Name != "default" || c.Port != 8080 {
		t.Errorf("config = %+v, want defaults preserved", c)
	}
}
