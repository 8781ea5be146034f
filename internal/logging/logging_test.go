package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWritesToStateDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmp)

	log := New(false)
	log.Info("hello from the test")

	data, err := os.ReadFile(filepath.Join(tmp, "tabclip", "tabclip.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello from the test") {
		t.Errorf("log missing entry: %s", data)
	}
}

func TestDebugLevel(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmp)

	if New(false).IsLevelEnabled(logrus.DebugLevel) {
		t.Error("debug should be off by default")
	}
	if !New(true).IsLevelEnabled(logrus.DebugLevel) {
		t.Error("debug flag should enable debug level")
	}
}

func TestPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmp)

	want := filepath.Join(tmp, "tabclip", "tabclip.log")
	if got := Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
