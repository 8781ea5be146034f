// Package logging writes the session log. A full screen terminal UI owns
// stdout and stderr, so log output goes to a file under the user's state
// directory instead.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const logFileName = "tabclip.log"

// New returns a logger appending to the session log file. If the file cannot
// be opened the logger discards output; logging problems never block the UI.
func New(debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.InfoLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}

	dir := stateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return log
	}

	f, err := os.OpenFile(filepath.Join(dir, logFileName),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return log
	}
	log.SetOutput(f)
	return log
}

// Path returns where the session log lives, for display in help output.
func Path() string {
	return filepath.Join(stateDir(), logFileName)
}

// stateDir returns XDG_STATE_HOME/tabclip or ~/.local/state/tabclip
func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "tabclip")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "tabclip")
}
