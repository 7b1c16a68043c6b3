// utils/logger.go
package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. Tests and commands get a usable default
// before InitLogger runs.
var Log = logrus.New()

// InitLogger sets the level and, when file is non-empty, rotates output into
// file while still echoing to stderr.
func InitLogger(level, file string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var out io.Writer = os.Stderr
	if strings.TrimSpace(file) != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    20,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	}
	Log.SetOutput(out)

	if err != nil {
		Log.Warnf("⚠️  [LOG] unknown LOG_LEVEL %q, using info", level)
	}
}
