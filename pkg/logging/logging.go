// Package logging configures the process-wide logrus logger for both
// binaries.
package logging

import (
	"strings"
	"sync"

	"github.com/onrik/logrus/filename"
	log "github.com/sirupsen/logrus"
)

var hookOnce sync.Once

type Options struct {
	Verbose bool
	Quiet   bool
	Level   string // Used when neither Verbose nor Quiet is set.
	Format  string // "text" or "json".
}

// Init applies opts to the standard logger.  Verbose wins over Quiet, which
// wins over an explicit level.  Init may be called more than once.
func Init(opts Options) {
	level := log.InfoLevel
	if parsed, err := log.ParseLevel(strings.TrimSpace(opts.Level)); err == nil && opts.Level != "" {
		level = parsed
	}
	if opts.Quiet {
		level = log.ErrorLevel
	}
	if opts.Verbose {
		hookOnce.Do(func() {
			log.AddHook(filename.NewHook())
		})
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	}
}
