package logging

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitLevels(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	testCases := []struct {
		opts     Options
		expected log.Level
	}{
		{Options{}, log.InfoLevel},
		{Options{Level: "warn"}, log.WarnLevel},
		{Options{Level: "bogus"}, log.InfoLevel},
		{Options{Quiet: true, Level: "debug"}, log.ErrorLevel},
		{Options{Verbose: true, Quiet: true}, log.DebugLevel},
	}
	for i, testCase := range testCases {
		Init(testCase.opts)
		if expected, actual := testCase.expected, log.GetLevel(); actual != expected {
			t.Errorf("[i=%v] Expected level=%v but actual=%v", i, expected, actual)
		}
	}
}

func TestInitJSONFormat(t *testing.T) {
	defer log.SetFormatter(&log.TextFormatter{})

	Init(Options{Format: "JSON"})
	if _, ok := log.StandardLogger().Formatter.(*log.JSONFormatter); !ok {
		t.Errorf("Expected JSON formatter but actual=%T", log.StandardLogger().Formatter)
	}
}
