package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitParsesLevels(t *testing.T) {
	defer Init("info")
	cases := map[string]string{
		"debug":    "debug",
		"WARN":     "warn",
		"warning":  "warn",
		" Error ":  "error",
		"fatal":    "fatal",
		"nonsense": "info",
		"":         "info",
	}
	for in, want := range cases {
		Init(in)
		assert.Equal(t, want, LevelString(), "Init(%q)", in)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	setOutput(&buf)
	defer setOutput(nopWriter{})
	defer Init("info")

	Init("warn")
	Debugf("debug-msg %d", 1)
	Infof("info-msg %d", 2)
	Warnf("upload rejected for %s", "en-US/Web")
	Error("storage unavailable")
	Println("suppressed")

	out := buf.String()
	assert.NotContains(t, out, "debug-msg")
	assert.NotContains(t, out, "info-msg")
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "upload rejected for en-US/Web")
	assert.Contains(t, out, "storage unavailable")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "ERROR")
}

func TestPrintlnAtInfo(t *testing.T) {
	var buf bytes.Buffer
	setOutput(&buf)
	defer setOutput(nopWriter{})

	Init("info")
	Println("serving", 42)
	require.Contains(t, buf.String(), "serving 42")
	require.NotContains(t, buf.String(), "serving 42\n\n")
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
