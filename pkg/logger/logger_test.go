package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hmartin/gexsight/pkg/config"
)

// captureLogger writes JSON entries into a buffer for inspection.
func captureLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	return &Logger{zlog: zlog}, &buf
}

func parseEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestNewSetsGlobalLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := New(&config.Config{Env: "production", LogLevel: tt.level, LogFormat: "json"})
			if log == nil {
				t.Fatal("expected a logger")
			}
			if zerolog.GlobalLevel() != tt.want {
				t.Errorf("global level = %v, want %v", zerolog.GlobalLevel(), tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelMethods(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log, buf := captureLogger()

	tests := []struct {
		level string
		emit  func(string)
	}{
		{"debug", log.Debug},
		{"info", log.Info},
		{"warn", log.Warn},
		{"error", log.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.emit("Scoring cycle completed")

			entry := parseEntry(t, buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %v", entry["level"], tt.level)
			}
			if entry["message"] != "Scoring cycle completed" {
				t.Errorf("unexpected message %v", entry["message"])
			}
		})
	}
}

func TestFormattedMethods(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log, buf := captureLogger()

	log.Infof("Scored %d tickers. Top 5: %s", 3, "SPY(78), QQQ(64), IWM(41)")
	entry := parseEntry(t, buf)
	if entry["message"] != "Scored 3 tickers. Top 5: SPY(78), QQQ(64), IWM(41)" {
		t.Errorf("unexpected message %v", entry["message"])
	}

	buf.Reset()
	log.Warnf("Discord webhook returned %d", 429)
	entry = parseEntry(t, buf)
	if entry["level"] != "warn" || entry["message"] != "Discord webhook returned 429" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestWithField(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log, buf := captureLogger()

	log.WithField("job", "scoring_cycle").Info("Job started")

	entry := parseEntry(t, buf)
	if entry["job"] != "scoring_cycle" {
		t.Errorf("job = %v, want scoring_cycle", entry["job"])
	}
	if entry["message"] != "Job started" {
		t.Errorf("unexpected message %v", entry["message"])
	}
}

func TestWithFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log, buf := captureLogger()

	log.WithFields(map[string]interface{}{
		"ticker":  "SPY",
		"net_gex": -1.2e9,
		"score":   78,
	}).Info("Scoring cycle completed")

	entry := parseEntry(t, buf)
	if entry["ticker"] != "SPY" {
		t.Errorf("ticker = %v, want SPY", entry["ticker"])
	}
	if entry["net_gex"] != -1.2e9 {
		t.Errorf("net_gex = %v, want -1.2e9", entry["net_gex"])
	}
	if entry["score"] != float64(78) {
		t.Errorf("score = %v, want 78", entry["score"])
	}
}

func TestWithError(t *testing.T) {
	log, buf := captureLogger()

	log.WithError(errors.New("redis connection failed")).Error("Could not cache gamma levels")

	entry := parseEntry(t, buf)
	if entry["error"] != "redis connection failed" {
		t.Errorf("error = %v", entry["error"])
	}
	if entry["message"] != "Could not cache gamma levels" {
		t.Errorf("unexpected message %v", entry["message"])
	}
}
