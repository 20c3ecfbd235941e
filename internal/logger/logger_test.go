// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package logger

import (
	"os"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		encoding string
		wantErr  bool
	}{
		{"defaults", "", "", false},
		{"debug json", "debug", "json", false},
		{"warn console", "warn", "console", false},
		{"bad level", "loud", "json", true},
		{"bad encoding", "info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Log = nil
			err := Init(tt.level, tt.encoding)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init(%q, %q) error = %v, wantErr %v", tt.level, tt.encoding, err, tt.wantErr)
			}
			if !tt.wantErr && Log == nil {
				t.Error("expected logger to be set")
			}
		})
	}
}

func TestGetLoggerFallback(t *testing.T) {
	Log = nil
	if GetLogger() == nil {
		t.Fatal("expected fallback logger")
	}
}

func TestInitToFile(t *testing.T) {
	path := t.TempDir() + "/fb2gh.log"
	Log = nil
	if err := Init("info", "console", path); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Log.Info("hello")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "INFO") || !strings.Contains(string(data), "hello") {
		t.Errorf("unexpected log file content: %q", data)
	}
}
