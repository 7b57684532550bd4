package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInit_Levels(t *testing.T) {
	tests := []struct {
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		{"Info", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New()
			err := l.Init(tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Init(%q) expected error", tt.level)
				}
				return
			}
			if err != nil {
				t.Fatalf("Init(%q) error: %v", tt.level, err)
			}
			if !l.Log.Core().Enabled(tt.want) {
				t.Errorf("level %v not enabled after Init(%q)", tt.want, tt.level)
			}
			if tt.want > zapcore.DebugLevel && l.Log.Core().Enabled(tt.want-1) {
				t.Errorf("level %v unexpectedly enabled after Init(%q)", tt.want-1, tt.level)
			}
		})
	}
}

func TestNew_IsNop(t *testing.T) {
	if New().Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("New() should return a no-op logger")
	}
}
