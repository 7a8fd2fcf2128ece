package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" DEBUG ": zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}

	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestBuild(t *testing.T) {
	for _, env := range []string{"dev", "prod", ""} {
		l, err := Build(Config{Env: env, Level: "warn", ServiceName: "recordctl"})
		require.NoError(t, err, env)

		assert.False(t, l.Core().Enabled(zapcore.InfoLevel), env)
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel), env)
	}
}
