// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/medlit/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(types.LoggingConfig{Level: "info", Format: "json"}, &buf)

	log.Debug().Msg("hidden")
	srcLog := WithSource(log, "pubmed", "cancer")
	srcLog.Info().Int("count", 3).Msg("search done")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "search done", entry["message"])
	assert.Equal(t, "pubmed", entry["source"])
	assert.Equal(t, "cancer", entry["query"])
	assert.Equal(t, float64(3), entry["count"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(types.LoggingConfig{Level: "debug", Format: "console"}, &buf)

	paperLog := WithPaper(log, "arxiv", "2401.00001")
	paperLog.Debug().Msg("parsed")

	out := buf.String()
	assert.Contains(t, out, "parsed")
	assert.Contains(t, out, "2401.00001")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
