package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/output"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

// selfPlayText plays n games of id and returns their text records.
func selfPlayText(t *testing.T, id string, n, maxPlies int) string {
	t.Helper()
	var buf bytes.Buffer
	p := newSelfPlayer(id, maxPlies)
	require.NoError(t, p.run(context.Background(), n, output.NewTextWriter(&buf, 0), &buf, false))
	return buf.String()
}

func TestReplayGames_RoundTrip(t *testing.T) {
	tests := []struct {
		variant  string
		maxPlies int
	}{
		{"standard", 12},
		{"gardner", 40},
		{"chess960", 10},
	}
	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			text := selfPlayText(t, tt.variant, 2, tt.maxPlies)

			var buf bytes.Buffer
			err := replayGames(strings.NewReader(text), variant.MustDefault(), catalog.MustDefault(), nil,
				output.NewTextWriter(&buf, 0))
			require.NoError(t, err)
			assert.Equal(t, text, buf.String())
		})
	}
}

func TestReplayGames_JSON(t *testing.T) {
	text := selfPlayText(t, "gardner", 2, 8)

	var buf bytes.Buffer
	writer := output.NewJSONWriter(&buf)
	require.NoError(t, replayGames(strings.NewReader(text), variant.MustDefault(), catalog.MustDefault(), nil, writer))
	require.NoError(t, writer.Close())

	var got output.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Games, 2)
	for i, g := range got.Games {
		assert.Equal(t, "gardner", g.Variant)
		assert.Equal(t, len(g.Moves), g.PlyCount)
		assert.Equal(t, []string{"1", "2"}[i], g.Tags["Round"])
	}
}

func TestReplayGames_StopsAtBadRecord(t *testing.T) {
	text := `[Variant "standard"]

1. e2e4 e7e5 *

[Variant "standard"]

1. e2e4 e2e4 *
`
	var buf bytes.Buffer
	err := replayGames(strings.NewReader(text), variant.MustDefault(), catalog.MustDefault(), nil,
		output.NewTextWriter(&buf, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game 2 (line 5)")
	assert.Contains(t, buf.String(), "1. e2e4 e7e5 *", "first game is written")
}

func TestReplayGames_ParseError(t *testing.T) {
	err := replayGames(strings.NewReader("[Variant]\n"), variant.MustDefault(), catalog.MustDefault(), nil,
		output.NewTextWriter(&bytes.Buffer{}, 0))
	assert.ErrorIs(t, err, errors.ErrInvalidRecord)
}

func TestReplayGames_Select(t *testing.T) {
	text := `[Variant "standard"]
[Round "1"]

1. e2e4 *

[Variant "gardner"]
[Round "2"]

1. a2a3 *

[Variant "standard"]
[Round "3"]

1. d2d4 *
`
	tests := []struct {
		criteria string
		want     []string
	}{
		{"", []string{"1", "2", "3"}},
		{"Variant = standard", []string{"1", "3"}},
		{"Variant = standard; Round > 1", []string{"3"}},
		{"Round >= 4", nil},
	}
	for _, tt := range tests {
		t.Run(tt.criteria, func(t *testing.T) {
			sel, err := selection(tt.criteria)
			require.NoError(t, err)

			var buf bytes.Buffer
			writer := output.NewJSONWriter(&buf)
			require.NoError(t, replayGames(strings.NewReader(text), variant.MustDefault(), catalog.MustDefault(), sel, writer))
			require.NoError(t, writer.Close())

			// Nothing is written when no game is selected.
			var got output.JSONOutput
			if buf.Len() > 0 {
				require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
			}
			var rounds []string
			for _, g := range got.Games {
				rounds = append(rounds, g.Tags["Round"])
			}
			assert.Equal(t, tt.want, rounds)
		})
	}
}

func TestSelection_Invalid(t *testing.T) {
	_, err := selection("Variant gardner")
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}
