package entity_test

import (
	"testing"

	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]entity.Level{
		"":       entity.LevelAny,
		"any":    entity.LevelAny,
		"error":  entity.LevelError,
		" Info ": entity.LevelInfo,
		"DEBUG":  entity.LevelDebug,
		"warn":   entity.LevelWarn,
		"Fatal":  entity.LevelFatal,
	}
	for input, want := range testCases {
		got, err := entity.ParseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := entity.ParseLevel("trace")
	assert.Error(t, err)
}

func TestLevelNames(t *testing.T) {
	assert.Equal(t, "", entity.LevelAny.Name())
	assert.Equal(t, "ERROR", entity.LevelError.Name())
	assert.Equal(t, "ANY", entity.LevelAny.String())
	assert.Equal(t, "Level(9)", entity.Level(9).String())
}
