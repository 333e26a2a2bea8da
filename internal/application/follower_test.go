package application_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/log4j_xml_reader_service/internal/application"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, records <-chan entity.LogRecord) entity.LogRecord {
	t.Helper()
	select {
	case record := <-records:
		return record
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for a followed record")
		return entity.LogRecord{}
	}
}

func TestFollower_StreamsAppendedEvents(t *testing.T) {
	path := writeLog(t, "live.xml", xmlEvent("ERROR", "main", "a", 1000, "existing"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records := make(chan entity.LogRecord, 4)
	done := make(chan error, 1)
	follower := application.NewFollower(application.NewExtractor(nil), true, true)
	go func() {
		done <- follower.Follow(ctx, path, &entity.FilterParams{Level: entity.LevelError}, records)
	}()

	first := receive(t, records)
	assert.Equal(t, "existing", first.Message)
	assert.Equal(t, 1, first.Sequence)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(xmlEvent("INFO", "main", "a", 2000, "skipped") + xmlEvent("ERROR", "main", "a", 3500, "appended"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	second := receive(t, records)
	assert.Equal(t, "appended", second.Message)
	assert.Equal(t, 2, second.Sequence)
	require.NotNil(t, second.DeltaSeconds)
	assert.InDelta(t, 1.5, *second.DeltaSeconds, 1e-9)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(10 * time.Second):
		t.Fatal("follower did not stop")
	}
}

func TestFollower_RejectsNilParams(t *testing.T) {
	follower := application.NewFollower(application.NewExtractor(nil), true, true)
	err := follower.Follow(context.Background(), writeLog(t, "live.xml"), nil, make(chan entity.LogRecord))
	assert.Error(t, err)
}
