package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestGet_BeforeInitReportsErrors(t *testing.T) {
	saved := globalLogger
	globalLogger = nil
	t.Cleanup(func() { globalLogger = saved })

	core := Get(context.Background()).Desugar().Core()
	assert.True(t, core.Enabled(zapcore.ErrorLevel), "startup errors must not be discarded")
	assert.True(t, core.Enabled(zapcore.InfoLevel))
	assert.False(t, core.Enabled(zapcore.DebugLevel))
	assert.Same(t, Get(context.Background()), Get(context.Background()))
}
