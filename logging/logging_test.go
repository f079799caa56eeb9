package logging_test

import (
	"testing"

	"github.com/enciclo/control/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		production bool
		verbose    bool
		want       zapcore.Level
	}{
		{"production suppresses info", true, false, zapcore.WarnLevel},
		{"production verbose", true, true, zapcore.DebugLevel},
		{"development", false, false, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger, err := logging.New(tt.production, tt.verbose)
			require.NoError(t, err)
			assert.Equal(t, tt.want, logging.Level(logger))
		})
	}
}

func TestLevel_Nop(t *testing.T) {
	t.Parallel()
	assert.Equal(t, zapcore.FatalLevel, logging.Level(zap.NewNop()))
}
