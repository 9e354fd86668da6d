package debug

import (
	"bytes"
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStreamHandler(t *testing.T) {
	for _, output := range []string{"", "stderr", "stdout", "split"} {
		for _, format := range []string{"", "term", "json"} {
			h, err := CreateStreamHandler(format, output)
			require.NoError(t, err, "%s/%s", format, output)
			assert.NotNil(t, h)
		}
	}
	_, err := CreateStreamHandler("xml", "")
	assert.Error(t, err)
	_, err = CreateStreamHandler("", "file")
	assert.Error(t, err)
}

func TestSplitHandler(t *testing.T) {
	var stdout, stderr bytes.Buffer
	h := StdoutStderrHandler{
		stdoutHandler: log.NewTerminalHandler(&stdout, false),
		stderrHandler: log.NewTerminalHandler(&stderr, false),
	}
	logger := log.NewLogger(h).With("obj", "test")
	logger.Info("to stdout")
	logger.Warn("to stderr")

	assert.Contains(t, stdout.String(), "to stdout")
	assert.NotContains(t, stdout.String(), "to stderr")
	assert.Contains(t, stderr.String(), "to stderr")
	assert.Contains(t, stderr.String(), "obj=test")
	assert.True(t, h.Enabled(context.Background(), log.LevelError))
}
