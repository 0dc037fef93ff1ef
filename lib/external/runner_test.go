package external

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputCapturesStdout(t *testing.T) {

	out, err := NewRunner().Output("echo", "hello")
	assert.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestOutputMissingBinary(t *testing.T) {

	_, err := NewRunner().Output("definitely-not-a-binary-9f2c")
	assert.Error(t, err)
}

func TestShellExitCode(t *testing.T) {

	runner := NewRunner()

	assert.NoError(t, runner.Shell("true"))
	assert.Error(t, runner.Shell("exit 3"))
}
