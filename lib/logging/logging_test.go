package logging

import (
	"io/ioutil"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uol/logh"
)

// the global logger binds os.Stdout when configured, so every test restores
// both afterwards
func restoreStdout(t *testing.T) func() {

	saved := os.Stdout

	return func() {
		os.Stdout = saved
		logh.ConfigureGlobalLogger(logh.SILENT, logh.CONSOLE)
	}
}

func TestLevelFromFlags(t *testing.T) {

	assert.Equal(t, logh.WARN, LevelFromFlags(false, false))
	assert.Equal(t, logh.INFO, LevelFromFlags(true, false))
	assert.Equal(t, logh.DEBUG, LevelFromFlags(false, true))
	assert.Equal(t, logh.DEBUG, LevelFromFlags(true, true))
}

func TestConfigureFileTarget(t *testing.T) {

	defer restoreStdout(t)()

	dir, err := ioutil.TempDir("", "logging")
	assert.NoError(t, err)
	defer os.RemoveAll(dir)

	logfile := path.Join(dir, "tool.log")

	err = Configure(&Settings{
		Level:  logh.INFO,
		Format: logh.JSON,
		File:   logfile,
		Tag:    "test",
	})
	assert.NoError(t, err)

	logger := logh.CreateContextualLogger("pkg", "logging")
	assert.True(t, logh.InfoEnabled)
	logger.Info().Msg("landed in the file")

	content, err := ioutil.ReadFile(logfile)
	assert.NoError(t, err)
	assert.Contains(t, string(content), "landed in the file")
	assert.Contains(t, string(content), `"pkg":"logging"`)
}

func TestConfigureFileTargetAppends(t *testing.T) {

	defer restoreStdout(t)()

	dir, err := ioutil.TempDir("", "logging")
	assert.NoError(t, err)
	defer os.RemoveAll(dir)

	logfile := path.Join(dir, "tool.log")
	assert.NoError(t, ioutil.WriteFile(logfile, []byte("earlier run\n"), 0644))

	err = Configure(&Settings{
		Level:  logh.WARN,
		Format: logh.JSON,
		File:   logfile,
		Tag:    "test",
	})
	assert.NoError(t, err)

	logh.CreateContextualLogger("pkg", "logging").Warn().Msg("second run")

	content, err := ioutil.ReadFile(logfile)
	assert.NoError(t, err)
	assert.Contains(t, string(content), "earlier run")
	assert.Contains(t, string(content), "second run")
}

func TestConfigureUnknownSyslogFacility(t *testing.T) {

	defer restoreStdout(t)()

	err := Configure(&Settings{
		Level:  logh.WARN,
		Format: logh.JSON,
		Syslog: "nope",
		Tag:    "test",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown syslog facility")
}
