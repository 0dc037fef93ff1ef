package logging

import (
	"bufio"
	"fmt"
	"log/syslog"
	"os"

	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/constants"
)

//
// Global logger configuration shared by all tools.
//

// Settings - where and how the tools log
type Settings struct {
	Level  logh.Level
	Format logh.Format
	File   string
	Syslog string
	Tag    string
}

var facilities = map[string]syslog.Priority{
	"user":   syslog.LOG_USER,
	"daemon": syslog.LOG_DAEMON,
	"syslog": syslog.LOG_SYSLOG,
	"cron":   syslog.LOG_CRON,
	"local0": syslog.LOG_LOCAL0,
	"local1": syslog.LOG_LOCAL1,
	"local2": syslog.LOG_LOCAL2,
	"local3": syslog.LOG_LOCAL3,
	"local4": syslog.LOG_LOCAL4,
	"local5": syslog.LOG_LOCAL5,
	"local6": syslog.LOG_LOCAL6,
	"local7": syslog.LOG_LOCAL7,
}

// LevelFromFlags - maps the -v/-d flags to a log level
func LevelFromFlags(verbose, debug bool) logh.Level {

	if debug {
		return logh.DEBUG
	}

	if verbose {
		return logh.INFO
	}

	return logh.WARN
}

// Configure - configures the global logger. logh binds os.Stdout when it is
// configured, so the file and syslog targets must be installed before that.
func Configure(settings *Settings) error {

	if settings.File != constants.StringsEmpty {

		f, err := os.OpenFile(settings.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}

		os.Stdout = f

	} else if settings.Syslog != constants.StringsEmpty {

		facility, ok := facilities[settings.Syslog]
		if !ok {
			return fmt.Errorf("unknown syslog facility: %s", settings.Syslog)
		}

		w, err := syslog.New(facility|syslog.LOG_INFO, settings.Tag)
		if err != nil {
			return err
		}

		r, pw, err := os.Pipe()
		if err != nil {
			return err
		}

		os.Stdout = pw

		go forwardLines(r, w)
	}

	logh.ConfigureGlobalLogger(settings.Level, settings.Format)

	return nil
}

// forwardLines - forwards each logged line to the syslog daemon
func forwardLines(r *os.File, w *syslog.Writer) {

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		w.Info(scanner.Text())
	}
}
