package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/uol/funks"
	"github.com/uol/logh"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/casstools/casstools/lib/external"
	"github.com/casstools/casstools/lib/logging"
	"github.com/casstools/casstools/lib/opserr"
	"github.com/casstools/casstools/lib/scheduler"
)

const defaultTTL = 3600 * 24 * 20

func main() {

	hostname, _ := os.Hostname()

	var (
		verbose    = flag.Bool("v", false, "verbose output")
		debug      = flag.Bool("d", false, "debugging output")
		syslogFac  = flag.String("syslog", "", "send log messages to the syslog facility")
		logfile    = flag.String("logfile", "", "send log messages to a file")
		host       = flag.String("H", hostname, "hostname")
		port       = flag.Int("p", 9042, "CQL port")
		username   = flag.String("U", "", "username (if necessary)")
		password   = flag.String("P", "", "password (prompt if user provided but not password)")
		ttl        = flag.Int("t", defaultTTL, "TTL for the bookkeeping rows, in seconds")
		keyspace   = flag.String("k", "operations", "keyspace to use")
		cqlVersion = flag.String("cqlversion", "3.0.0", "CQL version")
		repairTool = flag.String("r", "/usr/local/bin/range_repair.py", "range repair tool path")
		local      = flag.Bool("local", false, "run the repairs in the local ring only")
		watch      = flag.Bool("watch", false, "watch the live repair status")
		reset      = flag.Bool("reset", false, "reset the repair status for the host")
		listen     = flag.String("listen", "", "serve the repair status as JSON on this address instead of repairing")
	)

	flag.Parse()

	format := logh.CONSOLE
	if *logfile != "" || *syslogFac != "" {
		format = logh.JSON
	}

	err := logging.Configure(&logging.Settings{
		Level:  logging.LevelFromFlags(*verbose, *debug),
		Format: format,
		File:   *logfile,
		Syslog: *syslogFac,
		Tag:    "cassandra-repair-scheduler",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error configuring logging:", err)
		os.Exit(1)
	}

	logger := logh.CreateContextualLogger("pkg", "main")

	if *username != "" && *password == "" {
		*password = promptPassword(*username)
	}

	backend, gerr := scheduler.NewCassandraBackend(&scheduler.Settings{
		Host:       *host,
		Port:       *port,
		Keyspace:   *keyspace,
		Username:   *username,
		Password:   *password,
		CQLVersion: *cqlVersion,
		Timeout:    funks.Duration{Duration: time.Minute},
	})
	if gerr != nil {
		if scheduler.IsSingleNodeCluster(gerr) {
			if logh.WarnEnabled {
				logger.Warn().Msg(gerr.Message())
			}
			os.Exit(0)
		}
		opserr.Log(gerr)
		os.Exit(1)
	}
	defer backend.Close()

	if *listen != "" {
		api := scheduler.NewStatusAPI(backend, *listen)
		api.Start()
		defer api.Stop()

		stopChannel := make(chan os.Signal, 1)
		signal.Notify(stopChannel, os.Interrupt, syscall.SIGTERM)
		<-stopChannel
		return
	}

	if *watch {
		if err := scheduler.NewWatch(backend).Run(); err != nil {
			fmt.Fprintln(os.Stderr, "error running the display:", err)
			os.Exit(1)
		}
		return
	}

	sched := scheduler.New(backend, external.NewRunner(), scheduler.Config{
		Node:            *host,
		TTL:             *ttl,
		RangeRepairTool: *repairTool,
		LocalOnly:       *local,
	})

	datacenter, gerr := backend.Datacenter()
	if gerr != nil {
		opserr.Log(gerr)
		os.Exit(1)
	}

	if *reset {
		if err := sched.Reset(datacenter); err != nil {
			if logh.ErrorEnabled {
				logger.Error().Err(err).Msg("error resetting the repair status")
			}
			os.Exit(1)
		}
		return
	}

	if err := sched.Run(); err != nil {
		if logh.ErrorEnabled {
			logger.Error().Err(err).Msg("repair run failed")
		}
		os.Exit(1)
	}
}

// promptPassword - asks for the password on the terminal, reading a plain
// line when stdin is redirected
func promptPassword(username string) string {

	fmt.Fprintf(os.Stderr, "Password for %s: ", username)

	if terminal.IsTerminal(int(syscall.Stdin)) {
		b, err := terminal.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return ""
		}
		return string(b)
	}

	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
