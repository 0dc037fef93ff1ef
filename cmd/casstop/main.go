package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/uol/gobol/loader"
	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/logging"
	"github.com/casstools/casstools/lib/monitor"
	"github.com/casstools/casstools/lib/mx4j"
)

func main() {

	var (
		port     = flag.Int("p", 8081, "MX4J port on the target nodes")
		interval = flag.Duration("i", 5*time.Second, "refresh interval")
		confPath = flag.String("c", "", "path to an optional TOML configuration file")
		batch    = flag.Bool("b", false, "print one table and exit")
		verbose  = flag.Bool("v", false, "verbose output")
		debug    = flag.Bool("d", false, "debugging output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] NODENAME...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	nodes := flag.Args()
	if len(nodes) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	err := logging.Configure(&logging.Settings{
		Level:  logging.LevelFromFlags(*verbose, *debug),
		Format: logh.CONSOLE,
		Tag:    "casstop",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error configuring logging:", err)
		os.Exit(1)
	}

	settings := monitor.DefaultSettings()

	if *confPath != "" {
		if err := loader.ConfToml(*confPath, settings); err != nil {
			fmt.Fprintln(os.Stderr, "error loading config file:", err)
			os.Exit(1)
		}
	}

	// flags given explicitly win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			settings.MX4JPort = *port
		case "i":
			settings.PollInterval.Duration = *interval
		}
	})

	clients := make([]monitor.Fetcher, len(nodes))
	for i, node := range nodes {
		clients[i] = mx4j.New(node, settings.MX4JPort, settings.HTTPTimeout.Duration)
	}

	m := monitor.New(clients...)

	if *batch {
		rows := m.Poll()
		fmt.Print(monitor.FormatRows(rows))
		if !monitor.Up(rows) {
			os.Exit(1)
		}
		return
	}

	screen := monitor.NewScreen(m, settings.PollInterval.Duration)
	if err := screen.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error running the display:", err)
		os.Exit(1)
	}
}
