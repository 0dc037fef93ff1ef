package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/logging"
	"github.com/casstools/casstools/lib/mx4j"
	"github.com/casstools/casstools/lib/opserr"
	"github.com/casstools/casstools/lib/repairs"
)

func main() {

	var (
		port    = flag.Int("p", 8081, "MX4J port on the target nodes")
		timeout = flag.Duration("t", 10*time.Second, "per node HTTP timeout")
		dryRun  = flag.Bool("n", false, "report what would be terminated without doing it")
		verbose = flag.Bool("v", false, "verbose output")
		debug   = flag.Bool("d", false, "debugging output")
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
		Level:  logging.LevelFromFlags(*verbose || *dryRun, *debug),
		Format: logh.CONSOLE,
		Tag:    "stop-cassandra-repairs",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error configuring logging:", err)
		os.Exit(1)
	}

	clients := make([]repairs.Bridge, len(nodes))
	for i, node := range nodes {
		clients[i] = mx4j.New(node, *port, *timeout)
	}

	handled, gerr := repairs.New(*dryRun, clients...).Run()
	if gerr != nil {
		opserr.Log(gerr)
		os.Exit(1)
	}

	if logh.InfoEnabled {
		logh.Info().Msgf("%d of %d nodes handled", handled, len(nodes))
	}
}
