package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/external"
	"github.com/casstools/casstools/lib/logging"
	"github.com/casstools/casstools/lib/opserr"
	"github.com/casstools/casstools/lib/widerow"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fileReport struct {
	File     string        `json:"file"`
	WideRows []widerow.Row `json:"wide_rows"`
}

func main() {

	var (
		threshold    = flag.Int64("t", widerow.DefaultThreshold, "rows serialized beyond this many bytes are flagged")
		sstable2json = flag.String("s", "sstable2json", "sstable2json path, used for *-Data.db inputs")
		asJSON       = flag.Bool("json", false, "print a JSON report instead of plain lines")
		verbose      = flag.Bool("v", false, "verbose output")
		debug        = flag.Bool("d", false, "debugging output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] FILE...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	err := logging.Configure(&logging.Settings{
		Level:  logging.LevelFromFlags(*verbose, *debug),
		Format: logh.CONSOLE,
		Tag:    "poison-pill-tester",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error configuring logging:", err)
		os.Exit(1)
	}

	logger := logh.CreateContextualLogger("pkg", "main")
	runner := external.NewRunner()

	succeeded := 0
	var reports []fileReport

	for _, file := range files {

		data, err := load(file, *sstable2json, runner)
		if err != nil {
			if logh.ErrorEnabled {
				logger.Error().Err(err).Msgf("skipping %s", file)
			}
			continue
		}

		rows, gerr := widerow.Scan(data, *threshold)
		if gerr != nil {
			opserr.Log(gerr)
			continue
		}

		succeeded++
		reports = append(reports, fileReport{File: file, WideRows: rows})

		if !*asJSON {
			for _, row := range rows {
				fmt.Printf("%s: wide row key=%q size=%d columns=%d\n", file, row.Key, row.Size, row.Columns)
			}
		}
	}

	if *asJSON {
		out, err := json.MarshalIndent(reports, "", "  ")
		if err == nil {
			fmt.Println(string(out))
		}
	}

	if succeeded == 0 {
		os.Exit(1)
	}
}

// load - reads an sstable2json dump, shelling out for raw sstables
func load(file, sstable2json string, runner *external.Runner) ([]byte, error) {

	if strings.HasSuffix(file, ".json") {
		return ioutil.ReadFile(file)
	}

	return runner.Output(sstable2json, file)
}
