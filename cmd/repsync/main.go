package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/rep-analyzer/pipeline"
)

func main() {
	var (
		dataDir    = flag.String("data", "", "Directory of <subject>/<set> trial recordings")
		outDir     = flag.String("out", "", "Output directory for conditioned tables (default: in place)")
		configPath = flag.String("config", "", "TOML run configuration")
		charts     = flag.Bool("charts", true, "Write per-trial diagnostic HTML charts")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --data recordings/ [--out conditioned/] [--config run.toml]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*dataDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	result, err := pipeline.Sync(pipeline.SyncOptions{
		DataDir:    *dataDir,
		OutDir:     *outDir,
		ConfigPath: *configPath,
		Charts:     *charts,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "repsync failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("repsync complete\n")
	fmt.Printf("trials aligned:   %d\n", len(result.Trials))
	fmt.Printf("trials skipped:   %d\n", result.Skipped)
	for _, t := range result.Trials {
		fmt.Printf("%s set %d: shift %+.3fs -> %s\n", t.Subject, t.SetID, t.ShiftS, t.OutDir)
	}
}
