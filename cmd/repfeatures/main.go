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
		dataDir    = flag.String("data", "", "Directory of conditioned <subject>/<set> trials")
		outPath    = flag.String("out", "features.parquet", "Output feature table path")
		configPath = flag.String("config", "", "TOML run configuration")
		format     = flag.String("format", "parquet", "Output format: parquet|csv")
		charts     = flag.Bool("charts", false, "Write per-trial segmentation HTML charts")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --data conditioned/ --out features.parquet [--config run.toml] [--format parquet|csv]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*dataDir) == "" || strings.TrimSpace(*outPath) == "" {
		flag.Usage()
		os.Exit(2)
	}

	result, err := pipeline.Run(pipeline.Options{
		DataDir:    *dataDir,
		OutPath:    *outPath,
		ConfigPath: *configPath,
		Format:     *format,
		Charts:     *charts,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "repfeatures failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("repfeatures complete\n")
	fmt.Printf("output:           %s\n", result.OutputPath)
	fmt.Printf("feature rows:     %d\n", result.Rows)
	fmt.Printf("columns:          %d\n", result.Columns)
	fmt.Printf("trials used:      %d\n", result.Trials)
	fmt.Printf("trials skipped:   %d\n", result.Skipped)
}
