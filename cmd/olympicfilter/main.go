package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"olympicfilter/internal/log"
	"olympicfilter/pkg/config"
	"olympicfilter/pkg/filter"
	"olympicfilter/pkg/raster"
)

func main() {
	// Parse command line arguments
	inputFile := flag.String("input", "", "Input raster file (ESRI ASCII grid)")
	outputFile := flag.String("output", "output.asc", "Output raster file")
	filterSize := flag.Int("filter", 0, "Size of the filter kernel (default is 11)")
	filterX := flag.Int("filterx", 0, "Filter kernel size in the x-direction (overrides -filter)")
	filterY := flag.Int("filtery", 0, "Filter kernel size in the y-direction (overrides -filter)")
	workers := flag.Int("workers", 0, "Number of parallel workers (default: all available CPU cores)")
	configPath := flag.String("config", "olympicfilter.yaml", "Path to YAML configuration file")
	verbose := flag.Bool("verbose", true, "Report progress during the run")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Validate inputs
	if *inputFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration file, then let explicit flags override it
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *filterSize > 0 {
		cfg.Filter.WidthX = *filterSize
		cfg.Filter.WidthY = *filterSize
	}
	if *filterX > 0 {
		cfg.Filter.WidthX = *filterX
	}
	if *filterY > 0 {
		cfg.Filter.WidthY = *filterY
	}
	if *workers > 0 {
		cfg.Processing.Workers = *workers
	}

	log.Infof("Reading input raster from %s", *inputFile)
	input, err := raster.ReadASCIIGrid(*inputFile)
	if err != nil {
		log.Fatalf("Failed to read input raster: %v", err)
	}
	log.Infof("Loaded %dx%d grid (nodata %g)", input.Rows, input.Cols, input.Nodata)

	fcfg := filter.Config{
		WidthX:  cfg.Filter.WidthX,
		WidthY:  cfg.Filter.WidthY,
		Workers: cfg.Processing.Workers,
	}
	if *verbose && cfg.Output.Verbose {
		fcfg.Progress = func(pct int) {
			log.Infof("Progress: %d%%", pct)
		}
	}

	start := time.Now()
	output, err := filter.Apply(input, fcfg)
	if err != nil {
		log.Fatalf("Filter run failed: %v", err)
	}
	elapsed := time.Since(start)

	// Normalize again locally so the metadata records the widths actually used
	fcfg.Normalize()
	output.AddMetadata("Created by the olympicfilter tool")
	output.AddMetadata(fmt.Sprintf("Input file: %s", *inputFile))
	output.AddMetadata(fmt.Sprintf("Filter size x: %d", fcfg.WidthX))
	output.AddMetadata(fmt.Sprintf("Filter size y: %d", fcfg.WidthY))
	output.AddMetadata(fmt.Sprintf("Elapsed Time (excluding I/O): %s", elapsed))

	log.Infof("Saving output raster to %s", *outputFile)
	if err := output.WriteASCIIGrid(*outputFile); err != nil {
		log.Fatalf("Failed to write output raster: %v", err)
	}

	n, mean, stddev := output.Summary()
	log.Infof("Output: %d valid cells, mean %.4f, stddev %.4f", n, mean, stddev)
	log.Infof("Elapsed Time (excluding I/O): %s", elapsed)
}
