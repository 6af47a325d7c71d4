// Command simul scores the output dumps of an approximate hardware
// simulation against the exact ones and the true labels.
//
//	simul -config simul/eval.toml [-golden 0] [version]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/ldsec/approxnn/common"
	"github.com/ldsec/approxnn/evaluation"
	"github.com/ldsec/unlynx/lib"
	"go.dedis.ch/onet/v3/log"
)

func main() {
	cfgPath := flag.String("config", "", "Path to TOML settings, defaults are used when empty")
	version := flag.String("version", "", "Version tag to test")
	golden := flag.String("golden", "", "Golden reference tag")
	rootDir := flag.String("root", "", "Directory holding the simulation dumps")
	labels := flag.String("labels", "", "Label file (idx1, optionally gzip)")
	start := flag.Int("start", 0, "First sample of the batch, overrides the config when given")
	count := flag.Int("count", 0, "Number of samples")
	workers := flag.Int("workers", 0, "Samples evaluated in parallel")
	debug := flag.Int("debug", 0, "Log level")
	report := flag.String("report", "", "Write the report as TOML to this file")
	plots := flag.String("plots", "", "Write per-layer error histograms to this directory")
	flag.Parse()

	settings := common.DefaultSettings()
	if *cfgPath != "" {
		var err error
		if settings, err = common.LoadSettings(*cfgPath); err != nil {
			log.Fatal(err)
		}
	}
	var batchStart *int
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "start" {
			batchStart = start
		}
	})
	if *version == "" && flag.NArg() > 0 {
		*version = flag.Arg(0)
	}
	settings.ApplyOverrides(common.Overrides{
		RootDir:    *rootDir,
		Version:    *version,
		Golden:     *golden,
		LabelsPath: *labels,
		BatchStart: batchStart,
		BatchCount: *count,
		Workers:    *workers,
		Debug:      *debug,
		ReportPath: *report,
		PlotDir:    *plots,
	})
	if err := settings.Validate(); err != nil {
		log.Fatal("invalid settings:", err)
	}
	log.SetDebugVisible(settings.Debug)
	if settings.Time {
		libunlynx.TIME = true
	}

	allLabels, err := common.LoadLabelFile(settings.LabelsPath)
	if err != nil {
		log.Fatal("labels:", err)
	}
	driver, err := evaluation.NewDriver(settings, common.NewFileSource(settings), allLabels)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runTime := libunlynx.StartTimer("Evaluation(" + settings.Version + ")")
	res, err := driver.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}
	libunlynx.EndTimer(runTime)

	fmt.Print(res)

	if settings.ReportPath != "" {
		if err := res.WriteTOML(settings.ReportPath); err != nil {
			log.Fatal(err)
		}
		log.Lvl1("report written to", settings.ReportPath)
	}
	if settings.PlotDir != "" {
		if err := os.MkdirAll(settings.PlotDir, 0o755); err != nil {
			log.Fatal(err)
		}
		if err := res.PlotHistograms(settings.PlotDir); err != nil {
			log.Fatal(err)
		}
	}
}
