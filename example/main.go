package main

import (
	"flag"
	"fmt"

	"github.com/ldsec/approxnn/common"
	"go.dedis.ch/onet/v3/log"
)

// Runs the floating point reference network over a batch and prints its accuracy.
// Run from the module root so the default config resolves.
func main() {
	cfgPath := flag.String("config", "simul/eval.toml", "Path to TOML settings with a [reference] section")
	start := flag.Int("start", 0, "First sample of the batch, overrides the config when given")
	count := flag.Int("count", 0, "Number of samples")
	flag.Parse()

	var batchStart *int
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "start" {
			batchStart = start
		}
	})

	settings, err := common.LoadSettings(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	settings.ApplyOverrides(common.Overrides{BatchStart: batchStart, BatchCount: *count})
	if err := settings.ValidateReference(); err != nil {
		log.Fatal("invalid settings:", err)
	}
	log.SetDebugVisible(settings.Debug)

	net, err := common.LoadReferenceNetwork(settings)
	if err != nil {
		log.Fatal(err)
	}
	inputs, err := common.LoadReferenceInputs(settings)
	if err != nil {
		log.Fatal(err)
	}
	allLabels, err := common.LoadLabelFile(settings.Reference.LabelsPath)
	if err != nil {
		log.Fatal(err)
	}
	labels, err := common.BatchLabels(allLabels, settings.BatchStart, settings.BatchCount)
	if err != nil {
		log.Fatal(err)
	}

	_, accuracy, err := net.Evaluate(inputs, labels)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Accuracy:", accuracy/100)
}
