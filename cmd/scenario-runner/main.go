// Command scenario-runner replays scripted aquarium days and reports which
// ones ended the way they were expected to.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
	"github.com/MRamiBalles/aquarium-sim/internal/scenario"
)

func main() {
	file := flag.String("file", "", "JSON file with extra scenarios")
	verbose := flag.Bool("v", false, "log engine activity")
	builtin := flag.Bool("builtin", true, "run the built-in scenarios")
	flag.Parse()

	fmt.Println("🐠 AQUARIUM SCENARIO SUITE")
	fmt.Println(strings.Repeat("=", 48))

	log := logger.Discard()
	if *verbose {
		log = logger.NewLogger()
		log.SetDebug(true)
	}

	var scenarios []scenario.Scenario
	if *builtin {
		scenarios = append(scenarios, scenario.Builtin()...)
	}
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open %s: %v\n", *file, err)
			os.Exit(2)
		}
		extra, err := scenario.Decode(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *file, err)
			os.Exit(2)
		}
		scenarios = append(scenarios, extra...)
	}

	runner := scenario.NewRunner(log)
	results := runner.Run(context.Background(), scenarios)

	passed, failed := 0, 0
	for _, r := range results {
		if r.Passed {
			passed++
			fmt.Printf("   ✅ %s\n", r.ScenarioName)
			continue
		}
		failed++
		fmt.Printf("   ❌ %s (step %d): %s\n", r.ScenarioName, r.FailedStep, r.Reason)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("📊 SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("   Passed: %d\n", passed)
	fmt.Printf("   Failed: %d\n", failed)

	if failed > 0 {
		os.Exit(1)
	}
}
