package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cohera/internal/util"
	"cohera/pkg/logger"
	"cohera/pkg/logger/console"
	"cohera/pkg/store/memory"
)

func main() {
	var (
		file      = flag.String("file", "", "read the paragraph from a file")
		text      = flag.String("text", "", "evaluate the given paragraph")
		visualize = flag.Bool("visualize", false, "compute 2D node positions for the graph")
		saveGraph = flag.String("save-graph", "", "write the semantic graph as JSON to this path")
	)
	flag.Parse()

	util.LoadEnv()
	logger.Init(console.New(console.Params{
		Debug: util.GetEnvBool("DEBUG", false),
	}))

	input := *text
	if *file != "" {
		raw, err := os.ReadFile(*file)
		if err != nil {
			logger.Fatal("Failed to read input file", "file", *file, "err", err)
		}
		input = string(raw)
	}
	if input == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := util.NewPipelineFromEnv(memory.New())
	if err != nil {
		logger.Fatal("Failed to build evaluation pipeline", "err", err)
	}

	visual := *visualize || *saveGraph != ""
	result, err := pipeline.EvaluateText(ctx, input, visual)
	if err != nil {
		logger.Fatal("Evaluation failed", "err", err)
	}

	fmt.Printf("Coherence score:   %.4f\n", result.CoherenceScore)
	fmt.Printf("Coherence percent: %d%%\n", result.CoherencePercent)

	if len(result.DisruptionReport) == 0 {
		fmt.Println("No disruptions detected.")
	} else {
		fmt.Printf("Disruptions (%d):\n", len(result.DisruptionReport))
		for _, item := range result.DisruptionReport {
			fmt.Printf("  %d -> %d  %-22s  local coherence %.4f\n",
				item.FromIdx, item.ToIdx, item.Reason, item.Score)
		}
	}

	if *saveGraph != "" {
		raw, err := json.MarshalIndent(result.Graph, "", "  ")
		if err != nil {
			logger.Fatal("Failed to encode graph", "err", err)
		}
		if err := os.WriteFile(*saveGraph, raw, 0o644); err != nil {
			logger.Fatal("Failed to write graph file", "file", *saveGraph, "err", err)
		}
		logger.Info("Graph written", "file", *saveGraph, "nodes", len(result.Graph.Nodes), "edges", len(result.Graph.Edges))
	}
}
