// Package main provides the mlpviz CLI.
//
// mlpviz trains a small two-layer network on points inside and outside the
// unit circle and writes an animated GIF of its hidden space, decision
// boundary and input-weight gradients.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gonum.org/v1/plot/vg"

	"github.com/born-ml/mlpviz/internal/config"
	"github.com/born-ml/mlpviz/internal/dataset"
	"github.com/born-ml/mlpviz/internal/render"
	"github.com/born-ml/mlpviz/internal/trainer"
	"github.com/born-ml/mlpviz/nn"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("mlpviz %s\n", version)
		return
	}

	cfgPath := flag.String("config", "", "Path to YAML config (defaults are used when empty)")
	activation := flag.String("activation", "", "Hidden activation: tanh, relu or sigmoid")
	lr := flag.Float64("lr", 0, "Learning rate")
	steps := flag.Int("steps", 0, "Total training steps (multiple of steps per frame)")
	hidden := flag.Int("hidden", 0, "Hidden units")
	samples := flag.Int("samples", 0, "Number of training samples")
	dataSeed := flag.Uint64("data-seed", 0, "Dataset seed")
	modelSeed := flag.Uint64("model-seed", 0, "Weight initialization seed")
	fps := flag.Int("fps", 0, "Animation frames per second")
	outDir := flag.String("out-dir", "", "Output directory")
	outFile := flag.String("out", "", "Output file name")
	dump := flag.String("dump", "", "Also write raw frame matrices to this SafeTensors file in the output directory")
	logEvery := flag.Int("log-every", 0, "Log every N frames")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	overrides := config.Overrides{
		Activation: *activation,
		LR:         *lr,
		Steps:      *steps,
		HiddenDim:  *hidden,
		Samples:    *samples,
		FPS:        *fps,
		OutputDir:  *outDir,
		OutputFile: *outFile,
		DumpFile:   *dump,
		LogEvery:   *logEvery,
	}
	// Zero is a valid seed, so only flags given on the command line apply.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-seed":
			overrides.DataSeed = dataSeed
		case "model-seed":
			overrides.ModelSeed = modelSeed
		}
	})
	cfg.ApplyOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		log.Fatalf("visualization failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	act, err := cfg.ActivationKind()
	if err != nil {
		return err
	}

	data, err := dataset.Circle(cfg.Samples, cfg.DataSeed)
	if err != nil {
		return err
	}
	log.Printf("dataset samples=%d positive=%.2f seed=%d", data.Len(), data.Balance(), cfg.DataSeed)

	model, err := nn.NewMLP(nn.Config{
		InputDim:   2,
		HiddenDim:  cfg.HiddenDim,
		OutputDim:  1,
		LR:         cfg.LR,
		Activation: act,
		Seed:       cfg.ModelSeed,
	})
	if err != nil {
		return err
	}

	out, err := render.NewGIF(cfg.OutputPath(), render.Options{
		Width:  vg.Length(cfg.WidthInches) * vg.Inch,
		Height: vg.Length(cfg.HeightInches) * vg.Inch,
		FPS:    cfg.FPS,
	})
	if err != nil {
		return err
	}
	// No-op once Close has written the file.
	defer out.Discard()

	renderers := render.Tee{out}
	var dump *render.Dump
	if path := cfg.DumpPath(); path != "" {
		dump = render.NewDump(path)
		renderers = append(renderers, dump)
	}

	summary, err := trainer.Run(ctx, trainer.RunConfig{
		Steps:         cfg.Steps,
		StepsPerFrame: cfg.StepsPerFrame,
		GridSize:      cfg.GridSize,
		GridPad:       cfg.GridPad,
		LogEvery:      cfg.LogEvery,
	}, model, data, renderers)
	if err != nil {
		return err
	}

	if dump != nil {
		if err := dump.Close(); err != nil {
			return err
		}
		log.Printf("wrote %s frames=%d", dump.Path(), dump.Frames())
	}

	if err := out.Close(); err != nil {
		return err
	}
	log.Printf("wrote %s frames=%d activation=%s loss=%.4f->%.4f acc=%.3f",
		out.Path(), summary.Frames, act, summary.InitialLoss, summary.FinalLoss, summary.FinalAccuracy)
	return nil
}
