package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/calumari/nativize/internal/generator"
)

// deriveVersion inspects build info for module version or vcs revision.
// preference order: module semantic version -> short commit hash -> "devel".
func deriveVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "devel"
	}
	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	for _, s := range bi.Settings {
		if s.Key != "vcs.revision" || s.Value == "" {
			continue
		}
		if len(s.Value) >= 12 {
			return s.Value[:12]
		}
		return s.Value
	}
	return "devel"
}

func splitCSV(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	var (
		modelsCSV    string
		typesDir     string
		typesPackage string
		output       string
		configPath   string
		onlyCSV      string
		jobs         int
		debugOut     bool
		verbose      bool
	)
	flag.StringVar(&modelsCSV, "model", "", "Comma-separated list of object-model YAML files (required)")
	flag.StringVar(&typesDir, "types", "", "Go package directory declaring additional structs and enums")
	flag.StringVar(&typesPackage, "types-package", "/Game/Types", "Package path the -types declarations are registered under")
	flag.StringVar(&output, "output", ".", "Output directory for generated C++ files")
	flag.StringVar(&configPath, "config", "", "YAML file with batch options")
	flag.StringVar(&onlyCSV, "only", "", "Comma-separated list of converted types to emit")
	flag.IntVar(&jobs, "jobs", 0, "Parallel emission limit (0 uses every processor)")
	flag.BoolVar(&debugOut, "debug", false, "Label every generated section")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nNativizegen emits C++ construction code for converted classes and structs.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s -model=door.yaml,meshes.yaml -output=Generated\n", os.Args[0])
	}
	flag.Parse()

	models := splitCSV(modelsCSV)
	if len(models) == 0 {
		fmt.Fprintf(os.Stderr, "Error: -model is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var opts generator.Options
	if configPath != "" {
		var err error
		if opts, err = generator.LoadOptions(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "nativize: %v\n", err)
			os.Exit(1)
		}
	}
	if only := splitCSV(onlyCSV); len(only) > 0 {
		opts.Only = only
	}
	if jobs > 0 {
		opts.Jobs = jobs
	}

	// build a simplified canonical command representation instead of raw argv (which may include build cache paths)
	cmdParts := []string{"nativizegen", "-model=" + strings.Join(models, ","), "-output=" + output}
	if typesDir != "" {
		cmdParts = append(cmdParts, "-types="+typesDir, "-types-package="+typesPackage)
	}
	if configPath != "" {
		cmdParts = append(cmdParts, "-config="+configPath)
	}
	if len(opts.Only) > 0 {
		cmdParts = append(cmdParts, "-only="+strings.Join(opts.Only, ","))
	}
	if jobs > 0 {
		cmdParts = append(cmdParts, "-jobs="+strconv.Itoa(jobs))
	}
	if debugOut {
		cmdParts = append(cmdParts, "-debug")
	}

	cfg := generator.Config{
		Models:       models,
		TypesDir:     typesDir,
		TypesPackage: typesPackage,
		Output:       output,
		Debug:        debugOut,
		Command:      strings.Join(cmdParts, " "),
		Version:      deriveVersion(),
		Options:      opts,
		Log:          log,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := generator.Run(ctx, cfg); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "nativize: %v\n", err)
		os.Exit(1)
	}
}
