package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kinduce/kinduce"
	"github.com/kinduce/kinduce/formatter"
	"github.com/kinduce/kinduce/internal/script"
	"github.com/kinduce/kinduce/internal/solver"
)

var (
	maxDepth         int
	solverCommand    string
	verifyJsonOutput bool
	outPath          string
	plainOutput      bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [script.json...]",
	Short: "Run the verification on the given system scripts",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide script file paths")
			os.Exit(1)
		}

		opts, err := buildOptions(cmd)
		if err != nil {
			logger.Fatal("Failed to configure the verification run", zap.Error(err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		runVerifyProcess(ctx, logger, args, opts, verifyJsonOutput, outPath)
	},
}

func init() {
	verifyCmd.Flags().IntVar(&maxDepth, "depth", 0, "Maximum unrolling depth (0 for the default)")
	verifyCmd.Flags().StringVar(&solverCommand, "solver", "", "External SMT-LIB solver command line, e.g. 'z3 -in'")
	verifyCmd.Flags().BoolVar(&verifyJsonOutput, "json", false, "Output verdicts in JSON format")
	verifyCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	verifyCmd.Flags().BoolVar(&plainOutput, "plain", false, "Disable colored output")
}

// buildOptions merges the configuration file and the command line,
// flags taking precedence.
func buildOptions(cmd *cobra.Command) (kinduce.Options, error) {
	opts := kinduce.Options{Logger: logger}

	if cfgFile != "" {
		config, err := kinduce.LoadConfig(cfgFile)
		if err != nil {
			return opts, fmt.Errorf("loading configuration `%s`: %w", cfgFile, err)
		}
		opts.MaxDepth = config.MaxDepth
		opts.Solver = config.Factory()
		if config.Timeout > 0 && !cmd.InheritedFlags().Changed("timeout") {
			timeout = time.Duration(config.Timeout)
		}
	}

	if maxDepth > 0 {
		opts.MaxDepth = maxDepth
	}
	if solverCommand != "" {
		parts := strings.Fields(solverCommand)
		opts.Solver = solver.SMTLibFactory(parts[0], parts[1:]...)
	}
	return opts, nil
}

func runVerifyProcess(ctx context.Context, logger *zap.Logger, paths []string, opts kinduce.Options, isJson bool, jsonOutput string) {
	failed := false
	byFile := make(map[string][]kinduce.Result, len(paths))

	for _, path := range paths {
		results, err := verifyScript(ctx, path, opts)
		if err != nil {
			logger.Error("Error verifying script", zap.String("path", path), zap.Error(err))
			os.Exit(1)
		}
		byFile[path] = results
		for _, res := range results {
			if res.Status != kinduce.StatusProved {
				failed = true
			}
		}
	}

	printResults(logger, paths, byFile, isJson, jsonOutput)

	if failed {
		os.Exit(1)
	}
}

func verifyScript(ctx context.Context, path string, opts kinduce.Options) ([]kinduce.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := script.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decoding `%s`: %w", path, err)
	}
	sys, diags, err := script.Build(s)
	if err != nil {
		return nil, fmt.Errorf("building `%s`: %w", path, err)
	}
	for _, d := range diags {
		logger.Warn("Script diagnostic", zap.String("path", path), zap.String("message", d.Message))
	}
	return kinduce.VerifyAll(ctx, sys, opts)
}

func printResults(logger *zap.Logger, paths []string, byFile map[string][]kinduce.Result, isJson bool, jsonOutput string) {
	if !isJson {
		// text output
		f := formatter.New()
		if plainOutput {
			f = formatter.NewPlain()
		}
		for _, path := range paths {
			fmt.Printf("%s:\n%s\n", path, f.Format(byFile[path]))
		}
		return
	}

	// JSON output
	view := make(map[string][]jsonResult, len(byFile))
	for path, results := range byFile {
		for _, res := range results {
			view[path] = append(view[path], newJsonResult(res))
		}
	}
	d, err := json.Marshal(view)
	if err != nil {
		logger.Error("Error marshalling verdicts to JSON", zap.Error(err))
		return
	}
	if jsonOutput == "" {
		fmt.Println(string(d))
		return
	}
	f, err := os.Create(jsonOutput)
	if err != nil {
		logger.Error("Error creating JSON output file", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := f.Write(d); err != nil {
		logger.Error("Error writing JSON output file", zap.Error(err))
	}
}

// jsonResult is the wire form of a verdict; trace values are rendered
// as strings so numerals of any size survive unchanged.
type jsonResult struct {
	Property string              `json:"property"`
	Status   string              `json:"status"`
	Depth    int                 `json:"depth"`
	Reason   string              `json:"reason,omitempty"`
	Trace    []map[string]string `json:"trace,omitempty"`
}

func newJsonResult(res kinduce.Result) jsonResult {
	out := jsonResult{
		Property: res.Property,
		Status:   res.Status.String(),
		Depth:    res.Depth,
		Reason:   res.Reason,
	}
	if res.Trace != nil {
		for _, step := range res.Trace.Steps {
			vals := make(map[string]string, len(step))
			for name, val := range step {
				vals[name] = val.String()
			}
			out.Trace = append(out.Trace, vals)
		}
	}
	return out
}
