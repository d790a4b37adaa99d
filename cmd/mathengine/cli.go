package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/mathengine/internal/dropout"
	"github.com/born-ml/mathengine/internal/engine"
	"github.com/born-ml/mathengine/internal/envconfig"
	"github.com/born-ml/mathengine/internal/random"
	"github.com/born-ml/mathengine/internal/sweep"
	"github.com/born-ml/mathengine/internal/tensor"
)

const version = "v0.1.0"

// errVerifyFailed reports that at least one operation exceeded its tolerance.
var errVerifyFailed = errors.New("verification failed")

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mathengine",
		Short:         "Numerical kernels with interchangeable backends",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mathengine %s\n", version)
		},
	}

	backendsCmd := &cobra.Command{
		Use:   "backends",
		Short: "List registered backends",
		Args:  cobra.NoArgs,
		RunE:  BackendsHandler,
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Sweep the operation catalogue against a reference backend",
		Args:  cobra.NoArgs,
		RunE:  VerifyHandler,
	}
	verifyCmd.Flags().String("backend", "", "Backend to verify (default $BORN_BACKEND)")
	verifyCmd.Flags().String("against", "reference", "Backend to compare with")
	verifyCmd.Flags().StringSlice("op", nil, "Operations to sweep (default all)")
	verifyCmd.Flags().String("params", "", `Parameter overrides, e.g. "Height = (1..8); TestCount = 3;"`)
	verifyCmd.Flags().Int("count", 0, "Trials per regime (default TestCount)")
	verifyCmd.Flags().Uint64("seed", 1, "Trial generator seed")
	verifyCmd.Flags().Bool("large", false, "Include the large-shape regimes")

	dropoutCmd := &cobra.Command{
		Use:   "dropout",
		Short: "Show the dropout decisions for a row of ones",
		Args:  cobra.NoArgs,
		RunE:  DropoutHandler,
	}
	dropoutCmd.Flags().String("backend", "", "Backend to run on (default $BORN_BACKEND)")
	dropoutCmd.Flags().Int("seed", random.DefaultSeed, "Generator seed")
	dropoutCmd.Flags().Float32("rate", 0.5, "Dropout rate in [0, 1)")
	dropoutCmd.Flags().Int("width", 16, "Number of values")

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "List configuration environment variables",
		Args:  cobra.NoArgs,
		RunE:  EnvHandler,
	}

	rootCmd.AddCommand(versionCmd, backendsCmd, verifyCmd, dropoutCmd, envCmd)
	return rootCmd
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

// backendFlag returns the --backend flag, falling back to BORN_BACKEND.
func backendFlag(cmd *cobra.Command) string {
	if name, _ := cmd.Flags().GetString("backend"); name != "" {
		return name
	}
	return envconfig.Backend()
}

// BackendsHandler lists the registered backends and whether each can be opened.
func BackendsHandler(cmd *cobra.Command, _ []string) error {
	cfg := engine.ConfigFromEnv()

	var data [][]string
	for _, name := range engine.Names() {
		b, err := engine.NewBackend(name, cfg)
		if err != nil {
			data = append(data, []string{name, "-", "-", err.Error()})
			continue
		}
		data = append(data, []string{name, b.Name(), b.Device().String(), "available"})
		engine.Release(b)
	}

	table := newTable(cmd.OutOrStdout(), []string{"NAME", "BACKEND", "DEVICE", "STATUS"})
	table.AppendBulk(data)
	table.Render()
	return nil
}

// VerifyHandler sweeps the selected operations and prints one row per regime.
func VerifyHandler(cmd *cobra.Command, _ []string) error {
	cfg := engine.ConfigFromEnv()

	got, err := engine.NewBackend(backendFlag(cmd), cfg)
	if err != nil {
		return err
	}
	defer engine.Release(got)
	against, _ := cmd.Flags().GetString("against")
	want, err := engine.NewBackend(against, cfg)
	if err != nil {
		return err
	}
	defer engine.Release(want)

	opts := engine.VerifyOptions{Parallel: cfg.Parallel}
	opts.Ops, _ = cmd.Flags().GetStringSlice("op")
	opts.Params, _ = cmd.Flags().GetString("params")
	opts.Count, _ = cmd.Flags().GetInt("count")
	opts.Seed, _ = cmd.Flags().GetUint64("seed")
	opts.Large, _ = cmd.Flags().GetBool("large")

	results, err := engine.Verify(cmd.Context(), got, want, opts)
	if err != nil {
		return err
	}

	failed := 0
	data := make([][]string, 0, len(results))
	for _, res := range results {
		data = append(data, resultRow(res))
		if !res.OK() {
			failed++
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s against %s\n\n", got.Name(), want.Name())
	table := newTable(cmd.OutOrStdout(), []string{"OPERATION", "TRIALS", "FAILED", "MAX DIFF", "TOLERANCE", "STATUS"})
	table.AppendBulk(data)
	table.Render()

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d sweeps exceeded tolerance", errVerifyFailed, failed, len(results))
	}
	return nil
}

func resultRow(res sweep.Result) []string {
	status := "ok"
	switch {
	case res.Skipped:
		status = "declined by " + res.Declined
	case !res.OK():
		status = "FAIL"
	}
	return []string{
		res.Op,
		strconv.Itoa(res.Trials),
		strconv.Itoa(res.Failed),
		strconv.FormatFloat(res.MaxDiff, 'g', 3, 64),
		strconv.FormatFloat(res.Tolerance, 'g', 3, 64),
		status,
	}
}

// DropoutHandler applies dropout to a row of ones and prints the result.
func DropoutHandler(cmd *cobra.Command, _ []string) error {
	seed, _ := cmd.Flags().GetInt("seed")
	rate, _ := cmd.Flags().GetFloat32("rate")
	width, _ := cmd.Flags().GetInt("width")
	if width <= 0 {
		return fmt.Errorf("width must be positive, got %d", width)
	}

	cfg := engine.ConfigFromEnv()
	e, err := engine.Open(backendFlag(cmd), cfg)
	if err != nil {
		return err
	}
	defer e.Release()

	blob := tensor.NewBlobDesc()
	blob.Channels = width
	desc, err := dropout.NewDesc(rate, false, false, blob, seed)
	if err != nil {
		return err
	}

	input := make([]float32, width)
	for i := range input {
		input[i] = 1
	}
	output := make([]float32, width)
	if err := e.Dropout(desc, input, output); err != nil {
		return err
	}

	kept := 0
	values := make([]string, width)
	for i, v := range output {
		if v != 0 {
			kept++
		}
		values[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s on %s\n", desc, e.Name())
	fmt.Fprintln(out, strings.Join(values, " "))
	fmt.Fprintf(out, "kept %d of %d\n", kept, width)
	return nil
}

// EnvHandler lists the configuration variables and their current values.
func EnvHandler(cmd *cobra.Command, _ []string) error {
	vars := envconfig.AsMap()
	values := envconfig.Values()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	data := make([][]string, 0, len(names))
	for _, name := range names {
		data = append(data, []string{name, values[name], vars[name].Description})
	}

	table := newTable(cmd.OutOrStdout(), []string{"NAME", "VALUE", "DESCRIPTION"})
	table.AppendBulk(data)
	table.Render()
	return nil
}
