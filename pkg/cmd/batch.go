package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"

	"fsbridge/pkg/bridge"
	"fsbridge/pkg/errors"
	"fsbridge/pkg/metrics"
	"fsbridge/pkg/parser"
	"fsbridge/pkg/report"
	"fsbridge/pkg/types"
)

func newBatchCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run the operations listed in FILE in order",
		Long: `Run the operations listed in FILE in order.

FILE is a YAML/JSON manifest (.yaml, .yml, .json):

  steps:
    - op: mkdirs
      path: /tmp/t
    - op: write
      path: /tmp/t/x.txt
      content: hello

or a line script with one "<op> <path> [content]" per line, where content
may use \n and \t escapes and lines starting with # are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failFast, _ := cmd.Flags().GetBool("fail-fast")
			reportPath, _ := cmd.Flags().GetString("report")
			metricsFile, _ := cmd.Flags().GetString("metrics-file")
			return runBatch(cmd.OutOrStdout(), s.bridge, args[0], failFast, reportPath, metricsFile)
		},
	}
	cmd.Flags().Bool("fail-fast", false, "Stop at the first failed step")
	cmd.Flags().String("report", "", "Write a per-step report (.csv or .json)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics for the run")
	return cmd
}

// runBatch parses the manifest, executes every step and writes the
// optional report and metrics through the same bridge
func runBatch(out io.Writer, b *bridge.Bridge, file string, failFast bool, reportPath, metricsFile string) error {
	data, err := b.ReadFile(file)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeRead, "failed to read manifest")
	}
	steps, err := parser.ParseManifest(file, data)
	if err != nil {
		return err
	}
	log.Info().Str("manifest", file).Int("steps", len(steps)).Msg("batch started")

	var (
		p   *mpb.Progress
		bar *mpb.Bar
	)
	if isTerminal(out) {
		p = mpb.New(mpb.WithOutput(out), mpb.WithWidth(60))
		bar = p.New(
			int64(len(steps)),
			mpb.BarStyle().Rbound("|"),
			mpb.PrependDecorators(
				decor.Name("batch ", decor.WC{W: 6}),
				decor.CountersNoUnit("%d/%d", decor.WC{W: 8}),
			),
			mpb.AppendDecorators(
				decor.Percentage(decor.WC{W: 5}),
				decor.Name(" • "),
				decor.Elapsed(decor.ET_STYLE_GO, decor.WC{W: 4}),
			),
		)
	}

	results := make([]types.OpResult, 0, len(steps))
	failed := 0
	for _, st := range steps {
		res := executeStep(b, st)
		results = append(results, res)
		if bar != nil {
			bar.Increment()
		}
		if res.Failed() {
			failed++
			log.Warn().Int("step", st.Line).Str("op", string(st.Op)).Str("path", st.Path).Str("error", res.Error).Msg("step failed")
			if failFast {
				break
			}
		}
	}
	if p != nil {
		if len(results) < len(steps) {
			bar.Abort(false)
		}
		p.Wait()
	}

	for _, r := range results {
		fmt.Fprintf(out, "%-6s %-5t %s\n", r.Op, r.Success, r.Path)
	}

	if reportPath != "" {
		if err := report.NewRenderer(b).Generate(results, reportPath); err != nil {
			log.Error().Err(err).Str("file", reportPath).Msg("write report failed")
			return err
		}
		log.Info().Str("file", reportPath).Msg("report generated")
	}

	if metricsFile != "" {
		prom := metrics.NewPrometheusExporter().ExportMetrics(results)
		if err := b.Write(metricsFile, []byte(prom)); err != nil {
			log.Error().Err(err).Str("file", metricsFile).Msg("write metrics failed")
			return errors.Wrap(err, errors.ErrorTypeWrite, "failed to write metrics file")
		}
		log.Info().Str("file", metricsFile).Msg("Prometheus metrics written")
	}

	log.Info().Int("steps", len(results)).Int("failed", failed).Msg("batch finished")
	if failed > 0 {
		return errors.New(errors.ErrorTypeUnknown, fmt.Sprintf("%d of %d steps failed", failed, len(steps)))
	}
	return nil
}

// executeStep runs a single step. For exists, Success carries the answer
// rather than an error condition.
func executeStep(b *bridge.Bridge, st types.Step) types.OpResult {
	start := time.Now()
	res := types.OpResult{Op: st.Op, Path: st.Path}

	var err error
	switch st.Op {
	case types.OpWrite:
		if err = b.Write(st.Path, []byte(st.Content)); err == nil {
			res.Bytes = len(st.Content)
		}
	case types.OpAppend:
		if err = b.Append(st.Path, []byte(st.Content)); err == nil {
			res.Bytes = len(st.Content)
		}
	case types.OpRead:
		var data []byte
		data, err = b.ReadFile(st.Path)
		res.Bytes = len(data)
	case types.OpMkdirs:
		err = b.EnsureDirectory(st.Path)
	case types.OpExists:
		res.Success = b.FileExists(st.Path)
		res.Duration = time.Since(start)
		return res
	default:
		err = errors.ValidationErrorf("unknown op %q", st.Op)
	}

	res.Duration = time.Since(start)
	res.Success = err == nil
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
