package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/radiusdt/campaign-insights/internal/analytics"
	"github.com/radiusdt/campaign-insights/internal/extract"
	"github.com/radiusdt/campaign-insights/internal/insights"
	"github.com/radiusdt/campaign-insights/internal/middleware"
	"github.com/radiusdt/campaign-insights/internal/models"
)

type rootOptions struct {
	verbose   bool
	unitValue float64
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "insightsctl",
		Short:         "Campaign KPI aggregation and insight normalization",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline decisions to stderr")
	cmd.PersistentFlags().Float64Var(&opts.unitValue, "unit-value", analytics.DefaultConfig().UnitValue, "revenue credited per conversion when a row has none")

	cmd.AddCommand(newAggregateCmd(opts), newNormalizeCmd(opts))
	return cmd
}

func (o *rootOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := middleware.NewLogger("debug", "console")
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (o *rootOptions) aggregator() *analytics.Aggregator {
	cfg := analytics.DefaultConfig()
	cfg.UnitValue = o.unitValue
	return analytics.NewAggregator(cfg)
}

func newAggregateCmd(opts *rootOptions) *cobra.Command {
	var file, groupBy string
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Compute the KPI set of a file of metric rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			rows, err := decodeRows(data)
			if err != nil {
				return err
			}
			kpis := opts.aggregator().Aggregate(rows, groupBy)
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"kpis":               kpis,
				"optimization_hints": analytics.OptimizationHints(kpis),
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "rows file (JSON array or {\"rows\": [...]}); - reads stdin")
	cmd.Flags().StringVar(&groupBy, "group-by", "", "dimension tag to slice by (default channel_name)")
	return cmd
}

type normalizeOptions struct {
	file       string
	historical string
	kpis       string
	channels   []string
	campaign   models.CampaignInput
}

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	no := &normalizeOptions{}
	cmd := &cobra.Command{
		Use:       "normalize {prediction|analysis|allocation}",
		Short:     "Turn saved generative output into a complete result",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(extract.KindPrediction), string(extract.KindAnalysis), string(extract.KindAllocation)},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, no.file)
			if err != nil {
				return err
			}
			content := contentFromBytes(data)
			pipeline := insights.NewPipeline(insights.DefaultModelParams(), nil, opts.logger(), nil)

			var result any
			switch extract.Kind(args[0]) {
			case extract.KindPrediction:
				var historical []models.KPISet
				if no.historical != "" {
					if err := readJSONFile(no.historical, &historical); err != nil {
						return err
					}
				}
				result = pipeline.NormalizePrediction(content, historical, no.campaign.WithDefaults())
			case extract.KindAnalysis:
				var kpis models.KPISet
				if no.kpis != "" {
					if err := readJSONFile(no.kpis, &kpis); err != nil {
						return err
					}
				}
				result = pipeline.NormalizeAnalysis(content, kpis)
			case extract.KindAllocation:
				result = pipeline.NormalizeAllocation(content, no.channels)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&no.file, "file", "f", "-", "generative output (JSON object or text); - reads stdin")
	f.StringVar(&no.historical, "historical", "", "JSON array of historical KPI sets (prediction)")
	f.StringVar(&no.kpis, "kpis", "", "JSON KPI set of the analyzed data (analysis)")
	f.StringSliceVar(&no.channels, "channels", nil, "channels for the balanced fallback (allocation)")
	f.Float64Var(&no.campaign.Budget, "budget", 0, "campaign budget (prediction)")
	f.Float64Var(&no.campaign.Impressions, "impressions", 0, "expected impressions (prediction)")
	f.StringVar(&no.campaign.Channel, "channel", "", "campaign channel (prediction)")
	f.StringVar(&no.campaign.Audience, "audience", "", "campaign audience (prediction)")
	return cmd
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" || file == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return data, nil
}

func readJSONFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// decodeRows accepts a bare array of rows or an object with a rows field.
func decodeRows(data []byte) ([]models.MetricRow, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var rows []models.MetricRow
	if trimmed[0] == '{' {
		var wrapped struct {
			Rows []models.MetricRow `json:"rows"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode rows: %w", err)
		}
		return wrapped.Rows, nil
	}
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	return rows, nil
}

// contentFromBytes treats a JSON object as structured output and anything
// else as generated text.
func contentFromBytes(data []byte) extract.Content {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return extract.Absent{}
	}
	if strings.HasPrefix(text, "{") {
		var m map[string]any
		if err := json.Unmarshal([]byte(text), &m); err == nil {
			return extract.Structured{Value: m}
		}
	}
	return extract.RawText(text)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
