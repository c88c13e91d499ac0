package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"sdg-dashboard/config"
	"sdg-dashboard/models"
	"sdg-dashboard/render"
	"sdg-dashboard/services"
	"sdg-dashboard/storage"
	"sdg-dashboard/utils"
)

const (
	formatTable  = "table"
	formatJSON   = "json"
	formatPretty = "pretty"

	reportTitle    = "SDG Education Dashboard"
	reportWordTop  = 60
	wordCloudTitle = "Word Cloud of Indicator Descriptions"
)

// app carries the shared state of one CLI invocation. The data source and
// dashboard are opened lazily so commands like catalog never touch the data.
type app struct {
	cfg    *config.Config
	logger *utils.Logger
	source storage.TableSource
	dash   *services.Dashboard
}

type outputOpts struct {
	format string
	png    string
	svg    string
	csv    string
	xlsx   string
}

// viewOutput is the JSON shape of a chart view.
type viewOutput struct {
	Title   string               `json:"title"`
	NoData  bool                 `json:"no_data"`
	Message string               `json:"message,omitempty"`
	Rows    int                  `json:"rows"`
	Chart   *models.ChartSpec    `json:"chart,omitempty"`
	Summary *models.SeriesReport `json:"summary,omitempty"`
}

func newRootCmd(cfg *config.Config, logger *utils.Logger) *cobra.Command {
	a := &app{cfg: cfg, logger: logger}

	var verbose bool
	root := &cobra.Command{
		Use:   "sdg-dashboard",
		Short: "Explore UNESCO SDG education indicators",
		Long: `sdg-dashboard loads national SDG indicator values and their labels,
then charts regional comparisons and the adult literacy trend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetVerbose(true)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newCatalogCmd(a),
		newWordCloudCmd(a),
		newCompareCmd(a),
		newLiteracyCmd(a),
		newReportCmd(a),
		newSeedCmd(a),
	)
	return root
}

func newCatalogCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the available regions and indicators",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			catalog, err := services.LoadCatalog(a.cfg.CatalogPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if format != formatTable {
				type region struct {
					Name      string   `json:"name"`
					Countries []string `json:"countries"`
				}
				var doc struct {
					Regions    []region                       `json:"regions"`
					Indicators []models.IndicatorCatalogEntry `json:"indicators"`
				}
				for _, name := range catalog.Regions() {
					set, _ := catalog.RegionCountries(name)
					doc.Regions = append(doc.Regions, region{Name: name, Countries: set.Codes()})
				}
				doc.Indicators = catalog.Indicators()
				return writeJSON(out, doc, format == formatPretty)
			}

			heading := color.New(color.FgYellow, color.Bold)
			heading.Fprintln(out, "\n  Regions")
			t := tablewriter.NewWriter(out)
			t.SetHeader([]string{"Region", "Countries"})
			for _, name := range catalog.Regions() {
				set, _ := catalog.RegionCountries(name)
				t.Append([]string{name, strings.Join(set.Codes(), ", ")})
			}
			t.Render()

			heading.Fprintln(out, "\n  Indicators")
			t = tablewriter.NewWriter(out)
			t.SetHeader([]string{"Label", "Code"})
			for _, e := range catalog.Indicators() {
				t.Append([]string{e.DisplayLabel, e.IndicatorID})
			}
			t.Render()
			return nil
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func newWordCloudCmd(a *app) *cobra.Command {
	var (
		format string
		top    int
		png    string
	)
	cmd := &cobra.Command{
		Use:   "wordcloud",
		Short: "Show the most frequent words of the indicator descriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			dash, err := a.dashboard(cmd.Context())
			if err != nil {
				return err
			}
			words, err := dash.WordCloud(cmd.Context(), top)
			if err != nil {
				return err
			}
			if format != formatTable {
				if err := writeJSON(cmd.OutOrStdout(), words, format == formatPretty); err != nil {
					return err
				}
			} else {
				dash.Summaries().PrintWords(cmd.OutOrStdout(), words)
			}

			if png != "" && len(words) > 0 {
				path := a.outPath(withExt(png, ".png"))
				if err := render.SaveWordBars(path, wordCloudTitle, words); err != nil {
					return err
				}
				a.logger.Info("Word chart saved to %s", path)
			}
			return nil
		},
	}
	addFormatFlag(cmd, &format)
	cmd.Flags().IntVar(&top, "top", 30, "Number of words to show (0 = all)")
	cmd.Flags().StringVar(&png, "png", "", "Save the word frequencies as a PNG bar chart")
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	var (
		opts      outputOpts
		region    string
		indicator string
		countries []string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare one indicator across countries of a region",
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := a.dashboard(cmd.Context())
			if err != nil {
				return err
			}
			view, err := a.comparison(cmd, dash, region, indicator, countries)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), dash, view, opts)
		},
	}
	addOutputFlags(cmd, &opts)
	addSelectionFlags(cmd, &region, &indicator, &countries)
	return cmd
}

func newLiteracyCmd(a *app) *cobra.Command {
	var (
		opts      outputOpts
		countries []string
		target    float64
	)
	cmd := &cobra.Command{
		Use:   "literacy",
		Short: "Chart the adult literacy trend against a target",
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := a.dashboard(cmd.Context())
			if err != nil {
				return err
			}
			view, err := dash.LiteracyTrend(cmd.Context(), countries, target)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), dash, view, opts)
		},
	}
	addOutputFlags(cmd, &opts)
	cmd.Flags().StringSliceVar(&countries, "countries", services.DefaultLiteracyCountries, "Sub-Saharan country codes")
	cmd.Flags().Float64Var(&target, "target", a.cfg.LiteracyGoal, "Literacy target in percent")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var (
		out       string
		pdf       string
		region    string
		indicator string
		countries []string
		literacy  []string
		target    float64
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the full dashboard as an HTML page, optionally printed to PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dash, err := a.dashboard(ctx)
			if err != nil {
				return err
			}

			words, err := dash.WordCloud(ctx, reportWordTop)
			if err != nil {
				return err
			}
			compare, err := a.comparison(cmd, dash, region, indicator, countries)
			if err != nil {
				return err
			}
			lit, err := dash.LiteracyTrend(ctx, literacy, target)
			if err != nil {
				return err
			}

			report := render.Report{
				Title:       reportTitle,
				GeneratedAt: time.Now(),
				Words:       words,
				Sections:    []render.Section{toSection(compare), toSection(lit)},
			}
			htmlPath := a.outPath(out)
			charts := render.NewChartRenderer(a.cfg.ChartWidthIn, a.cfg.ChartHeightIn)
			if err := render.NewReportWriter(charts).WriteFile(htmlPath, report); err != nil {
				return err
			}
			a.logger.Info("Report saved to %s", htmlPath)

			if pdf != "" {
				return render.NewPDFExporter(a.cfg.ChromeBin, a.logger).Export(ctx, htmlPath, a.outPath(pdf))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "dashboard.html", "HTML output path")
	cmd.Flags().StringVar(&pdf, "pdf", "", "Also print the report to this PDF path")
	addSelectionFlags(cmd, &region, &indicator, &countries)
	cmd.Flags().StringSliceVar(&literacy, "literacy-countries", services.DefaultLiteracyCountries, "Countries of the literacy view")
	cmd.Flags().Float64Var(&target, "target", a.cfg.LiteracyGoal, "Literacy target in percent")
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Copy the CSV inputs into the PostgreSQL source tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src := storage.NewCSVSource(a.cfg.ValuesPath, a.cfg.LabelsPath)

			values, err := src.ReadValues(ctx)
			if err != nil {
				return &services.DataSourceError{Source: "values", Reason: "unreadable", Err: err}
			}
			labels, err := src.ReadLabels(ctx)
			if err != nil {
				return &services.DataSourceError{Source: "labels", Reason: "unreadable", Err: err}
			}

			w, err := storage.NewPostgresWriter(ctx, a.cfg.DSN(), a.retry())
			if err != nil {
				return &services.DataSourceError{Source: config.SourcePostgres, Reason: "unreachable", Err: err}
			}
			defer w.Close()

			for _, t := range []struct {
				name string
				raw  *models.RawTable
			}{
				{a.cfg.ValuesTable, values},
				{a.cfg.LabelsTable, labels},
			} {
				if err := w.ReplaceTable(ctx, t.name, t.raw); err != nil {
					return err
				}
				a.logger.Info("Seeded %s with %d rows", t.name, len(t.raw.Rows))
			}
			return nil
		},
	}
}

// dashboard opens the configured source and catalog on first use.
func (a *app) dashboard(ctx context.Context) (*services.Dashboard, error) {
	if a.dash != nil {
		return a.dash, nil
	}
	catalog, err := services.LoadCatalog(a.cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	src, err := a.openSource(ctx)
	if err != nil {
		return nil, err
	}
	a.source = src
	a.dash = services.NewDashboard(services.NewLoader(src, a.logger, a.cfg.LoadWorkers), catalog, a.logger)
	return a.dash, nil
}

func (a *app) openSource(ctx context.Context) (storage.TableSource, error) {
	switch a.cfg.DataSource {
	case config.SourceCSV:
		a.logger.Debug("Reading %s and %s", a.cfg.ValuesPath, a.cfg.LabelsPath)
		return storage.NewCSVSource(a.cfg.ValuesPath, a.cfg.LabelsPath), nil
	case config.SourcePostgres:
		src, err := storage.NewPostgresSource(ctx, a.cfg.DSN(), a.cfg.ValuesTable, a.cfg.LabelsTable, a.retry())
		if err != nil {
			a.logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			return nil, &services.DataSourceError{Source: config.SourcePostgres, Reason: "unreachable", Err: err}
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown DATA_SOURCE %q (want %s or %s)", a.cfg.DataSource, config.SourceCSV, config.SourcePostgres)
	}
}

func (a *app) retry() *utils.RetryConfig {
	return &utils.RetryConfig{MaxAttempts: a.cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: a.logger}
}

func (a *app) close() {
	if a.source == nil {
		return
	}
	if err := a.source.Close(); err != nil {
		a.logger.Warn("Closing data source: %v", err)
	}
}

// comparison resolves the selection defaults the way the dashboard widgets
// preselect them, then runs the regional comparison view.
func (a *app) comparison(cmd *cobra.Command, dash *services.Dashboard, region, indicator string, countries []string) (*services.ViewResult, error) {
	catalog := dash.Catalog()
	if region == "" {
		region = catalog.Regions()[0]
	}
	if indicator == "" {
		indicator = catalog.Indicators()[0].DisplayLabel
	}
	if !cmd.Flags().Changed("countries") {
		defaults, err := catalog.DefaultSelection(region)
		if err != nil {
			return nil, err
		}
		countries = defaults
	}
	return dash.RegionalComparison(cmd.Context(), region, indicator, countries)
}

// emit prints a view in the requested format and writes the requested files.
func (a *app) emit(out io.Writer, dash *services.Dashboard, view *services.ViewResult, opts outputOpts) error {
	switch opts.format {
	case formatJSON, formatPretty:
		if err := writeJSON(out, toOutput(view), opts.format == formatPretty); err != nil {
			return err
		}
	case formatTable:
		if view.NoData {
			color.New(color.FgYellow).Fprintln(out, view.Message)
		} else {
			dash.Summaries().Print(out, view.Title, view.Summary)
		}
	default:
		return checkFormat(opts.format)
	}

	if view.NoData {
		if opts.png != "" || opts.svg != "" || opts.csv != "" || opts.xlsx != "" {
			a.logger.Warn("Nothing to export: %s", view.Message)
		}
		return nil
	}
	return a.export(view, opts)
}

func (a *app) export(view *services.ViewResult, opts outputOpts) error {
	charts := render.NewChartRenderer(a.cfg.ChartWidthIn, a.cfg.ChartHeightIn)
	images := []struct{ path, ext string }{{opts.png, ".png"}, {opts.svg, ".svg"}}
	for _, img := range images {
		if img.path == "" {
			continue
		}
		path := a.outPath(withExt(img.path, img.ext))
		if err := charts.SaveFile(path, view.Chart); err != nil {
			return err
		}
		a.logger.Info("Chart saved to %s", path)
	}

	if opts.csv != "" {
		path := a.outPath(withExt(opts.csv, ".csv"))
		w, err := storage.NewCSVWriter(path)
		if err != nil {
			return err
		}
		if err := writeSeries(w, view.Series); err != nil {
			return err
		}
		a.logger.Info("%d rows saved to %s", len(view.Series.Records), path)
	}
	if opts.xlsx != "" {
		path := a.outPath(withExt(opts.xlsx, ".xlsx"))
		w, err := storage.NewExcelWriter(path)
		if err != nil {
			return err
		}
		if err := writeSeries(w, view.Series); err != nil {
			return err
		}
		a.logger.Info("%d rows saved to %s", len(view.Series.Records), path)
	}
	return nil
}

// outPath places bare file names under the configured output directory.
func (a *app) outPath(p string) string {
	if filepath.IsAbs(p) || filepath.Dir(p) != "." {
		return p
	}
	return filepath.Join(a.cfg.OutputDir, p)
}

func writeSeries(w storage.SeriesWriter, series models.FilteredSeries) error {
	if err := w.Write(series); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func withExt(p, ext string) string {
	if strings.EqualFold(filepath.Ext(p), ext) {
		return p
	}
	return p + ext
}

func toOutput(v *services.ViewResult) viewOutput {
	return viewOutput{
		Title:   v.Title,
		NoData:  v.NoData,
		Message: v.Message,
		Rows:    len(v.Series.Records),
		Chart:   v.Chart,
		Summary: v.Summary,
	}
}

func toSection(v *services.ViewResult) render.Section {
	return render.Section{
		Title:   v.Title,
		Chart:   v.Chart,
		Summary: v.Summary,
		NoData:  v.NoData,
		Message: v.Message,
	}
}

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatPretty:
		return nil
	}
	return fmt.Errorf("unknown format %q (want %s, %s or %s)", format, formatTable, formatJSON, formatPretty)
}

func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVar(format, "format", formatTable, "Output format: table, json or pretty")
}

func addOutputFlags(cmd *cobra.Command, opts *outputOpts) {
	addFormatFlag(cmd, &opts.format)
	cmd.Flags().StringVar(&opts.png, "png", "", "Save the chart as PNG")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "Save the chart as SVG")
	cmd.Flags().StringVar(&opts.csv, "csv", "", "Export the selected rows as CSV")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "Export the selected rows as XLSX")
}

func addSelectionFlags(cmd *cobra.Command, region, indicator *string, countries *[]string) {
	cmd.Flags().StringVar(region, "region", "", "Region name (default: first catalog region)")
	cmd.Flags().StringVar(indicator, "indicator", "", "Indicator label (default: first catalog indicator)")
	cmd.Flags().StringSliceVar(countries, "countries", nil, "Country codes (default: first three of the region)")
}
