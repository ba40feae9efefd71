package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/takens/internal/config"
	"github.com/san-kum/takens/internal/embed"
	"github.com/san-kum/takens/internal/series"
	"github.com/san-kum/takens/internal/signal"
	"github.com/san-kum/takens/internal/storage"
)

var (
	dataDir    string
	configFile string
	model      string
	maxDelay   int
	sampleFrac float64
	theiler    int
	alpha      float64
	binomialP  float64
	neighbors  int
	costK      int
	horizon    int
	maxCycles  int
	normName   string
	seed       int64
	// synth flags
	outFile   string
	samples   int
	dt        float64
	transient int
	period    float64
	// plot flags
	plotCycle int
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	valueStyle = lipgloss.NewStyle().Bold(true)
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "takens",
		Short: "automated phase-space reconstruction",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".takens", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [series.csv]",
		Short: "reconstruct a trajectory from a series",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReconstruct,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&model, "model", "", "built-in source instead of a CSV (lorenz, rossler, sine, noise)")
	runCmd.Flags().IntVar(&maxDelay, "max-delay", config.DefaultMaxDelay, "largest candidate delay")
	runCmd.Flags().Float64Var(&sampleFrac, "sample", config.DefaultSampleFraction, "fraction of points sampled by the statistics")
	runCmd.Flags().IntVar(&theiler, "theiler", config.DefaultTheilerWindow, "theiler exclusion window")
	runCmd.Flags().Float64Var(&alpha, "alpha", config.DefaultAlpha, "continuity significance level")
	runCmd.Flags().Float64Var(&binomialP, "p", config.DefaultBinomialP, "continuity null probability")
	runCmd.Flags().IntVar(&neighbors, "neighbors", config.DefaultMaxNeighbors, "continuity neighborhood bound")
	runCmd.Flags().IntVar(&costK, "cost-neighbors", config.DefaultCostNeighbors, "k for the trajectory cost")
	runCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizonFactor, "cost horizon factor")
	runCmd.Flags().IntVar(&maxCycles, "cycles", config.DefaultMaxCycles, "embedding cycle budget")
	runCmd.Flags().StringVar(&normName, "norm", "euclidean", "distance norm (euclidean, maximum)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "sampling seed")

	synthCmd := &cobra.Command{
		Use:   "synth [model]",
		Short: "write a synthetic series CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runSynth,
	}
	synthCmd.Flags().StringVar(&outFile, "out", "series.csv", "output file")
	synthCmd.Flags().IntVar(&samples, "samples", 2000, "number of samples")
	synthCmd.Flags().Float64Var(&dt, "dt", 0.05, "integration timestep (flows)")
	synthCmd.Flags().IntVar(&transient, "transient", 1000, "transient steps to discard (flows)")
	synthCmd.Flags().Float64Var(&period, "period", 25, "period in samples (sine)")
	synthCmd.Flags().Int64Var(&seed, "seed", 42, "noise seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot trajectory columns and a continuity snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotCycle, "cycle", 1, "continuity snapshot cycle to plot")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run and trajectory as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the trajectory CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	rootCmd.AddCommand(runCmd, synthCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildOptions(cmd *cobra.Command) (embed.Options, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return embed.Options{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	// CLI flags override config file values.
	if cmd.Flags().Changed("max-delay") {
		cfg.MaxDelay = maxDelay
		cfg.Delays = nil
	}
	if cmd.Flags().Changed("sample") {
		cfg.SampleFraction = sampleFrac
	}
	if cmd.Flags().Changed("theiler") {
		cfg.TheilerWindow = theiler
	}
	if cmd.Flags().Changed("alpha") {
		cfg.SignificanceAlpha = alpha
	}
	if cmd.Flags().Changed("p") {
		cfg.BinomialP = binomialP
	}
	if cmd.Flags().Changed("neighbors") {
		cfg.MaxNeighbors = neighbors
	}
	if cmd.Flags().Changed("cost-neighbors") {
		cfg.CostNeighbors = costK
	}
	if cmd.Flags().Changed("horizon") {
		cfg.HorizonFactor = horizon
	}
	if cmd.Flags().Changed("cycles") {
		cfg.MaxCycles = maxCycles
	}
	if cmd.Flags().Changed("norm") {
		cfg.Norm = normName
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg.Options()
}

func loadInput(args []string) (series.Set, string, error) {
	if model != "" {
		s, err := synthSeries(model)
		return s, model, err
	}
	if len(args) == 0 {
		return nil, "", fmt.Errorf("need a CSV file or --model")
	}
	s, err := loadCSV(args[0])
	return s, trimName(args[0]), err
}

func runReconstruct(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}
	s, name, err := loadInput(args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("reconstructing %s (%d samples, %d channels)...\n", name, s.Len(), s.Channels())
	start := time.Now()

	res, err := embed.Reconstruct(context.Background(), s, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, opts, res, elapsed)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(titleStyle.Render("reconstruction complete"))
	printField("run id", runID)
	printField("elapsed", elapsed.Round(time.Millisecond).String())
	printField("columns", fmt.Sprintf("%d", res.Trajectory.Dims()))
	printField("rows", fmt.Sprintf("%d", res.Trajectory.Len()))
	printField("delays", fmt.Sprintf("%v", res.Delays))
	printField("channels", fmt.Sprintf("%v", res.Channels))
	printField("L per cycle", fmt.Sprintf("%.4f", res.Ls))
	printField("L baseline", fmt.Sprintf("%.4f", res.LInit))
	printField("stopped", res.Stopped)
	return nil
}

func printField(label, value string) {
	fmt.Printf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), valueStyle.Render(value))
}

func synthSeries(name string) (series.Set, error) {
	switch name {
	case "lorenz":
		sys := signal.NewLorenz()
		return signal.Integrate(sys, sys.DefaultState(), dt, samples, transient), nil
	case "rossler":
		sys := signal.NewRossler()
		return signal.Integrate(sys, sys.DefaultState(), dt, samples, transient), nil
	case "sine":
		return series.FromChannels(signal.Sine(samples, period, 0)), nil
	case "noise":
		rng := rand.New(rand.NewSource(seed))
		return series.FromChannels(signal.Noise(samples, rng)), nil
	default:
		return nil, fmt.Errorf("unknown model: %s", name)
	}
}

func runSynth(cmd *cobra.Command, args []string) error {
	s, err := synthSeries(args[0])
	if err != nil {
		return err
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := make([]string, s.Channels())
	for j := range header {
		header[j] = fmt.Sprintf("x%d", j)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < s.Len(); i++ {
		row := make([]string, s.Channels())
		for j := 0; j < s.Channels(); j++ {
			row[j] = strconv.FormatFloat(s[j][i], 'f', 6, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	fmt.Printf("wrote %d samples of %s to %s\n", s.Len(), args[0], outFile)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tCOLS\tDELAYS\tSTOPPED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\t%s\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Columns,
			run.Delays,
			run.Stopped,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(traj) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s\n\n", meta.Source)

	for col := 0; col < meta.Columns; col++ {
		data := make([]float64, len(traj))
		for i := range traj {
			if col < len(traj[i]) {
				data[i] = traj[i][col]
			}
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("column %d: channel %d, lag %d", col, meta.Channels[col], meta.Delays[col])),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	snap, err := st.LoadSnapshot(runID, plotCycle)
	if err != nil {
		return nil // run saved before any cycle completed
	}
	if len(snap) == 0 {
		return nil
	}
	for ch := 0; ch < len(snap[0]); ch++ {
		curve := make([]float64, len(snap))
		for i := range snap {
			curve[i] = snap[i][ch]
		}
		graph := asciigraph.Plot(curve,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("continuity, cycle %d, channel %d", plotCycle, ch)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(meta, traj)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := make([]string, meta.Columns)
	for i := range header {
		header[i] = fmt.Sprintf("ch%d_lag%d", meta.Channels[i], meta.Delays[i])
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range traj {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func loadCSV(path string) (series.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, 0, len(records))
	for i, rec := range records {
		row := make([]float64, 0, len(rec))
		ok := true
		for _, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			row = append(row, v)
		}
		if !ok {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("non-numeric value in row %d", i)
		}
		rows = append(rows, row)
	}
	return series.FromRows(rows)
}

func trimName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
