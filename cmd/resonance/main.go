// Command resonance scores text into resonance vectors and renders
// their glyphs: one-shot analysis and image export on the command
// line, plus the HTTP API and session history behind `serve`.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"

	"github.com/talgya/resonance/internal/api"
	"github.com/talgya/resonance/internal/render"
	"github.com/talgya/resonance/internal/resonance"
	"github.com/talgya/resonance/internal/session"
)

const version = "0.3.0"

const (
	defaultPort   = 8080
	defaultDBPath = "data/resonance.db"
)

func main() {
	setupLogging()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "render":
		err = runRender(os.Args[2:])
	case "animate":
		err = runAnimate(os.Args[2:])
	case "history":
		err = runHistory(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "version":
		fmt.Println("resonance", version)
	case "help", "-h", "--help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `resonance %s

Usage:
  resonance <command> [flags] [text...]

Commands:
  analyze   score text into a resonance vector
  render    render the text's glyph to a PNG
  animate   render the text's animated glyph to a GIF
  history   list recently saved sessions
  serve     run the HTTP API
  version   print the version

Run "resonance <command> -help" for command flags. Input text may
also come from -f FILE or piped stdin.
`, version)
}

// setupLogging sends text logs to stderr so command output on stdout
// stays pipeable. RESONANCE_LOG_FILE adds a JSON copy for ingestion.
func setupLogging() {
	level := parseLevel(envOrDefault("RESONANCE_LOG_LEVEL", "info"))
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}
	if path := os.Getenv("RESONANCE_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open log file %s: %v\n", path, err)
		} else {
			handlers = append(handlers,
				slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		}
	}
	if len(handlers) == 1 {
		slog.SetDefault(slog.New(handlers[0]))
		return
	}
	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	var (
		file     = fs.String("f", "", "read text from file instead of arguments")
		asJSON   = fs.Bool("json", false, "emit the vector as JSON")
		chart    = fs.Bool("chart", false, "show the per-sentence chart even when piped")
		save     = fs.Bool("save", false, "record the analysis in history")
		dbPath   = fs.String("db", envOrDefault("RESONANCE_DB", defaultDBPath), "history database path")
		provider = fs.String("provider", "cli", "provider tag recorded with -save")
	)
	fs.Parse(args)

	text, err := readInput(*file, fs.Args())
	if err != nil {
		return err
	}
	vec := resonance.Analyze(text)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(vec); err != nil {
			return err
		}
	} else {
		printVector(vec)
		scores := resonance.SentenceScores(text)
		if (*chart || isatty.IsTerminal(os.Stdout.Fd())) && len(scores) >= 2 {
			printChart(scores)
		}
	}

	if *save {
		return saveRecord(*dbPath, text, *provider, vec, nil)
	}
	return nil
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	var (
		file   = fs.String("f", "", "read text from file instead of arguments")
		out    = fs.String("o", "glyph.png", "output PNG path")
		width  = fs.Int("w", 600, "image width in pixels")
		height = fs.Int("h", 600, "image height in pixels")
		save   = fs.Bool("save", false, "record the analysis and snapshot in history")
		dbPath = fs.String("db", envOrDefault("RESONANCE_DB", defaultDBPath), "history database path")
	)
	fs.Parse(args)

	text, err := readInput(*file, fs.Args())
	if err != nil {
		return err
	}
	vec := resonance.Analyze(text)

	opts := render.DefaultOptions()
	opts.Width, opts.Height = *width, *height
	opts.Animate = false

	var buf bytes.Buffer
	if err := render.RenderStill(vec, opts, &buf); err != nil {
		return fmt.Errorf("render still: %w", err)
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	slog.Info("glyph rendered",
		"path", *out,
		"shape", vec.Glyph.Shape.String(),
		"size", humanize.Bytes(uint64(buf.Len())))
	fmt.Printf("%s: %s\n", *out, vec.MeaningSignature)

	if *save {
		return saveRecord(*dbPath, text, "cli", vec, buf.Bytes())
	}
	return nil
}

func runAnimate(args []string) error {
	fs := flag.NewFlagSet("animate", flag.ExitOnError)
	var (
		file       = fs.String("f", "", "read text from file instead of arguments")
		out        = fs.String("o", "glyph.gif", "output GIF path")
		width      = fs.Int("w", 320, "frame width in pixels")
		height     = fs.Int("h", 320, "frame height in pixels")
		seconds    = fs.Float64("seconds", 4, "animation length")
		fps        = fs.Int("fps", 20, "frames per second")
		seed       = fs.Int64("seed", 1, "turbulence and spawn seed")
		turbulence = fs.Float64("turbulence", 0.4, "noise drift strength, 0 disables")
	)
	fs.Parse(args)

	text, err := readInput(*file, fs.Args())
	if err != nil {
		return err
	}
	vec := resonance.Analyze(text)

	opts := render.DefaultOptions()
	opts.Width, opts.Height = *width, *height
	opts.Seed = *seed
	opts.Turbulence = *turbulence

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	start := time.Now()
	if err := render.RenderGIF(vec, opts, *seconds, *fps, f); err != nil {
		f.Close()
		return fmt.Errorf("render gif: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", *out, err)
	}

	size := "unknown"
	if info, err := os.Stat(*out); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	slog.Info("animation rendered",
		"path", *out,
		"seconds", *seconds,
		"fps", *fps,
		"size", size,
		"took", time.Since(start).Round(time.Millisecond))
	fmt.Printf("%s: %s\n", *out, vec.MeaningSignature)
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	var (
		dbPath = fs.String("db", envOrDefault("RESONANCE_DB", defaultDBPath), "history database path")
		limit  = fs.Int("n", 10, "number of sessions to show")
		asJSON = fs.Bool("json", false, "emit records as JSON")
	)
	fs.Parse(args)

	store, err := openStore(*dbPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	records, err := store.Recent(*limit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		fmt.Println("no sessions recorded yet")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("%-8s  %-16s  %-5s  %s\n",
			shortID(rec.ID), humanize.Time(rec.CreatedAt), rec.Source,
			truncate(rec.Text, 48))
	}
	if total, err := store.Count(); err == nil && total > len(records) {
		fmt.Printf("(showing %d of %d sessions)\n", len(records), total)
	}
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		port      = fs.Int("port", envIntOrDefault("RESONANCE_PORT", defaultPort), "HTTP listen port")
		dbPath    = fs.String("db", envOrDefault("RESONANCE_DB", defaultDBPath), "history database path")
		noHistory = fs.Bool("no-history", false, "serve without persisting sessions")
	)
	fs.Parse(args)

	var store *session.Store
	if !*noHistory {
		var err error
		store, err = openStore(*dbPath)
		if err != nil {
			slog.Warn("history unavailable, serving without it", "error", err)
			store = nil
		} else {
			defer store.Close()
			slog.Info("history database opened", "path", *dbPath)
		}
	}

	server := &api.Server{
		Store:   store,
		Port:    *port,
		Version: version,
	}
	server.Start()

	fmt.Printf("Resonance API: http://localhost:%d/api/v1/status\n", *port)
	fmt.Println("Press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	return nil
}

// readInput resolves the text to analyze: -f FILE wins, then the
// remaining arguments joined, then stdin when something is piped in.
func readInput(file string, args []string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return "", errors.New("no input: pass text as arguments, -f FILE, or pipe stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func printVector(vec resonance.Vector) {
	fmt.Printf("cognitive load       %6.1f\n", vec.CognitiveLoad)
	fmt.Printf("emotional intensity  %6.1f\n", vec.EmotionalIntensity)
	fmt.Printf("symbolic density     %6.1f\n", vec.SymbolicDensity)
	fmt.Printf("temporal flow        %6.1f\n", vec.TemporalFlow)
	if len(vec.EmergencePoints) > 0 {
		parts := make([]string, len(vec.EmergencePoints))
		for i, p := range vec.EmergencePoints {
			parts[i] = fmt.Sprintf("%.0f%%", p)
		}
		fmt.Printf("emergence points     %s\n", strings.Join(parts, ", "))
	}
	fmt.Printf("signature            %s\n", vec.MeaningSignature)
	fmt.Printf("glyph                %s, frequency %.2f, depth %d, %s\n",
		vec.Glyph.Shape, vec.Glyph.Frequency, vec.Glyph.Complexity, vec.Glyph.Color)
}

// printChart plots per-sentence emotional intensity so the spikes
// behind emergence points are visible at a glance.
func printChart(scores []resonance.SentenceScore) {
	values := make([]float64, len(scores))
	for i, s := range scores {
		values[i] = s.EmotionalIntensity
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(values,
		asciigraph.Height(8),
		asciigraph.Caption("emotional intensity per sentence")))
}

func saveRecord(dbPath, text, provider string, vec resonance.Vector, snapshot []byte) error {
	store, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	rec := &session.Record{
		Source:   session.SourceText,
		Provider: provider,
		Text:     text,
		Vector:   vec,
		Snapshot: snapshot,
	}
	if err := store.Save(rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Printf("saved session %s\n", rec.ID)
	return nil
}

func openStore(path string) (*session.Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return session.Open(path)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max-3]) + "..."
}
