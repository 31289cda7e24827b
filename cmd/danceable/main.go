package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vegasq/danceable/internal/config"
	"github.com/vegasq/danceable/output"
	"github.com/vegasq/danceable/pipeline"
	"github.com/vegasq/danceable/query"
	"github.com/vegasq/danceable/reader"
)

// Stage names, printed before each step so the last one shows where a run failed
const (
	stageArgs     = "parsing arguments"
	stageLyrics   = "building lyrics query"
	stageDance    = "building danceability query"
	stageResult   = "building result"
	stageWriteOut = "writing output"
)

// keywordList collects repeated -keywords flags
type keywordList []string

func (k *keywordList) String() string {
	return strings.Join(*k, ",")
}

func (k *keywordList) Set(v string) error {
	*k = append(*k, v)
	return nil
}

// stageError names the stage a run failed in
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s: %v", e.stage, e.err)
}

func (e *stageError) Unwrap() error {
	return e.err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("run_id", uuid.NewString())

	if err := execute(ctx, args, stdout, stderr, logger, level); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer, logger *slog.Logger, level *slog.LevelVar) error {
	start := time.Now()

	logger.Info(stageArgs)
	cfg, explain, err := parseArgs(args, stderr)
	if err != nil {
		return &stageError{stage: stageArgs, err: err}
	}
	if cfg.verbose {
		level.Set(slog.LevelDebug)
	}
	logger.Debug("configuration",
		"keywords", cfg.Keywords,
		"min_views", cfg.MinViews,
		"format", cfg.Format,
		"output", cfg.Output,
	)
	params := cfg.Params()

	logger.Info(stageLyrics)
	lyricsSrc, err := reader.Open(cfg.Inputs.GeniusSongLyrics)
	if err != nil {
		return &stageError{stage: stageLyrics, err: err}
	}
	lyrics := pipeline.LyricsFilter(lyricsSrc, cfg.Keywords, params)
	if _, err := lyrics.Schema(); err != nil {
		return &stageError{stage: stageLyrics, err: err}
	}

	logger.Info(stageDance)
	in, err := openInputs(cfg.Inputs, lyricsSrc)
	if err != nil {
		return &stageError{stage: stageDance, err: err}
	}
	dance := pipeline.Danceability(in, params)
	if _, err := dance.Schema(); err != nil {
		return &stageError{stage: stageDance, err: err}
	}

	logger.Info(stageResult)
	result := pipeline.Assemble(lyrics, dance, cfg.Limit)
	if _, err := result.Schema(); err != nil {
		return &stageError{stage: stageResult, err: err}
	}
	logger.Debug("plan", "explain", result.Explain())
	if explain {
		fmt.Fprint(stdout, result.Explain())
		return nil
	}

	collectStart := time.Now()
	table, err := result.Collect(ctx)
	if err != nil {
		return &stageError{stage: stageResult, err: err}
	}
	logger.Debug("collected", "rows", table.NumRows(), "duration", time.Since(collectStart))

	logger.Info(stageWriteOut)
	format, _ := output.ParseFormat(cfg.Format)
	f, err := output.Create(cfg.Output, format)
	if err != nil {
		return &stageError{stage: stageWriteOut, err: err}
	}
	if err := f.Write(table); err != nil {
		_ = f.Close()
		return &stageError{stage: stageWriteOut, err: err}
	}
	if err := f.Close(); err != nil {
		return &stageError{stage: stageWriteOut, err: err}
	}

	logger.Info("done", "rows", table.NumRows(), "output", cfg.Output, "duration", time.Since(start))
	return nil
}

// openInputs opens the four sources of the danceability pipeline
func openInputs(paths config.Inputs, lyrics query.Source) (pipeline.Inputs, error) {
	in := pipeline.Inputs{Lyrics: lyrics}
	targets := []struct {
		path string
		dst  *query.Source
	}{
		{paths.Artists, &in.Artists},
		{paths.AudioFeatures, &in.AudioFeatures},
		{paths.RTrackArtist, &in.TrackArtists},
		{paths.Tracks, &in.Tracks},
	}
	for _, t := range targets {
		src, err := reader.Open(t.path)
		if err != nil {
			return pipeline.Inputs{}, err
		}
		*t.dst = src
	}
	return in, nil
}

type runConfig struct {
	*config.Config
	verbose bool
}

// parseArgs reads the optional config file first, then lets explicitly set
// flags override it. Keywords only come from -keywords; a stray positional
// argument is an error rather than a silent change to the filter.
func parseArgs(args []string, stderr io.Writer) (runConfig, bool, error) {
	fs := flag.NewFlagSet("danceable", flag.ContinueOnError)
	fs.SetOutput(stderr)

	defaults := config.Default()
	var (
		artists    = fs.String("artists", "", "Path to the artists CSV (id, name)")
		audio      = fs.String("audio-features", "", "Path to the audio features CSV (id, danceability, energy, tempo)")
		lyrics     = fs.String("genius-song-lyrics", "", "Path to the song lyrics CSV (title, artist, lyrics, language, views)")
		links      = fs.String("r-track-artist", "", "Path to the track-artist relation CSV (track_id, artist_id)")
		tracks     = fs.String("tracks", "", "Path to the tracks CSV (id, name, explicit)")
		out        = fs.String("output", "", "Output file path (a .gz suffix compresses it)")
		minViews   = fs.Int64("min-views", defaults.MinViews, "Keep lyrics with strictly more views")
		format     = fs.String("format", defaults.Format, "Output format: csv, jsonl, parquet, table")
		limit      = fs.Int64("limit", 0, "Limit number of rows (0 = unlimited)")
		configPath = fs.String("config", "", "YAML or JSON config file; flags override it")
		explain    = fs.Bool("explain", false, "Print the query plan instead of running it")
		verbose    = fs.Bool("v", false, "Verbose logging")
		keywords   keywordList
	)
	fs.Var(&keywords, "keywords", "Lyrics keyword, case-insensitive (repeatable)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: danceable [options]\n\n")
		fmt.Fprintf(stderr, "Finds danceable songs whose lyrics mention a keyword.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExample:\n")
		fmt.Fprintf(stderr, "  danceable -artists artists.csv -audio-features audio_features.csv \\\n")
		fmt.Fprintf(stderr, "    -genius-song-lyrics song_lyrics.csv -r-track-artist r_track_artist.csv \\\n")
		fmt.Fprintf(stderr, "    -tracks tracks.csv -output result.csv -keywords love -keywords dance\n")
	}

	if err := fs.Parse(args); err != nil {
		return runConfig{}, false, err
	}
	if fs.NArg() > 0 {
		return runConfig{}, false, fmt.Errorf("unexpected argument %q (use -keywords for each keyword)", fs.Arg(0))
	}

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return runConfig{}, false, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "artists":
			cfg.Inputs.Artists = *artists
		case "audio-features":
			cfg.Inputs.AudioFeatures = *audio
		case "genius-song-lyrics":
			cfg.Inputs.GeniusSongLyrics = *lyrics
		case "r-track-artist":
			cfg.Inputs.RTrackArtist = *links
		case "tracks":
			cfg.Inputs.Tracks = *tracks
		case "output":
			cfg.Output = *out
		case "min-views":
			cfg.MinViews = *minViews
		case "format":
			cfg.Format = *format
		case "limit":
			cfg.Limit = *limit
		}
	})
	if len(keywords) > 0 {
		cfg.Keywords = []string(keywords)
	}

	if err := cfg.Validate(); err != nil {
		return runConfig{}, false, err
	}
	return runConfig{Config: cfg, verbose: *verbose}, *explain, nil
}
