package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// dataset holds the CSV text of the five inputs
type dataset struct {
	artists, tracks, features, links, lyrics string
}

func baseDataset() dataset {
	return dataset{
		artists:  "id,name,followers\n1,Test Artist,100\n",
		tracks:   "id,name,explicit,popularity\n10,Test Song,false,50\n",
		features: "id,danceability,energy,tempo,valence\n10,0.5,0.5,120,0.3\n",
		links:    "track_id,artist_id\n10,1\n",
		lyrics:   "title,tag,artist,year,views,features,lyrics,id,language\nTest Song,pop,Test Artist,2020,2000,{},this has the word love in it,1,en\n",
	}
}

// write stores the dataset in dir and returns the input flags
func (d dataset) write(t *testing.T, dir string) []string {
	t.Helper()
	files := []struct {
		flag, name, data string
	}{
		{"-artists", "artists.csv", d.artists},
		{"-tracks", "tracks.csv", d.tracks},
		{"-audio-features", "audio_features.csv", d.features},
		{"-r-track-artist", "r_track_artist.csv", d.links},
		{"-genius-song-lyrics", "song_lyrics.csv", d.lyrics},
	}

	var args []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.data), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", f.name, err)
		}
		args = append(args, f.flag, path)
	}
	return args
}

func runCommand(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "result.csv")
	args := append(baseDataset().write(t, dir), "-output", out, "-keywords", "love")

	code, _, stderr := runCommand(t, args...)
	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "artist_name,track_name,danceability,energy,track_id\n" +
		"test artist,test song,0.5,0.5,https://open.spotify.com/track/10\n"
	if string(data) != want {
		t.Errorf("output =\n%s\nwant\n%s", data, want)
	}

	for _, stage := range []string{stageArgs, stageLyrics, stageDance, stageResult, stageWriteOut} {
		if !strings.Contains(stderr, stage) {
			t.Errorf("stderr missing stage %q:\n%s", stage, stderr)
		}
	}
	if !strings.Contains(stderr, "run_id=") {
		t.Errorf("stderr missing run_id:\n%s", stderr)
	}
}

func TestRun_EmptyResults(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *dataset)
	}{
		{"views below minimum", func(d *dataset) {
			d.lyrics = strings.Replace(d.lyrics, ",2000,", ",500,", 1)
		}},
		{"lyrics artist unknown", func(d *dataset) {
			d.lyrics = strings.Replace(d.lyrics, "Test Artist", "Other Artist", 1)
		}},
		{"explicit track", func(d *dataset) {
			d.tracks = strings.Replace(d.tracks, "false", "true", 1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := baseDataset()
			tt.mutate(&d)
			dir := t.TempDir()
			out := filepath.Join(dir, "result.csv")
			args := append(d.write(t, dir), "-output", out, "-keywords", "love")

			if code, _, stderr := runCommand(t, args...); code != 0 {
				t.Fatalf("run() = %d, stderr:\n%s", code, stderr)
			}
			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != "artist_name,track_name,danceability,energy,track_id\n" {
				t.Errorf("output = %q, want header only", data)
			}
		})
	}
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name      string
		args      func(t *testing.T, dir string, d dataset) []string
		wantStage string
	}{
		{
			name: "missing output flag",
			args: func(t *testing.T, dir string, d dataset) []string {
				return d.write(t, dir)
			},
			wantStage: stageArgs,
		},
		{
			name: "unknown flag",
			args: func(t *testing.T, dir string, d dataset) []string {
				return []string{"-nope"}
			},
			wantStage: stageArgs,
		},
		{
			name: "positional argument",
			args: func(t *testing.T, dir string, d dataset) []string {
				return append(d.write(t, dir), "-output", filepath.Join(dir, "out.csv"), "extra")
			},
			wantStage: stageArgs,
		},
		{
			name: "missing lyrics file",
			args: func(t *testing.T, dir string, d dataset) []string {
				args := d.write(t, dir)
				for i := range args {
					if args[i] == "-genius-song-lyrics" {
						args[i+1] = filepath.Join(dir, "missing.csv")
					}
				}
				return append(args, "-output", filepath.Join(dir, "out.csv"))
			},
			wantStage: stageLyrics,
		},
		{
			name: "tracks without explicit column",
			args: func(t *testing.T, dir string, d dataset) []string {
				d.tracks = "id,name\n10,Test Song\n"
				return append(d.write(t, dir), "-output", filepath.Join(dir, "out.csv"))
			},
			wantStage: stageDance,
		},
		{
			name: "ragged links file",
			args: func(t *testing.T, dir string, d dataset) []string {
				d.links = "track_id,artist_id\n10\n"
				return append(d.write(t, dir), "-output", filepath.Join(dir, "out.csv"))
			},
			wantStage: stageResult,
		},
		{
			name: "output directory missing",
			args: func(t *testing.T, dir string, d dataset) []string {
				return append(d.write(t, dir), "-output", filepath.Join(dir, "no", "such", "out.csv"))
			},
			wantStage: stageWriteOut,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCommand(t, tt.args(t, t.TempDir(), baseDataset())...)
			if code != 1 {
				t.Fatalf("run() = %d, want 1", code)
			}
			if !strings.Contains(stderr, "Error: "+tt.wantStage+":") {
				t.Errorf("stderr should name stage %q:\n%s", tt.wantStage, stderr)
			}
		})
	}
}

func TestRun_ConfigFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	inputs := baseDataset().write(t, dir)
	out := filepath.Join(dir, "result.jsonl.gz")

	var yaml strings.Builder
	yaml.WriteString("inputs:\n")
	keys := map[string]string{
		"-artists":            "artists",
		"-tracks":             "tracks",
		"-audio-features":     "audio_features",
		"-r-track-artist":     "r_track_artist",
		"-genius-song-lyrics": "genius_song_lyrics",
	}
	for i := 0; i < len(inputs); i += 2 {
		yaml.WriteString("  " + keys[inputs[i]] + ": " + inputs[i+1] + "\n")
	}
	yaml.WriteString("output: " + filepath.Join(dir, "ignored.csv") + "\n")
	yaml.WriteString("keywords: [hate]\n")
	yaml.WriteString("format: jsonl\n")

	cfgPath := filepath.Join(dir, "run.yaml")
	if err := os.WriteFile(cfgPath, []byte(yaml.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	// flags win over the file: output path and keywords
	code, _, stderr := runCommand(t, "-config", cfgPath, "-output", out, "-keywords", "word", "-keywords", "love")
	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(gz); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"artist_name":"test artist"`) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestRun_Explain(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "result.csv")
	args := append(baseDataset().write(t, dir), "-output", out, "-explain", "-keywords", "love")

	code, stdout, stderr := runCommand(t, args...)
	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{"SORT danceability DESC", "INNER JOIN ON [artist_name, track_name]", "SCAN song_lyrics"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("plan missing %q:\n%s", want, stdout)
		}
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("explain should not write output, stat error = %v", err)
	}
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := runCommand(t, "-h")
	if code != 0 {
		t.Errorf("run(-h) = %d, want 0", code)
	}
	if !strings.Contains(stderr, "-genius-song-lyrics") {
		t.Errorf("usage should list flags:\n%s", stderr)
	}
}
