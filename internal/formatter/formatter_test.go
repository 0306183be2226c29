package formatter

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tessera/internal/models"
	"github.com/desertthunder/tessera/internal/shared"
	tu "github.com/desertthunder/tessera/internal/testing"
)

func sampleExport() *models.PlaylistExport {
	return &models.PlaylistExport{
		Playlist: models.Playlist{
			ID:         "test123",
			Name:       "Test Playlist",
			Owner:      "Owner One",
			ImageURL:   "https://img.example/cover.jpg",
			TrackCount: 2,
		},
		Tracks: []models.Track{
			{Title: "Song One", Artists: "Artist One", ArtURL: "https://img.example/1.jpg", PlayURI: "spotify:track:1"},
			{Title: "Song, Two", Artists: "Artist Two, Guest", PlayURI: "spotify:track:2"},
		},
	}
}

type stubFetcher struct {
	data []byte
	err  error
	urls []string
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	s.urls = append(s.urls, url)
	return s.data, s.err
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", FormatJSON},
		{"JSON", FormatJSON},
		{"csv", FormatCSV},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"text", FormatText},
		{" txt ", FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("ParseFormat(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		_, err := ParseFormat("xml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Position,Title,Artists,Art URL,Play URI") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Song One,Artist One,https://img.example/1.jpg,spotify:track:1") {
			t.Errorf("CSV missing first record, got: %s", output)
		}
		if !strings.Contains(output, `2,"Song, Two","Artist Two, Guest",,spotify:track:2`) {
			t.Errorf("CSV did not quote fields with commas, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleExport(), "cover.jpg")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Test Playlist",
			"![Cover](cover.jpg)",
			"**Owner**: Owner One",
			"**Tracks**: 2",
			"## Tracks",
			"1. Artist One - Song One",
			"2. Artist Two, Guest - Song, Two",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdownWithoutCover", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleExport(), "")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if strings.Contains(string(data), "![Cover]") {
			t.Error("Markdown should not include a cover image")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		export := sampleExport()
		export.Tracks = append(export.Tracks, models.Track{Title: "Nameless"})

		data, err := ExportToText(export)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"Playlist: Test Playlist",
			"Owner: Owner One",
			"Tracks: 3",
			"1. Artist One - Song One",
			"3. Unknown Artist - Nameless",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Text missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("LikedSongs", func(t *testing.T) {
		tracks := sampleExport().Tracks
		export := LikedSongs(tracks)
		if export.Playlist.ID != LikedSongsID {
			t.Errorf("expected ID %q, got %q", LikedSongsID, export.Playlist.ID)
		}
		if export.Playlist.TrackCount != 2 || len(export.Tracks) != 2 {
			t.Errorf("expected 2 tracks, got %d/%d", export.Playlist.TrackCount, len(export.Tracks))
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "test123")
		result, err := WriteCSVExport(sampleExport(), base)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}
		if result.TracksFile != base+"_tracks.csv" {
			t.Errorf("unexpected tracks file %s", result.TracksFile)
		}
		if result.MetadataFile != base+"_metadata.json" {
			t.Errorf("unexpected metadata file %s", result.MetadataFile)
		}
		tu.AssertFileExists(t, result.TracksFile)

		var meta models.Playlist
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.MetadataFile)), &meta); err != nil {
			t.Fatalf("metadata is not valid JSON: %v", err)
		}
		if meta.Name != "Test Playlist" || meta.Owner != "Owner One" {
			t.Errorf("unexpected metadata: %+v", meta)
		}
	})

	t.Run("WriteCSVExportBadPath", func(t *testing.T) {
		_, err := WriteCSVExport(sampleExport(), filepath.Join(t.TempDir(), "missing", "dir", "x"))
		if err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})

	t.Run("WriteMarkdownExportWithCover", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "md")
		fetcher := &stubFetcher{data: []byte("jpeg bytes")}

		result, err := WriteMarkdownExport(context.Background(), sampleExport(), dir, fetcher)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		if len(result.Files) != 2 {
			t.Fatalf("expected 2 files, got %v", result.Files)
		}
		if result.CoverImage != filepath.Join(dir, "cover.jpg") {
			t.Errorf("unexpected cover path %s", result.CoverImage)
		}
		if len(fetcher.urls) != 1 || fetcher.urls[0] != "https://img.example/cover.jpg" {
			t.Errorf("unexpected fetches: %v", fetcher.urls)
		}
		readme := tu.MustReadFile(t, filepath.Join(dir, "README.md"))
		if !strings.Contains(readme, "![Cover](cover.jpg)") {
			t.Errorf("README missing cover reference:\n%s", readme)
		}
	})

	t.Run("WriteMarkdownExportCoverFailure", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "md")
		fetcher := &stubFetcher{err: errors.New("boom")}

		result, err := WriteMarkdownExport(context.Background(), sampleExport(), dir, fetcher)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		if len(result.Files) != 1 || result.CoverImage != "" {
			t.Errorf("expected only README, got %v", result.Files)
		}
		if _, err := os.Stat(filepath.Join(dir, "cover.jpg")); !os.IsNotExist(err) {
			t.Error("cover.jpg should not exist")
		}
	})

	t.Run("WriteMarkdownExportNoFetcher", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "md")
		result, err := WriteMarkdownExport(context.Background(), sampleExport(), dir, nil)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		tu.AssertDirExists(t, dir)
		if len(result.Files) != 1 {
			t.Errorf("expected 1 file, got %v", result.Files)
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		got, err := WriteTextExport(sampleExport(), path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		tu.AssertFileExists(t, path)
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		if _, err := WriteJSONExport(sampleExport(), path); err != nil {
			t.Fatalf("WriteJSONExport failed: %v", err)
		}

		var export models.PlaylistExport
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, path)), &export); err != nil {
			t.Fatalf("export is not valid JSON: %v", err)
		}
		if len(export.Tracks) != 2 || export.Tracks[0].PlayURI != "spotify:track:1" {
			t.Errorf("unexpected export: %+v", export)
		}
	})
}

func TestWriteExport(t *testing.T) {
	tests := []struct {
		format string
		files  []string
	}{
		{FormatJSON, []string{"test123.json"}},
		{FormatCSV, []string{"test123_tracks.csv", "test123_metadata.json"}},
		{FormatText, []string{"test123_tracks.txt"}},
		{FormatMarkdown, []string{filepath.Join("test123", "README.md")}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := t.TempDir()
			files, err := WriteExport(context.Background(), sampleExport(), tt.format, dir, nil)
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			if len(files) != len(tt.files) {
				t.Fatalf("expected %d files, got %v", len(tt.files), files)
			}
			for i, name := range tt.files {
				want := filepath.Join(dir, name)
				if files[i] != want {
					t.Errorf("file %d: expected %s, got %s", i, want, files[i])
				}
				tu.AssertFileExists(t, want)
			}
		})
	}

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := WriteExport(context.Background(), sampleExport(), "xml", t.TempDir(), nil)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	m := Manifest{
		ExportedAt:        time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Format:            FormatMarkdown,
		OutputDirectory:   "exports",
		TotalPlaylists:    2,
		SuccessfulExports: 1,
		FailedExports:     1,
		Playlists: []ManifestEntry{
			{PlaylistID: "p1", PlaylistName: "Success Playlist", Status: "success", Files: []string{"p1/README.md"}},
			{PlaylistID: "p2", PlaylistName: "Failed Playlist", Status: "failed", Error: "authentication failed"},
		},
	}

	if err := WriteManifest(m, path); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	content := tu.MustReadFile(t, path)
	for _, want := range []string{
		`"format": "markdown"`,
		`"total_playlists": 2`,
		`"failed_exports": 1`,
		`"status": "success"`,
		`"status": "failed"`,
		`"authentication failed"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("manifest missing %s:\n%s", want, content)
		}
	}

	t.Run("BadPath", func(t *testing.T) {
		if err := WriteManifest(m, filepath.Join(t.TempDir(), "nope", "m.json")); err == nil {
			t.Error("expected error")
		}
	})
}
