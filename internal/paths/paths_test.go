package paths

import (
	"os"
	"path/filepath"
	"testing"

	"ripmedia/internal/model"
)

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`AC/DC: Back in Black?`, "AC_DC_ Back in Black_"},
		{"  spaced   out  ", "spaced out"},
		{"trailing dots...", "trailing dots"},
		{"tab\there", "tab_here"},
		{"", "unknown"},
		{" . ", "unknown"},
		{`a<b>c"d|e*f\g`, "a_b_c_d_e_f_g"},
	}
	for _, tt := range tests {
		if got := SanitizeSegment(tt.in); got != tt.want {
			t.Errorf("SanitizeSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := SanitizeSegment(SanitizeSegment(tt.in)); again != SanitizeSegment(tt.in) {
			t.Errorf("SanitizeSegment is not idempotent for %q", tt.in)
		}
	}
}

func TestSingleItemPlan(t *testing.T) {
	track := model.Item{Kind: model.KindTrack, Title: "Song", Artist: "Band"}
	if got := SingleItemPlan(track, "/out", "m4a").FinalPath(); got != filepath.Join("/out", "Band - Song.m4a") {
		t.Fatalf("unexpected track path %q", got)
	}
	video := model.Item{Kind: model.KindVideo, Title: "Clip", Artist: "Channel"}
	if got := SingleItemPlan(video, "/out", ".mp4").FinalPath(); got != filepath.Join("/out", "Clip.mp4") {
		t.Fatalf("unexpected video path %q", got)
	}
	if got := SingleItemPlan(model.Item{Kind: model.KindTrack}, "/out", "mp3").Stem; got != "unknown" {
		t.Fatalf("expected unknown stem, got %q", got)
	}
}

func TestCollectionDirectory(t *testing.T) {
	tests := []struct {
		item model.Item
		want string
	}{
		{model.Item{Kind: model.KindAlbum, Album: "Rumours", Title: "ignored"}, filepath.Join("/out", "Rumours")},
		{model.Item{Kind: model.KindAlbum, Title: "From Title"}, filepath.Join("/out", "From Title")},
		{model.Item{Kind: model.KindAlbum}, filepath.Join("/out", "unknown album")},
		{model.Item{Kind: model.KindPlaylist, Title: "Mix: 2024"}, filepath.Join("/out", "Mix_ 2024")},
		{model.Item{Kind: model.KindPlaylist}, filepath.Join("/out", "unknown playlist")},
		{model.Item{Kind: model.KindVideo, Title: "x"}, "/out"},
	}
	for _, tt := range tests {
		if got := CollectionDirectory(tt.item, "/out"); got != tt.want {
			t.Errorf("CollectionDirectory(%+v) = %q, want %q", tt.item, got, tt.want)
		}
	}
}

func TestCollectionEntryPlan(t *testing.T) {
	p := CollectionEntryPlan(model.Item{Title: "Go Your Own Way"}, "/out/Rumours", "m4a", 2)
	if got := p.FinalPath(); got != filepath.Join("/out/Rumours", "02 - Go Your Own Way.m4a") {
		t.Fatalf("unexpected entry path %q", got)
	}
	p = CollectionEntryPlan(model.Item{}, "/out", "mp4", 0)
	if p.Stem != "unknown" {
		t.Fatalf("expected unknown stem, got %q", p.Stem)
	}
}

func TestEnsureUnique(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Song.m4a")

	got, err := EnsureUnique(target)
	if err != nil || got != target {
		t.Fatalf("expected free path unchanged, got %q %v", got, err)
	}
	for _, name := range []string{"Song.m4a", "Song (1).m4a"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err = EnsureUnique(target)
	if err != nil {
		t.Fatalf("EnsureUnique: %v", err)
	}
	if want := filepath.Join(dir, "Song (2).m4a"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWithin(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "a", "b.mp3")
	if !Within(root, inside) || !Within(root, root) {
		t.Fatal("expected paths under root to be within")
	}
	if Within(root, filepath.Join(root, "..", "escape.mp3")) {
		t.Fatal("expected parent path to be rejected")
	}
	if Within(filepath.Join(root, "a"), filepath.Join(root, "ab", "x")) {
		t.Fatal("sibling prefix must not count as within")
	}
}
