package urls

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ripmedia/internal/model"
)

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		url  string
		want model.Provider
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", model.ProviderYouTube},
		{"https://youtu.be/dQw4w9WgXcQ", model.ProviderYouTube},
		{"https://music.youtube.com/playlist?list=x", model.ProviderYouTube},
		{"https://WWW.YOUTUBE-NOCOOKIE.com/embed/x", model.ProviderYouTube},
		{"https://soundcloud.com/artist/track", model.ProviderSoundCloud},
		{"https://on.soundcloud.com/abc", model.ProviderSoundCloud},
		{"https://open.spotify.com/track/abc", model.ProviderSpotify},
		{"https://x.com/user/status/1", model.ProviderTwitter},
		{"https://fxtwitter.com/user/status/1", model.ProviderTwitter},
		{"https://example.com/video", model.ProviderUnknown},
		{"not a url", model.ProviderUnknown},
		{"", model.ProviderUnknown},
	}
	for _, tt := range tests {
		if got := DetectProvider(tt.url); got != tt.want {
			t.Errorf("DetectProvider(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "urls.txt")
	body := "# favourites\nhttps://youtu.be/a\n\n  https://soundcloud.com/b  \n#https://skip\n"
	if err := os.WriteFile(list, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ExpandArgs([]string{"https://open.spotify.com/track/x", list, dir})
	if err != nil {
		t.Fatalf("ExpandArgs: %v", err)
	}
	want := []string{"https://open.spotify.com/track/x", "https://youtu.be/a", "https://soundcloud.com/b", dir}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("a\r\n\n# c\n b \n")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected lines %v", got)
	}
}
