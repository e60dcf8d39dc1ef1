package tagger

import (
	"context"
	"encoding/binary"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	flac "github.com/go-flac/go-flac"

	"ripmedia/internal/model"
	"ripmedia/internal/services"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n0000IHDR")

func sampleItem() model.Item {
	return model.Item{
		Provider:    model.ProviderSpotify,
		Kind:        model.KindTrack,
		Title:       "Song",
		Artist:      "Band",
		TrackNumber: 3,
		DiscNumber:  1,
		Year:        2019,
		Attribution: &model.Attribution{MetadataSource: model.ProviderSpotify, MediaSource: model.ProviderYouTube},
		Extra:       map[string]any{"spotify": map[string]any{"isrc": "USRC1"}},
	}
}

func TestTagUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.webm")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New().Tag(context.Background(), path, sampleItem(), nil)
	if !errors.Is(err, ErrUnsupported) || !errors.Is(err, services.ErrTag) {
		t.Fatalf("expected unsupported tag error, got %v", err)
	}
	if err.Error() != "Tagging not implemented for file type: .webm" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestTagMP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("not really audio frames"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := New().Tag(context.Background(), path, sampleItem(), &Artwork{Data: pngBytes, MIME: "image/png"})
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if !res.ArtworkEmbedded {
		t.Fatal("expected artwork embedded")
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()
	if tag.Title() != "Song" || tag.Artist() != "Band" || tag.Album() != "Song" {
		t.Fatalf("unexpected tags title=%q artist=%q album=%q", tag.Title(), tag.Artist(), tag.Album())
	}
	comments := tag.GetFrames(tag.CommonID("Comments"))
	if len(comments) != 1 {
		t.Fatalf("expected one comment frame, got %d", len(comments))
	}
	if cf, ok := comments[0].(id3v2.CommentFrame); !ok || cf.Text != "Metadata: spotify, Media source: youtube" {
		t.Fatalf("unexpected comment frame %#v", comments[0])
	}
	if pics := tag.GetFrames(tag.CommonID("Attached picture")); len(pics) != 1 {
		t.Fatalf("expected one picture, got %d", len(pics))
	}
}

// minimalFLAC is a stream marker plus one STREAMINFO block and no frames.
func minimalFLAC() []byte {
	out := []byte("fLaC")
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, 34)
	header[0] = 0x80 // last block, type STREAMINFO
	out = append(out, header...)
	return append(out, make([]byte, 34)...)
}

func TestTagFLAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.flac")
	if err := os.WriteFile(path, minimalFLAC(), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New().Tag(context.Background(), path, sampleItem(), &Artwork{Data: pngBytes, MIME: "image/png"}); err != nil {
		t.Fatalf("Tag: %v", err)
	}

	f, err := flac.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var comments, pictures int
	for _, b := range f.Meta {
		switch b.Type {
		case flac.VorbisComment:
			comments++
		case flac.Picture:
			pictures++
		}
	}
	if comments != 1 || pictures != 1 {
		t.Fatalf("expected one comment and one picture block, got %d and %d", comments, pictures)
	}
}

func TestTagFetchesArtwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("frames"), 0o644); err != nil {
		t.Fatal(err)
	}
	item := sampleItem()
	item.ArtworkURL = srv.URL + "/cover"
	res, err := New(WithHTTPClient(srv.Client())).Tag(context.Background(), path, item, nil)
	if err != nil || !res.ArtworkEmbedded {
		t.Fatalf("expected artwork embedded, res=%+v err=%v", res, err)
	}
}

func TestTagArtworkFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("frames"), 0o644); err != nil {
		t.Fatal(err)
	}
	item := sampleItem()
	item.ArtworkURL = srv.URL + "/cover"
	res, err := New(WithHTTPClient(srv.Client())).Tag(context.Background(), path, item, nil)
	if err != nil || res.ArtworkEmbedded {
		t.Fatalf("expected tags without artwork, res=%+v err=%v", res, err)
	}
}

func TestSniffImageMIME(t *testing.T) {
	tests := map[string]string{
		"\xff\xd8\xff\xe0":         "image/jpeg",
		"RIFF\x00\x00\x00\x00WEBP": "image/webp",
		"GIF89a..":                 "image/gif",
		"hello":                    "",
	}
	for in, want := range tests {
		if got := SniffImageMIME([]byte(in)); got != want {
			t.Errorf("SniffImageMIME(%q) = %q, want %q", in, got, want)
		}
	}
	if SniffImageMIME(pngBytes) != "image/png" {
		t.Fatal("expected png")
	}
}

func TestFieldsFor(t *testing.T) {
	item := sampleItem()
	item.Kind = model.KindVideo
	item.Attribution = nil
	f := fieldsFor(item)
	if f.Album != "" || f.Comment != "" || f.Year != "2019" || f.ISRC != "USRC1" {
		t.Fatalf("unexpected fields %+v", f)
	}
}
