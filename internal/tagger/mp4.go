package tagger

import (
	mp4tag "github.com/zhaarey/go-mp4tag"
)

func writeMP4(path string, f fields, art *Artwork) error {
	tags := &mp4tag.MP4Tags{
		Title:       f.Title,
		Artist:      f.Artist,
		Album:       f.Album,
		AlbumArtist: f.AlbumArtist,
		TrackNumber: int16(f.Track),
		DiscNumber:  int16(f.Disc),
		Date:        f.Year,
		Comment:     f.Comment,
		Custom:      map[string]string{},
	}
	if f.ISRC != "" {
		tags.Custom["ISRC"] = f.ISRC
	}
	if art != nil {
		tags.Pictures = []*mp4tag.MP4Picture{{Data: art.Data}}
	}

	mp4, err := mp4tag.Open(path)
	if err != nil {
		return err
	}
	defer mp4.Close()
	return mp4.Write(tags, []string{})
}
