package tagger

import (
	"strconv"

	flac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
)

func writeFLAC(path string, f fields, art *Artwork) error {
	file, err := flac.ParseFile(path)
	if err != nil {
		return err
	}

	kept := make([]*flac.MetaDataBlock, 0, len(file.Meta))
	for _, block := range file.Meta {
		if block.Type == flac.VorbisComment || (art != nil && block.Type == flac.Picture) {
			continue
		}
		kept = append(kept, block)
	}
	file.Meta = kept

	cmt := flacvorbis.New()
	add := func(key, value string) {
		if value != "" {
			_ = cmt.Add(key, value)
		}
	}
	add(flacvorbis.FIELD_TITLE, f.Title)
	add(flacvorbis.FIELD_ARTIST, f.Artist)
	add(flacvorbis.FIELD_ALBUM, f.Album)
	add("ALBUMARTIST", f.AlbumArtist)
	if f.Track > 0 {
		add(flacvorbis.FIELD_TRACKNUMBER, strconv.Itoa(f.Track))
	}
	if f.Disc > 0 {
		add("DISCNUMBER", strconv.Itoa(f.Disc))
	}
	add(flacvorbis.FIELD_DATE, f.Year)
	add("ISRC", f.ISRC)
	add("COMMENT", f.Comment)
	block := cmt.Marshal()
	file.Meta = append(file.Meta, &block)

	if art != nil {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Cover", art.Data, art.MIME)
		if err == nil {
			picBlock := pic.Marshal()
			file.Meta = append(file.Meta, &picBlock)
		}
	}
	return file.Save(path)
}
