package tagger

import (
	"strconv"

	"github.com/bogem/id3v2/v2"
)

func writeID3(path string, f fields, art *Artwork) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	text := func(id, value string) {
		if value == "" {
			return
		}
		tag.DeleteFrames(id)
		tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
	}
	text("TIT2", f.Title)
	text("TPE1", f.Artist)
	text("TALB", f.Album)
	text("TPE2", f.AlbumArtist)
	if f.Track > 0 {
		text("TRCK", strconv.Itoa(f.Track))
	}
	if f.Disc > 0 {
		text("TPOS", strconv.Itoa(f.Disc))
	}
	text("TDRC", f.Year)
	text("TSRC", f.ISRC)

	if f.Comment != "" {
		tag.DeleteFrames(tag.CommonID("Comments"))
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "ripmedia",
			Text:        f.Comment,
		})
	}
	if art != nil {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    art.MIME,
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     art.Data,
		})
	}
	return tag.Save()
}
