// Package probe reads embedded titles from media files so reconciliation can
// label orphan artifacts with something better than the raw filename.
package probe

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
)

// Title returns the embedded title of the media file at path, if one exists.
// Unsupported formats, unreadable files, and missing tags all report false;
// the caller falls back to the filename.
func Title(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3Title(path)
	case ".flac":
		return flacTitle(path)
	default:
		return "", false
	}
}

func mp3Title(path string) (string, bool) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return "", false
	}
	defer tag.Close()

	title := strings.TrimSpace(tag.Title())
	return title, title != ""
}

func flacTitle(path string) (string, bool) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return "", false
	}

	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			continue
		}
		titles, err := cmt.Get(flacvorbis.FIELD_TITLE)
		if err != nil || len(titles) == 0 {
			continue
		}
		if title := strings.TrimSpace(titles[0]); title != "" {
			return title, true
		}
	}

	return "", false
}
