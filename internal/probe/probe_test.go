package probe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

func TestTitleUnsupportedExtension(t *testing.T) {
	if _, ok := Title("whatever.html"); ok {
		t.Error("Expected no title for .html")
	}
	if _, ok := Title("clip.mp4"); ok {
		t.Error("Expected no title for .mp4")
	}
}

func TestTitleMissingFile(t *testing.T) {
	if _, ok := Title("does-not-exist.mp3"); ok {
		t.Error("Expected no title for a missing file")
	}
}

func TestTitleMP3(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")

	tag := id3v2.NewEmptyTag()
	tag.SetTitle("Embedded Song Title")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tag.WriteTo(f); err != nil {
		t.Fatalf("Failed to write ID3 tag: %v", err)
	}
	f.Close()

	title, ok := Title(path)
	if !ok {
		t.Fatal("Expected an embedded title")
	}
	if title != "Embedded Song Title" {
		t.Errorf("Expected 'Embedded Song Title', got %q", title)
	}
}

func TestTitleMP3NoTag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raw.mp3")
	if err := os.WriteFile(path, []byte{0xff, 0xfb, 0x90, 0x00}, 0644); err != nil {
		t.Fatal(err)
	}

	if title, ok := Title(path); ok {
		t.Errorf("Expected no title for untagged mp3, got %q", title)
	}
}

func TestTitleCorruptFLAC(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.flac")
	if err := os.WriteFile(path, []byte("not a flac stream"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, ok := Title(path); ok {
		t.Error("Expected no title for corrupt flac")
	}
}
