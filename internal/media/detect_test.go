package media

import (
	"strings"
	"testing"
)

func TestIsSupportedExtCoversPlayableFormats(t *testing.T) {
	for _, ext := range []string{".mp3", ".wav", ".flac", ".ogg", ".MP3", ".Flac"} {
		if !IsSupportedExt(ext) {
			t.Fatalf("expected %s to be supported", ext)
		}
	}
	for _, ext := range []string{".aac", ".m4a", ".txt", ""} {
		if IsSupportedExt(ext) {
			t.Fatalf("expected %s to be unsupported", ext)
		}
	}
}

func TestSupportedExtsListMatchesDetection(t *testing.T) {
	list := SupportedExtsList()
	for _, ext := range strings.Split(list, ", ") {
		if !IsSupportedExt(ext) {
			t.Fatalf("listed extension %q is not detected as supported", ext)
		}
	}
}
