package output

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(60 * x), G: uint8(100 * y), B: 17, A: 255})
		}
	}
	return img
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
		err      bool
	}{
		{"out.png", PNG, false},
		{"renders/frame.WEBP", WebP, false},
		{"a.b/frame.tga", TGA, false},
		{"frame.jpg", "", true},
		{"frame", "", true},
	}
	for _, tt := range tests {
		f, err := FormatFromPath(tt.path)
		if tt.err {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("%s: expected ErrUnknownFormat, got %v", tt.path, err)
			}
			continue
		}
		if err != nil || f != tt.expected {
			t.Errorf("%s: got %q, %v; expected %q", tt.path, f, err, tt.expected)
		}
	}
}

func samePixels(t *testing.T, got image.Image, want *image.RGBA) {
	t.Helper()
	if got.Bounds() != want.Bounds() {
		t.Fatalf("bounds %v, expected %v", got.Bounds(), want.Bounds())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			r, g, b, _ := got.At(x, y).RGBA()
			w := want.RGBAAt(x, y)
			if uint8(r>>8) != w.R || uint8(g>>8) != w.G || uint8(b>>8) != w.B {
				t.Fatalf("pixel (%d,%d) = %v, expected %v", x, y, got.At(x, y), w)
			}
		}
	}
}

func TestSave_PNGRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "frame.png")
	img := testImage()
	if err := Save(path, img); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	samePixels(t, decoded, img)
}

func TestEncode_TGARoundTrip(t *testing.T) {
	img := testImage()
	var buf bytes.Buffer
	if err := Encode(&buf, img, TGA); err != nil {
		t.Fatal(err)
	}
	decoded, err := tga.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	samePixels(t, decoded, img)
}

func TestEncode_WebPHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testImage(), WebP); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Errorf("output is not a RIFF WEBP container: % x", data[:min(len(data), 16)])
	}
}

func TestSave_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.bmp")
	if err := Save(path, testImage()); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("no file should be created for an unknown format")
	}
	if err := Encode(&bytes.Buffer{}, testImage(), Format("gif")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
