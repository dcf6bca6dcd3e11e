package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestProcessCoverJPEG(t *testing.T) {
	data := createTestJPEG(100, 150)
	cover, err := ProcessCover(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ProcessCover JPEG: %v", err)
	}
	if cover.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", cover.MIME)
	}
	if len(cover.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestProcessCoverPNG(t *testing.T) {
	data := createTestPNG(100, 150)
	cover, err := ProcessCover(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ProcessCover PNG: %v", err)
	}
	if cover.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg (always outputs JPEG), got %s", cover.MIME)
	}
}

func TestProcessCoverDownscales(t *testing.T) {
	data := createTestPNG(MaxDimension*2, MaxDimension)
	cover, err := ProcessCover(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ProcessCover: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(cover.Data))
	if err != nil {
		t.Fatalf("decoding processed cover: %v", err)
	}
	if img.Bounds().Dx() > MaxDimension || img.Bounds().Dy() > MaxDimension {
		t.Errorf("expected cover within %dpx, got %dx%d",
			MaxDimension, img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestProcessCoverRejectsGarbage(t *testing.T) {
	_, err := ProcessCover(bytes.NewReader([]byte("this is not an image")))
	if err == nil {
		t.Error("expected error for non-image data")
	}
}
