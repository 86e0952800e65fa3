// Package imageio provides enumeration and decoding of the raster images a
// batch run consumes. Each image is decoded once into both a Go image.Image
// (for UI display) and an OpenCV Mat (for the detection pipeline).
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// supportedExtensions lists the raster formats accepted as batch input.
var supportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsSupported reports whether the path has a supported image extension.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// ListImages returns the paths of the supported images in dir, sorted by
// filename so batch order is reproducible.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsSupported(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Image is one decoded input image. The Mat and the image.Image hold
// independent pixel copies; the Mat must be released with Close.
type Image struct {
	Path     string
	Filename string
	Mat      gocv.Mat
	Preview  image.Image
	Width    int
	Height   int
}

// Close releases the OpenCV-side pixel data.
func (im *Image) Close() {
	if im != nil && !im.Mat.Empty() {
		im.Mat.Close()
	}
}

// Load reads and decodes a single image file.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	preview, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s with OpenCV: %w", path, err)
	}
	if mat.Empty() {
		mat.Close()
		// TIFF and some BMP variants are not compiled into every OpenCV
		// build; fall back to re-encoding the stdlib decode as PNG.
		mat, err = matFromImage(preview)
		if err != nil {
			return nil, fmt.Errorf("failed to convert image %s: %w", path, err)
		}
	}

	bounds := preview.Bounds()
	return &Image{
		Path:     path,
		Filename: filepath.Base(path),
		Mat:      mat,
		Preview:  preview,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

func matFromImage(img image.Image) (gocv.Mat, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return gocv.NewMat(), err
	}
	return gocv.IMDecode(buf.Bytes(), gocv.IMReadColor)
}
