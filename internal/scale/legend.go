package scale

import (
	"fmt"
	"image"
	"regexp"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/otiai10/gosseract/v2"
)

// LegendReader recovers the scale reference directly from a micrograph when
// no calibration sidecar is available: it OCRs the printed legend (e.g.
// "30 mm") in the image footer and measures the scale bar's pixel length.
type LegendReader struct {
	client *gosseract.Client
}

// NewLegendReader creates an OCR-backed legend reader.
func NewLegendReader() (*LegendReader, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	// The legend is digits plus a unit, not prose; disable dictionary
	// correction so "30" is not rewritten into a word.
	_ = client.SetWhitelist("0123456789mµ .")
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &LegendReader{client: client}, nil
}

// Close releases OCR resources.
func (lr *LegendReader) Close() error {
	if lr.client != nil {
		return lr.client.Close()
	}
	return nil
}

var legendPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*mm`)

// footerFraction is the share of image height scanned for the legend strip.
const footerFraction = 0.15

// Read attempts to recover the scale reference from the image footer.
// Returns an error when no legend text or no measurable bar is found; both
// are expected for micrographs without a printed scale and are non-fatal to
// the caller.
func (lr *LegendReader) Read(src gocv.Mat) (Reference, error) {
	if src.Empty() {
		return Reference{}, fmt.Errorf("empty image")
	}

	rows, cols := src.Rows(), src.Cols()
	top := rows - int(float64(rows)*footerFraction)
	if top < 0 || top >= rows-1 {
		top = 0
	}

	footer := src.Region(image.Rect(0, top, cols, rows))
	defer footer.Close()

	knownMM, err := lr.readLegendText(footer)
	if err != nil {
		return Reference{}, err
	}

	pixels, err := measureBar(footer)
	if err != nil {
		return Reference{}, err
	}

	return Reference{KnownMM: knownMM, Pixels: pixels}, nil
}

func (lr *LegendReader) readLegendText(footer gocv.Mat) (float64, error) {
	gray := grayCopy(footer)
	defer gray.Close()

	// Otsu picks the text/background split without tuning
	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, binary)
	if err != nil {
		return 0, fmt.Errorf("failed to encode legend strip: %w", err)
	}
	defer buf.Close()

	if err := lr.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return 0, fmt.Errorf("failed to set OCR image: %w", err)
	}
	text, err := lr.client.Text()
	if err != nil {
		return 0, fmt.Errorf("OCR failed: %w", err)
	}

	m := legendPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("no scale legend found in footer text %q", text)
	}
	return strconv.ParseFloat(m[1], 64)
}

// measureBar finds the scale bar in the footer strip: the widest dark,
// strongly elongated connected region.
func measureBar(footer gocv.Mat) (float64, error) {
	gray := grayCopy(footer)
	defer gray.Close()

	// Bar and text are dark on light background; invert so they are
	// foreground for contour tracing
	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinaryInv+gocv.ThresholdOtsu)

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best := 0
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		w, h := rect.Dx(), rect.Dy()
		if h == 0 || w < 20 {
			continue
		}
		// The bar is much wider than tall; digits and ticks are not
		if float64(w)/float64(h) < 5 {
			continue
		}
		if w > best {
			best = w
		}
	}

	if best == 0 {
		return 0, fmt.Errorf("no scale bar found in footer")
	}
	return float64(best), nil
}

// grayCopy returns a single-channel copy of src. The caller owns the result.
func grayCopy(src gocv.Mat) gocv.Mat {
	if src.Channels() > 1 {
		gray := gocv.NewMat()
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
		return gray
	}
	return src.Clone()
}
