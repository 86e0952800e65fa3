// Command poretest runs pore detection on a single micrograph and prints
// the extracted metrics, for tuning defaults without the UI.
package main

import (
	"flag"
	"fmt"
	"os"

	"pore-profiler/internal/imageio"
	"pore-profiler/internal/logger"
	"pore-profiler/internal/meta"
	"pore-profiler/internal/pore"
	"pore-profiler/internal/scale"
	"pore-profiler/internal/stats"
)

func main() {
	imagePath := flag.String("image", "", "Path to micrograph (PNG, JPEG, BMP, or TIFF)")
	threshold := flag.Float64("threshold", pore.DefaultParams().BinaryThreshold, "Binary threshold")
	minArea := flag.Float64("min-area", pore.DefaultParams().MinContourArea, "Minimum contour area (px²)")
	minCirc := flag.Float64("min-circularity", pore.DefaultParams().MinCircularity, "Minimum circularity")
	readLegend := flag.Bool("legend", false, "OCR the scale-bar legend in the image footer")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: poretest -image <path> [-threshold 128] [-min-area 50] [-min-circularity 0.7] [-legend]")
		os.Exit(1)
	}

	img, err := imageio.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	defer img.Close()

	fmt.Printf("Loaded %s: %dx%d pixels\n", img.Filename, img.Width, img.Height)
	if m := meta.ParseFilename(img.Filename); m.Conforms() {
		fmt.Printf("Sample: %s  Composition: %s  Date: %s\n", m.Sample, m.Composition, m.Date.Format("2006-01-02"))
	}

	params := pore.DefaultParams()
	params.BinaryThreshold = *threshold
	params.MinContourArea = *minArea
	params.MinCircularity = *minCirc
	params = params.Sanitized()

	fmt.Printf("\nDetection parameters:\n")
	for _, spec := range pore.ParamSpecs() {
		fmt.Printf("  %-24s %g\n", spec.Label, params.Value(spec.Key))
	}

	if *readLegend {
		printLegend(img)
	}

	detector := pore.NewDetector(logger.NewConsole())
	result, err := detector.Detect(img.Mat, params, img.Filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nDetected %d pores (%d rejected, %d degenerate):\n",
		len(result.Records), result.Rejected, result.Degenerate)
	fmt.Printf("%-4s %12s %12s %12s %12s\n", "#", "Perimeter", "Area", "Circularity", "PoreFactor")
	for i, rec := range result.Records {
		fmt.Printf("%-4d %12.1f %12.1f %12.3f %12.3f\n",
			i+1, rec.PerimeterPx, rec.AreaPx, rec.Circularity, rec.PoreFactor)
	}

	fmt.Printf("\n%s\n", stats.Summarize(result.Records).String())
}

func printLegend(img *imageio.Image) {
	reader, err := scale.NewLegendReader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Legend reader unavailable: %v\n", err)
		return
	}
	defer reader.Close()

	ref, err := reader.Read(img.Mat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "No scale legend found: %v\n", err)
		return
	}
	fmt.Printf("\nScale legend: %g mm over %.1f px (%.2f px/mm)\n",
		ref.KnownMM, ref.Pixels, ref.PixelsPerMM())
}
