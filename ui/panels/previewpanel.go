package panels

import (
	goimage "image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// PreviewPanel shows the current image with the accepted pore boundaries
// drawn on it.
type PreviewPanel struct {
	image *canvas.Image
}

// NewPreviewPanel creates an empty preview.
func NewPreviewPanel() *PreviewPanel {
	img := canvas.NewImageFromImage(goimage.NewRGBA(goimage.Rect(0, 0, 1, 1)))
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(640, 480))
	return &PreviewPanel{image: img}
}

// Container returns the panel container.
func (pp *PreviewPanel) Container() fyne.CanvasObject {
	return pp.image
}

// Update replaces the displayed image.
func (pp *PreviewPanel) Update(img goimage.Image) {
	if img == nil {
		return
	}
	pp.image.Image = img
	pp.image.Refresh()
}
