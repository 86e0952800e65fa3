// Package panels provides UI panels for the application.
package panels

import (
	"fmt"

	"pore-profiler/internal/app"
	"pore-profiler/internal/pore"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ParamsPanel shows one slider per detection parameter. Slider changes go
// through the onChange callback; the panel never mutates state directly.
type ParamsPanel struct {
	state    *app.State
	onChange func(pore.Params)

	sliders map[pore.ParamKey]*widget.Slider
	values  map[pore.ParamKey]*widget.Label

	container *fyne.Container
}

// NewParamsPanel builds the slider stack from the parameter specs.
func NewParamsPanel(state *app.State, onChange func(pore.Params)) *ParamsPanel {
	pp := &ParamsPanel{
		state:    state,
		onChange: onChange,
		sliders:  make(map[pore.ParamKey]*widget.Slider),
		values:   make(map[pore.ParamKey]*widget.Label),
	}

	rows := make([]fyne.CanvasObject, 0, len(pore.ParamSpecs())*2)
	for _, spec := range pore.ParamSpecs() {
		spec := spec

		value := widget.NewLabel("")
		slider := widget.NewSlider(spec.Min, spec.Max)
		slider.Step = spec.Step
		slider.OnChanged = func(v float64) {
			p := pp.state.Params().WithValue(spec.Key, v)
			value.SetText(formatValue(spec, p.Value(spec.Key)))
			pp.onChange(p)
		}

		pp.sliders[spec.Key] = slider
		pp.values[spec.Key] = value

		rows = append(rows,
			container.NewBorder(nil, nil, widget.NewLabel(spec.Label), value),
			slider,
		)
	}

	reset := widget.NewButton("Reset Defaults", func() {
		p := pore.DefaultParams()
		pp.Refresh(p)
		pp.onChange(p)
	})
	rows = append(rows, reset)

	pp.container = container.NewVBox(rows...)
	pp.Refresh(state.Params())
	return pp
}

// Container returns the panel container.
func (pp *ParamsPanel) Container() fyne.CanvasObject {
	return container.NewVScroll(pp.container)
}

// Refresh moves every slider to the given parameter set without firing the
// change callback, used when parameters carry over to the next image.
func (pp *ParamsPanel) Refresh(p pore.Params) {
	for _, spec := range pore.ParamSpecs() {
		slider := pp.sliders[spec.Key]
		onChanged := slider.OnChanged
		slider.OnChanged = nil
		slider.SetValue(p.Value(spec.Key))
		slider.OnChanged = onChanged

		pp.values[spec.Key].SetText(formatValue(spec, p.Value(spec.Key)))
	}
}

func formatValue(spec pore.ParamSpec, v float64) string {
	if spec.Step >= 1 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.4g", v)
}
