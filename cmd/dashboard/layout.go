package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	layoutadapters "quant_dashboard/internal/feature/layout/adapters"
	layoutentity "quant_dashboard/internal/feature/layout/domain/entity"
	layoutusecase "quant_dashboard/internal/feature/layout/usecase"
	"quant_dashboard/internal/platform/config"
	"quant_dashboard/internal/platform/events"
)

type geometryOutput struct {
	Viewport struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"viewport"`
	PanelHeight           int `yaml:"panel_height"`
	ChartFlexBasis        int `yaml:"chart_flex_basis"`
	FunctionSectionHeight int `yaml:"function_section_height"`
	RightPanelWidth       int `yaml:"right_panel_width"`
	LeftFlexBasis         int `yaml:"left_flex_basis"`
	DragEvents            int `yaml:"drag_events"`
}

type layoutOptions struct {
	width, height  int
	header         int
	function       int
	right          int
	functionTarget int
	rightTarget    int
}

func newLayoutCmd(cfg *config.ClientConfig) *cobra.Command {
	var o layoutOptions

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Simulate split drags for a viewport and print the clamped geometry",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogue, err := config.LoadCatalogue(cfg.CataloguePath)
			if err != nil {
				return err
			}
			out := simulateLayout(o, layoutentity.Constraints{
				MinFunctionHeight: catalogue.Layout.MinFunctionHeight,
				MinRightWidth:     catalogue.Layout.MinRightWidth,
				Divider:           catalogue.Layout.Divider,
				ActivationStrip:   catalogue.Layout.ActivationStrip,
			})
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(out)
		},
	}

	f := cmd.Flags()
	f.IntVar(&o.width, "width", 1440, "viewport width")
	f.IntVar(&o.height, "height", 900, "viewport height")
	f.IntVar(&o.header, "header", 56, "fixed header height")
	f.IntVar(&o.function, "function", 240, "initial function region height")
	f.IntVar(&o.right, "right", 320, "initial right panel width")
	f.IntVar(&o.functionTarget, "drag-function-to", 0, "drag the vertical split to this function height (0: no drag)")
	f.IntVar(&o.rightTarget, "drag-right-to", 0, "drag the horizontal split to this right panel width (0: no drag)")
	return cmd
}

// simulateLayout は指定のドラッグをポインター操作として再生します。
func simulateLayout(o layoutOptions, c layoutentity.Constraints) geometryOutput {
	vp := layoutentity.Viewport{Width: o.width, Height: o.height}
	view := layoutadapters.NewMemoryView(vp, o.header, o.function, o.right)
	bus := events.NewBus()

	var out geometryOutput
	unsub := bus.Subscribe(events.TopicDragResize, func(any) { out.DragEvents++ })
	defer unsub()

	m := layoutusecase.NewManager(view, bus, c)
	m.Init()

	if o.functionTarget > 0 {
		fr := view.FunctionRect()
		x, y := fr.X+fr.Width/2, fr.Y
		if m.PointerDown(x, y) == layoutentity.SplitVertical {
			m.PointerMove(x, y-(o.functionTarget-view.FunctionHeight()))
			m.PointerUp()
		}
	}
	if o.rightTarget > 0 {
		rr := view.RightRect()
		x, y := rr.X, rr.Y+rr.Height/2
		if m.PointerDown(x, y) == layoutentity.SplitHorizontal {
			m.PointerMove(x-(o.rightTarget-view.RightWidth()), y)
			m.PointerUp()
		}
	}

	g := m.Geometry()
	out.Viewport.Width, out.Viewport.Height = vp.Width, vp.Height
	out.PanelHeight = g.PanelHeight
	out.ChartFlexBasis = g.ChartFlexBasis
	out.FunctionSectionHeight = g.FunctionSectionHeight
	out.RightPanelWidth = g.RightPanelWidth
	out.LeftFlexBasis = g.LeftFlexBasis
	return out
}
