package driver

import (
	"time"

	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/sim"
)

// Presenter forwards driver output to the render and chart
// consumers after each frame. Charts are throttled.
type Presenter struct {
	Driver        *Driver
	Renderer      sim.SceneRenderer
	Charter       Charter
	ChartInterval time.Duration

	lastChart    time.Time
	chartPending bool
}

// NewPresenter creates a Presenter.
func NewPresenter(d *Driver) *Presenter {
	return &Presenter{Driver: d, ChartInterval: DefaultChartInterval}
}

// AddToLoop implements LoopAdder.
func (p *Presenter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(func(cc fx.ControlContext) error {
		p.Present(cc.Time())
		return nil
	}))
}

// Present consumes the dirty flags of the driver.
func (p *Presenter) Present(now time.Time) {
	render, charts := p.Driver.TakeDirty()
	if render && p.Renderer != nil {
		p.Renderer.Render(p.Driver.Scene())
	}
	if charts {
		p.chartPending = true
	}
	if !p.chartPending || p.Charter == nil {
		return
	}
	if !p.lastChart.IsZero() && now.Sub(p.lastChart) < p.ChartInterval {
		return
	}
	p.Charter.Chart(p.Driver.PlotWindow())
	p.lastChart, p.chartPending = now, false
}
