package survival

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SurvfuncPlotter draws one or more fitted survival functions as step
// functions on a common axis.
type SurvfuncPlotter struct {
	plt *plot.Plot

	labels []string
	lines  []*plotter.Line

	width  vg.Length
	height vg.Length
}

// NewSurvfuncPlotter returns a default SurvfuncPlotter.
func NewSurvfuncPlotter(title string) *SurvfuncPlotter {

	sp := &SurvfuncPlotter{
		width:  4,
		height: 4,
	}

	var err error
	sp.plt, err = plot.New()
	if err != nil {
		panic(err)
	}
	sp.plt.Title.Text = title

	return sp
}

// Width sets the width of the plot in inches.
func (sp *SurvfuncPlotter) Width(w float64) *SurvfuncPlotter {
	sp.width = vg.Length(w)
	return sp
}

// Height sets the height of the plot in inches.
func (sp *SurvfuncPlotter) Height(h float64) *SurvfuncPlotter {
	sp.height = vg.Length(h)
	return sp
}

// Add draws the given fitted survival function on the plot.
func (sp *SurvfuncPlotter) Add(sf *SurvfuncRight, label string) *SurvfuncPlotter {

	ti := sf.Time()
	pr := sf.SurvProb()

	m := len(ti)
	pts := make(plotter.XYs, 2*m+1)

	j := 0
	pts[j].X = 0
	pts[j].Y = 1
	j++

	for i := range ti {
		pts[j].X = ti[i]
		pts[j].Y = pts[j-1].Y
		j++
		pts[j].X = ti[i]
		pts[j].Y = pr[i]
		j++
	}

	sp.labels = append(sp.labels, label)

	line, err := plotter.NewLine(pts)
	if err != nil {
		panic(err)
	}
	line.Color = plotutil.Color(len(sp.lines))
	sp.lines = append(sp.lines, line)

	return sp
}

// Save lays out the plot and writes it to the given file.  The image
// format is inferred from the file extension.
func (sp *SurvfuncPlotter) Save(fname string) error {

	sp.plt.Y.Min = 0
	sp.plt.Y.Max = 1
	sp.plt.X.Label.Text = "Years of follow-up"
	sp.plt.Y.Label.Text = "Proportion alive"

	leg, err := plot.NewLegend()
	if err != nil {
		return err
	}

	for i := range sp.lines {
		sp.plt.Add(sp.lines[i])
		leg.Add(sp.labels[i], sp.lines[i])
	}

	if len(sp.lines) > 1 {
		leg.Top = false
		leg.Left = true
		sp.plt.Legend = leg
	}

	return sp.plt.Save(sp.width*vg.Inch, sp.height*vg.Inch, fname)
}
