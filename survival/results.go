package survival

import (
	"fmt"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// PHResults contains the results of fitting a proportional hazards
// regression model.
type PHResults struct {
	model   *PHReg
	loglike float64
	params  []float64
	names   []string
	vcov    []float64

	stderr  []float64
	zscores []float64
	pvalues []float64
}

// Model returns the model that was fit.
func (rslt *PHResults) Model() *PHReg {
	return rslt.model
}

// Names returns the names of the covariates in the model.
func (rslt *PHResults) Names() []string {
	return rslt.names
}

// Params returns the point estimates of the model coefficients (log
// hazard ratios).
func (rslt *PHResults) Params() []float64 {
	return rslt.params
}

// LogLike returns the maximized log partial likelihood.
func (rslt *PHResults) LogLike() float64 {
	return rslt.loglike
}

// VCov returns the sampling variance/covariance matrix of the
// coefficient estimates, vectorized by row.
func (rslt *PHResults) VCov() []float64 {
	return rslt.vcov
}

// StdErr returns the standard errors of the coefficient estimates.
func (rslt *PHResults) StdErr() []float64 {

	if rslt.vcov == nil {
		return nil
	}
	if rslt.stderr != nil {
		return rslt.stderr
	}

	p := len(rslt.params)
	rslt.stderr = make([]float64, p)
	for i := range rslt.stderr {
		rslt.stderr[i] = math.Sqrt(rslt.vcov[i*p+i])
	}

	return rslt.stderr
}

// ZScores returns the coefficient estimates divided by their standard
// errors.
func (rslt *PHResults) ZScores() []float64 {

	if rslt.vcov == nil {
		return nil
	}
	if rslt.zscores != nil {
		return rslt.zscores
	}

	std := rslt.StdErr()
	rslt.zscores = make([]float64, len(std))
	for i := range std {
		rslt.zscores[i] = rslt.params[i] / std[i]
	}

	return rslt.zscores
}

// PValues returns two-sided p-values for the null hypothesis that each
// coefficient's population value is zero.
func (rslt *PHResults) PValues() []float64 {

	if rslt.vcov == nil {
		return nil
	}
	if rslt.pvalues != nil {
		return rslt.pvalues
	}

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	z := rslt.ZScores()
	rslt.pvalues = make([]float64, len(z))
	for i := range z {
		rslt.pvalues[i] = 2 * norm.CDF(-math.Abs(z[i]))
	}

	return rslt.pvalues
}

// HazardRatios returns the exponentiated coefficient estimates.
func (rslt *PHResults) HazardRatios() []float64 {

	hr := make([]float64, len(rslt.params))
	for i, b := range rslt.params {
		hr[i] = math.Exp(b)
	}

	return hr
}

// HRConfInt returns lower and upper confidence bounds for the hazard
// ratios at the given confidence level, e.g. 0.95.
func (rslt *PHResults) HRConfInt(level float64) ([]float64, []float64) {

	if rslt.vcov == nil {
		return nil, nil
	}

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	q := norm.Quantile(1 - (1-level)/2)

	std := rslt.StdErr()
	lcb := make([]float64, len(rslt.params))
	ucb := make([]float64, len(rslt.params))
	for i, b := range rslt.params {
		lcb[i] = math.Exp(b - q*std[i])
		ucb[i] = math.Exp(b + q*std[i])
	}

	return lcb, ucb
}

// Summary returns a string summarizing the fitted model.
func (rslt *PHResults) Summary() string {

	ph := rslt.model

	tw := table.NewWriter()
	tw.SetTitle("Proportional hazards regression analysis")
	tw.AppendHeader(table.Row{"Variable", "Coefficient", "SE", "HR", "LCB", "UCB", "Z-score", "P-value"})

	hr := rslt.HazardRatios()
	lcb, ucb := rslt.HRConfInt(0.95)

	for j, na := range rslt.names {
		row := table.Row{na, fmt.Sprintf("%.4f", rslt.params[j])}
		if rslt.vcov != nil {
			row = append(row,
				fmt.Sprintf("%.4f", rslt.StdErr()[j]),
				fmt.Sprintf("%.4f", hr[j]),
				fmt.Sprintf("%.4f", lcb[j]),
				fmt.Sprintf("%.4f", ucb[j]),
				fmt.Sprintf("%.4f", rslt.ZScores()[j]),
				fmt.Sprintf("%.4f", rslt.PValues()[j]))
		} else {
			row = append(row, "", fmt.Sprintf("%.4f", hr[j]), "", "", "", "")
		}
		tw.AppendRow(row)
	}

	foot := fmt.Sprintf("n=%d  events=%d  ties=Breslow", ph.NumObs(), ph.NumEvents())
	if ph.skipEarlyCensor > 0 {
		foot += fmt.Sprintf("  dropped=%d (censored before first event)", ph.skipEarlyCensor)
	}
	tw.AppendFooter(table.Row{foot})

	return tw.Render()
}

// vcov returns the sampling variance/covariance matrix of the
// coefficient estimates, obtained by inverting the negative Hessian at
// the estimates.
func vcov(ph *PHReg, params []float64) ([]float64, error) {

	nvar := ph.NumParams()
	hess := make([]float64, nvar*nvar)
	ph.Hessian(params, hess)

	hmat := mat.NewDense(nvar, nvar, hess)
	vc := make([]float64, nvar*nvar)
	vmat := mat.NewDense(nvar, nvar, vc)
	if err := vmat.Inverse(hmat); err != nil {
		return nil, fmt.Errorf("can't invert Hessian: %w", err)
	}
	vmat.Scale(-1, vmat)

	return vc, nil
}
