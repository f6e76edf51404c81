package survival

import (
	"fmt"
	"log"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// PHReg describes a proportional hazards regression model for right
// censored data.  Entry times may be provided, in which case the data
// are treated as left truncated.  Person-period records with one row
// per (subject, interval) are supported through the entry times: a row
// with entry time a and event/censoring time b is in the risk set only
// for event times in (a, b].  Ties are resolved with the Breslow
// method.
type PHReg struct {

	// The names of the variables.  The order agrees with the order
	// of 'data'.
	varnames []string

	// The data to which the model is fit.
	data [][]Dtype

	// Starting values, optional.
	start []float64

	// Positions of the time, status and entry time variables.
	timepos   int
	statuspos int
	entrypos  int

	// The positions of the covariates in the data.
	xpos []int

	// The sorted distinct times at which events occur.
	etimes []float64

	// enter[j] are the row indices that enter the risk set at the
	// jth distinct event time.
	enter [][]int

	// event[j] are the row indices that have an event at the jth
	// distinct event time.
	event [][]int

	// exit[j] are the row indices that exit the risk set at the
	// jth distinct event time.
	exit [][]int

	// The sum of covariates over rows with events.
	sumx []float64

	// If skip[i] is true, row i never enters a risk set (censored
	// before the first event, or no event time falls in the row's
	// (entry, exit] interval).
	skip []bool

	// The number of rows that are skipped because they are
	// censored before the first event.
	skipEarlyCensor int

	// Optimization settings and method.
	optsettings *optimize.Settings
	optmethod   optimize.Method

	log *log.Logger
}

// PHRegConfig defines configuration parameters for a proportional
// hazards regression.
type PHRegConfig struct {

	// A logger to which diagnostic information is written.
	Log *log.Logger

	// Start contains starting values for the regression parameter
	// estimates.
	Start []float64

	// EntryVar is the name of a variable that defines entry (left
	// truncation) times.
	EntryVar string

	// OptMethod is the Gonum optimization method used to fit the
	// model.
	OptMethod optimize.Method

	// OptSettings configures the Gonum optimization routine.
	OptSettings *optimize.Settings
}

// DefaultPHRegConfig returns a default configuration struct for a
// proportional hazards regression.
func DefaultPHRegConfig() *PHRegConfig {

	return &PHRegConfig{
		OptMethod: &optimize.BFGS{
			Linesearcher: &optimize.MoreThuente{},
		},
	}
}

// NewPHReg returns a PHReg value that can be used to fit a proportional
// hazards regression model to the given dataset.
func NewPHReg(data Dataset, time, status string, predictors []string, config *PHRegConfig) (*PHReg, error) {

	if config == nil {
		config = DefaultPHRegConfig()
	}

	timepos := data.Pos(time)
	if timepos == -1 {
		return nil, fmt.Errorf("PHReg: time variable '%s' not found in dataset", time)
	}

	statuspos := data.Pos(status)
	if statuspos == -1 {
		return nil, fmt.Errorf("PHReg: status variable '%s' not found in dataset", status)
	}

	var xpos []int
	for _, xna := range predictors {
		xp := data.Pos(xna)
		if xp == -1 {
			return nil, fmt.Errorf("PHReg: predictor '%s' not found in dataset", xna)
		}
		xpos = append(xpos, xp)
	}
	if len(xpos) == 0 {
		return nil, fmt.Errorf("PHReg: at least one predictor is required")
	}

	entrypos := -1
	if config.EntryVar != "" {
		entrypos = data.Pos(config.EntryVar)
		if entrypos == -1 {
			return nil, fmt.Errorf("PHReg: entry variable '%s' not found in dataset", config.EntryVar)
		}
	}

	ph := &PHReg{
		data:        data.Data(),
		varnames:    data.Names(),
		timepos:     timepos,
		statuspos:   statuspos,
		entrypos:    entrypos,
		xpos:        xpos,
		start:       config.Start,
		log:         config.Log,
		optsettings: config.OptSettings,
		optmethod:   config.OptMethod,
	}

	ph.setupTimes()
	ph.setupCovs()

	return ph, nil
}

// NumObs returns the number of rows in the data set.
func (ph *PHReg) NumObs() int {
	return len(ph.data[0])
}

// NumParams returns the number of model parameters (regression
// coefficients).
func (ph *PHReg) NumParams() int {
	return len(ph.xpos)
}

// setupTimes builds the risk set bookkeeping: the sorted distinct event
// times, and for each event time the rows that enter the risk set, have
// an event, or exit the risk set there.
func (ph *PHReg) setupTimes() {

	time := ph.data[ph.timepos]
	status := ph.data[ph.statuspos]
	nobs := len(time)

	ph.skip = make([]bool, nobs)

	// Sorted distinct times where events occur
	var et []float64
	for i := 0; i < nobs; i++ {
		if time[i] < 0 {
			panic("PHReg: times cannot be negative")
		}
		switch status[i] {
		case 1:
			et = append(et, float64(time[i]))
		case 0:
		default:
			msg := fmt.Sprintf("PHReg: status variable '%s' has values other than 0 and 1",
				ph.varnames[ph.statuspos])
			panic(msg)
		}
	}

	if len(et) > 0 {
		sort.Float64s(et)
		j := 0
		for i := 1; i < len(et); i++ {
			if et[i] != et[j] {
				j++
				et[j] = et[i]
			}
		}
		et = et[0 : j+1]
	}
	ph.etimes = et

	ph.enter = make([][]int, len(et))
	ph.exit = make([][]int, len(et))
	ph.event = make([][]int, len(et))

	if len(et) == 0 {
		return
	}

	// The index of the last event time at which each row is at risk,
	// or -1 for rows that remain at risk past the last event.
	last := make([]int, nobs)
	for i := 0; i < nobs; i++ {
		ii := sort.SearchFloat64s(et, float64(time[i]))
		switch {
		case ii == len(et):
			// Censored after the last event, never exits
			last[i] = -1
		case et[ii] == float64(time[i]):
			// Event, or censored at an event time
			last[i] = ii
		case ii == 0:
			// Censored before the first event, never enters
			ph.skip[i] = true
			ph.skipEarlyCensor++
		default:
			// Censored between event times
			last[i] = ii - 1
		}
	}

	// The index of the first event time at which each row is at
	// risk.  A row with entry time a and event/censoring time b is
	// at risk exactly for event times in (a, b], so an entry equal
	// to an event time begins at the next event time, and a row
	// whose interval contains no event time is dropped.
	first := make([]int, nobs)
	if ph.entrypos != -1 {
		entry := ph.data[ph.entrypos]
		for i := 0; i < nobs; i++ {
			if ph.skip[i] {
				continue
			}
			t := entry[i]
			if t > time[i] {
				panic("PHReg: entry times may not occur after event or censoring times")
			}
			if t < 0 {
				panic("PHReg: entry times may not be negative")
			}
			ii := sort.SearchFloat64s(et, float64(t))
			if ii < len(et) && et[ii] == float64(t) {
				ii++
			}
			if ii == len(et) || (last[i] != -1 && ii > last[i]) {
				ph.skip[i] = true
				continue
			}
			first[i] = ii
		}
	}

	for i := 0; i < nobs; i++ {
		if ph.skip[i] {
			continue
		}
		ph.enter[first[i]] = append(ph.enter[first[i]], i)
		if last[i] != -1 {
			ph.exit[last[i]] = append(ph.exit[last[i]], i)
		}
		if status[i] == 1 {
			ph.event[last[i]] = append(ph.event[last[i]], i)
		}
	}
}

// setupCovs computes the sum of covariates over rows with events, which
// appears in the score function.
func (ph *PHReg) setupCovs() {

	status := ph.data[ph.statuspos]
	ph.sumx = make([]float64, len(ph.xpos))

	for j, k := range ph.xpos {
		x := ph.data[k]
		for i := range x {
			if !ph.skip[i] && status[i] == 1 {
				ph.sumx[j] += float64(x[i])
			}
		}
	}
}

// linpred fills lp with the linear predictor at the given parameter
// values.
func (ph *PHReg) linpred(params, lp []float64) {

	zero(lp)
	for j, k := range ph.xpos {
		x := ph.data[k]
		for i := range x {
			lp[i] += float64(x[i]) * params[j]
		}
	}
}

// LogLike returns the log partial likelihood at the given parameter
// values, using the Breslow method to resolve ties.
func (ph *PHReg) LogLike(params []float64) float64 {

	lp := make([]float64, ph.NumObs())
	ph.linpred(params, lp)

	// Any constant can be subtracted here due to invariance of the
	// partial likelihood.
	mx := floats.Max(lp)
	elp := make([]float64, len(lp))
	for i := range lp {
		lp[i] -= mx
		elp[i] = math.Exp(lp[i])
	}

	ql := float64(0)
	rlp := float64(0)
	for k := range ph.etimes {

		// Update for new entries
		for _, i := range ph.enter[k] {
			rlp += elp[i]
		}

		for _, i := range ph.event[k] {
			ql += lp[i]
		}
		ql -= float64(len(ph.event[k])) * math.Log(rlp)

		// Update for new exits
		for _, i := range ph.exit[k] {
			rlp -= elp[i]
		}
	}

	return ql
}

// Score fills score with the score vector of the log partial likelihood
// at the given parameter values.
func (ph *PHReg) Score(params, score []float64) {

	zero(score)
	copy(score, ph.sumx)

	lp := make([]float64, ph.NumObs())
	ph.linpred(params, lp)

	mx := floats.Max(lp)
	for i := range lp {
		lp[i] = math.Exp(lp[i] - mx)
	}

	rlp := float64(0)
	rlpv := make([]float64, len(ph.xpos))
	for k := range ph.etimes {

		// Update for new entries
		for _, i := range ph.enter[k] {
			rlp += lp[i]
			for j, q := range ph.xpos {
				rlpv[j] += lp[i] * float64(ph.data[q][i])
			}
		}

		d := float64(len(ph.event[k]))
		floats.AddScaledTo(score, score, -d/rlp, rlpv)

		// Update for new exits
		for _, i := range ph.exit[k] {
			rlp -= lp[i]
			for j, q := range ph.xpos {
				rlpv[j] -= lp[i] * float64(ph.data[q][i])
			}
		}
	}
}

// Hessian fills hess (vectorized by row) with the Hessian matrix of the
// log partial likelihood at the given parameter values.
func (ph *PHReg) Hessian(params, hess []float64) {

	zero(hess)

	lp := make([]float64, ph.NumObs())
	ph.linpred(params, lp)

	mx := floats.Max(lp)
	for i := range lp {
		lp[i] = math.Exp(lp[i] - mx)
	}

	p := len(ph.xpos)
	d1s := make([]float64, p)
	d2s := make([]float64, p*p)

	rlp := float64(0)
	for k := range ph.etimes {

		// Update for new entries
		for _, i := range ph.enter[k] {

			rlp += lp[i]

			for j1, k1 := range ph.xpos {
				x1 := ph.data[k1]
				d1s[j1] += lp[i] * float64(x1[i])
				for j2 := 0; j2 <= j1; j2++ {
					x2 := ph.data[ph.xpos[j2]]
					u := lp[i] * float64(x1[i]*x2[i])
					d2s[j1*p+j2] += u
					if j2 != j1 {
						d2s[j2*p+j1] += u
					}
				}
			}
		}

		d := float64(len(ph.event[k]))

		jj := 0
		for j1 := 0; j1 < p; j1++ {
			for j2 := 0; j2 < p; j2++ {
				hess[jj] -= d * d2s[j1*p+j2] / rlp
				hess[jj] += d * d1s[j1] * d1s[j2] / (rlp * rlp)
				jj++
			}
		}

		// Update for new exits
		for _, i := range ph.exit[k] {

			rlp -= lp[i]
			for j1, k1 := range ph.xpos {
				x1 := ph.data[k1]
				d1s[j1] -= lp[i] * float64(x1[i])
				for j2 := 0; j2 <= j1; j2++ {
					x2 := ph.data[ph.xpos[j2]]
					u := lp[i] * float64(x1[i]*x2[i])
					d2s[j1*p+j2] -= u
					if j2 != j1 {
						d2s[j2*p+j1] -= u
					}
				}
			}
		}
	}
}

// BaselineCumHaz returns the distinct event times and the Breslow
// estimator of the baseline cumulative hazard function at each of
// them, for the given parameter values.
func (ph *PHReg) BaselineCumHaz(params []float64) ([]float64, []float64) {

	lp := make([]float64, ph.NumObs())
	ph.linpred(params, lp)

	h0 := make([]float64, len(ph.event))

	elp := 0.0
	for k := range ph.etimes {

		// Update for new entries
		for _, i := range ph.enter[k] {
			elp += math.Exp(lp[i])
		}

		h0[k] = float64(len(ph.event[k])) / elp

		// Update for new exits
		for _, i := range ph.exit[k] {
			elp -= math.Exp(lp[i])
		}
	}

	h1 := make([]float64, len(h0))
	var s float64
	for i := range h0 {
		s += h0[i]
		h1[i] = s
	}

	return ph.etimes, h1
}

func zero(x []float64) {
	for i := range x {
		x[i] = 0
	}
}

func negative(x []float64) {
	for i := range x {
		x[i] *= -1
	}
}

// Fit fits the model to the data.
func (ph *PHReg) Fit() (*PHResults, error) {

	nvar := len(ph.xpos)

	if len(ph.etimes) == 0 {
		return nil, fmt.Errorf("PHReg: no events in the data")
	}

	if ph.start == nil {
		ph.start = make([]float64, nvar)
	}

	p := optimize.Problem{
		Func: func(x []float64) float64 {
			return -ph.LogLike(x)
		},
		Grad: func(grad, x []float64) {
			if len(grad) != len(x) {
				grad = make([]float64, len(x))
			}
			ph.Score(x, grad)
			negative(grad)
		},
	}

	if ph.optsettings == nil {
		ph.optsettings = &optimize.Settings{
			GradientThreshold: 1e-5,
		}
	}
	if ph.optmethod == nil {
		ph.optmethod = &optimize.BFGS{
			Linesearcher: &optimize.MoreThuente{},
		}
	}

	optrslt, err := optimize.Minimize(p, ph.start, ph.optsettings, ph.optmethod)
	if err != nil {
		return nil, fmt.Errorf("PHReg: optimization failed: %w", err)
	}
	if err = optrslt.Status.Err(); err != nil {
		return nil, fmt.Errorf("PHReg: optimization failed: %w", err)
	}

	params := make([]float64, len(optrslt.X))
	copy(params, optrslt.X)

	var xna []string
	for _, k := range ph.xpos {
		xna = append(xna, ph.varnames[k])
	}

	vcov, err := vcov(ph, params)
	if err != nil && ph.log != nil {
		ph.log.Printf("PHReg: %v", err)
	}

	return &PHResults{
		model:   ph,
		loglike: -optrslt.F,
		params:  params,
		names:   xna,
		vcov:    vcov,
	}, nil
}

// NumEvents returns the total number of events in the data.
func (ph *PHReg) NumEvents() int {
	var e int
	for _, ev := range ph.event {
		e += len(ev)
	}
	return e
}

// NumSkipEarlyCensor returns the number of rows dropped for being
// censored before the first event.
func (ph *PHReg) NumSkipEarlyCensor() int {
	return ph.skipEarlyCensor
}
