package survival

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func data1() Dataset {

	da := [][]Dtype{
		{1, 1, 2, 3, 3, 4},
		{1, 1, 0, 0, 1, 0},
		{4, 2, 5, 6, 6, 5},
	}

	return NewDataset(da, []string{"Time", "Status", "X"})
}

func data2() Dataset {

	da := [][]Dtype{
		{0, 1, 0, 1, 3, 2, 1, 2, 1, 3, 5},
		{1, 2, 4, 5, 4, 5, 6, 4, 6, 4, 8},
		{1, 1, 0, 1, 1, 0, 1, 1, 1, 0, 1},
		{4, 2, 3, 5, 1, 3, 5, 4, 2, 6, 6},
		{5, 2, 3, 1, 4, 2, 2, 5, 1, 8, 4},
	}

	return NewDataset(da, []string{"Entry", "Time", "Status", "X1", "X2"})
}

func data3() Dataset {

	da := [][]Dtype{
		{1, 1, 2, 3, 3, 4, 5, 5, 6, 7},
		{1, 1, 0, 0, 1, 0, 0, 1, 1, 1},
		{4, 2, 5, 6, 6, 5, 4, 3, 3, 5},
		{3, 2, 2, 0, 5, 4, 5, 6, 5, 4},
	}

	return NewDataset(da, []string{"Time", "Status", "X1", "X2"})
}

// Basic check of the risk set bookkeeping and the Breslow quantities,
// no entry times.
func TestPhregSimple(t *testing.T) {

	ph, err := NewPHReg(data1(), "Time", "Status", []string{"X"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if fmt.Sprintf("%v", ph.etimes) != "[1 3]" {
		t.Errorf("etimes: got %v", ph.etimes)
	}
	if fmt.Sprintf("%v", ph.enter) != "[[0 1 2 3 4 5] []]" {
		t.Errorf("enter: got %v", ph.enter)
	}
	if fmt.Sprintf("%v", ph.exit) != "[[0 1 2] [3 4]]" {
		t.Errorf("exit: got %v", ph.exit)
	}
	if fmt.Sprintf("%v", ph.event) != "[[0 1] [4]]" {
		t.Errorf("event: got %v", ph.event)
	}

	// From Python Statsmodels
	if math.Abs(ph.LogLike([]float64{2})-(-14.415134793348063)) > 1e-5 {
		t.Errorf("loglike at 2: got %v", ph.LogLike([]float64{2}))
	}
	if math.Abs(ph.LogLike([]float64{1})-(-8.9840993267811093)) > 1e-5 {
		t.Errorf("loglike at 1: got %v", ph.LogLike([]float64{1}))
	}

	score := make([]float64, 1)
	ph.Score([]float64{2}, score)
	if math.Abs(score[0]-(-5.66698338)) > 1e-5 {
		t.Errorf("score at 2: got %v", score[0])
	}
	ph.Score([]float64{1}, score)
	if math.Abs(score[0]-(-5.09729328)) > 1e-5 {
		t.Errorf("score at 1: got %v", score[0])
	}

	hess := make([]float64, 1)
	ph.Hessian([]float64{1}, hess)
	if math.Abs(hess[0]-(-0.93879427)) > 1e-5 {
		t.Errorf("hessian at 1: got %v", hess[0])
	}
}

// The score must vanish at the fitted coefficients.
func TestPhregFit(t *testing.T) {

	ph, err := NewPHReg(data3(), "Time", "Status", []string{"X1", "X2"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	rslt, err := ph.Fit()
	if err != nil {
		t.Fatal(err)
	}

	score := make([]float64, 2)
	ph.Score(rslt.Params(), score)
	for j := range score {
		if math.Abs(score[j]) > 1e-4 {
			t.Errorf("score[%d] at optimum: got %v", j, score[j])
		}
	}

	if rslt.StdErr() == nil {
		t.Errorf("standard errors not available")
	}
	for _, se := range rslt.StdErr() {
		if se <= 0 || math.IsNaN(se) {
			t.Errorf("bad standard error %v", se)
		}
	}

	lcb, ucb := rslt.HRConfInt(0.95)
	hr := rslt.HazardRatios()
	for j := range hr {
		if !(lcb[j] < hr[j] && hr[j] < ucb[j]) {
			t.Errorf("confidence bounds do not bracket the hazard ratio")
		}
	}

	// Smoke test
	_ = rslt.Summary()
}

// Entry times restrict the risk sets.
func TestPhregEntry(t *testing.T) {

	config := DefaultPHRegConfig()
	config.EntryVar = "Entry"

	ph, err := NewPHReg(data2(), "Time", "Status", []string{"X1", "X2"}, config)
	if err != nil {
		t.Fatal(err)
	}

	rslt, err := ph.Fit()
	if err != nil {
		t.Fatal(err)
	}

	score := make([]float64, 2)
	ph.Score(rslt.Params(), score)
	for j := range score {
		if math.Abs(score[j]) > 1e-4 {
			t.Errorf("score[%d] at optimum: got %v", j, score[j])
		}
	}
}

// Doubling every observation must leave the coefficient estimates
// unchanged.
func TestPhregReplicate(t *testing.T) {

	da := data3()

	var dup [][]Dtype
	for _, col := range da.Data() {
		dup = append(dup, append(append([]Dtype{}, col...), col...))
	}
	da2 := NewDataset(dup, da.Names())

	ph1, err := NewPHReg(da, "Time", "Status", []string{"X1", "X2"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ph2, err := NewPHReg(da2, "Time", "Status", []string{"X1", "X2"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	r1, err := ph1.Fit()
	if err != nil {
		t.Fatal(err)
	}
	r2, err := ph2.Fit()
	if err != nil {
		t.Fatal(err)
	}

	if !floats.EqualApprox(r1.Params(), r2.Params(), 1e-4) {
		t.Errorf("parameters changed under replication: %v != %v", r1.Params(), r2.Params())
	}
}

// A person-period layout of the same subjects must reproduce the
// single-row-per-subject fit exactly.  A row entering exactly at an
// event time is at risk only for later events, and a row whose
// (entry, exit] interval contains no event time never enters a risk
// set, so each subject is counted once per event time either way.
func TestPhregCountingProcess(t *testing.T) {

	// Subjects: an event at 2 (x=1), censoring at 3 (x=0, strictly
	// between the event times), an event at 5 (x=1).
	wide := NewDataset([][]Dtype{
		{2, 3, 5},
		{1, 0, 1},
		{1, 0, 1},
	}, []string{"Time", "Status", "X"})

	// The same subjects split into one row per unit interval.
	long := NewDataset([][]Dtype{
		{0, 1, 0, 1, 2, 0, 1, 2, 3, 4},
		{1, 2, 1, 2, 3, 1, 2, 3, 4, 5},
		{0, 1, 0, 0, 0, 0, 0, 0, 0, 1},
		{1, 1, 0, 0, 0, 1, 1, 1, 1, 1},
	}, []string{"Entry", "Time", "Status", "X"})

	phw, err := NewPHReg(wide, "Time", "Status", []string{"X"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	config := DefaultPHRegConfig()
	config.EntryVar = "Entry"
	phl, err := NewPHReg(long, "Time", "Status", []string{"X"}, config)
	if err != nil {
		t.Fatal(err)
	}

	if fmt.Sprintf("%v", phl.etimes) != "[2 5]" {
		t.Errorf("etimes: got %v", phl.etimes)
	}
	if fmt.Sprintf("%v", phl.enter) != "[[1 3 6] [9]]" {
		t.Errorf("enter: got %v", phl.enter)
	}
	if fmt.Sprintf("%v", phl.exit) != "[[1 3 6] [9]]" {
		t.Errorf("exit: got %v", phl.exit)
	}
	if fmt.Sprintf("%v", phl.event) != "[[1] [9]]" {
		t.Errorf("event: got %v", phl.event)
	}

	// Three subjects at risk at time 2, one at time 5.
	if math.Abs(phl.LogLike([]float64{0})-(-math.Log(3))) > 1e-10 {
		t.Errorf("loglike at 0: got %v", phl.LogLike([]float64{0}))
	}

	for _, b := range []float64{-1, -0.5, 0, 0.5, 1} {
		lw := phw.LogLike([]float64{b})
		ll := phl.LogLike([]float64{b})
		if math.Abs(lw-ll) > 1e-10 {
			t.Errorf("loglike at %v differs: wide %v, long %v", b, lw, ll)
		}

		sw := make([]float64, 1)
		sl := make([]float64, 1)
		phw.Score([]float64{b}, sw)
		phl.Score([]float64{b}, sl)
		if math.Abs(sw[0]-sl[0]) > 1e-10 {
			t.Errorf("score at %v differs: wide %v, long %v", b, sw[0], sl[0])
		}
	}
}

// Breslow baseline cumulative hazard, worked by hand at zero
// coefficients.
func TestPhregBaselineCumHaz(t *testing.T) {

	ph, err := NewPHReg(data1(), "Time", "Status", []string{"X"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	times, haz := ph.BaselineCumHaz([]float64{0})

	if !floats.EqualApprox(times, []float64{1, 3}, 1e-10) {
		t.Errorf("times: got %v", times)
	}

	// Two events among six at risk at t=1, one among three at t=3.
	want := []float64{2.0 / 6, 2.0/6 + 1.0/3}
	if !floats.EqualApprox(haz, want, 1e-10) {
		t.Errorf("cumulative hazard: got %v, want %v", haz, want)
	}
}

func TestPhregErrors(t *testing.T) {

	if _, err := NewPHReg(data1(), "NoSuchTime", "Status", []string{"X"}, nil); err == nil {
		t.Errorf("expected an error for a missing time variable")
	}
	if _, err := NewPHReg(data1(), "Time", "NoSuchStatus", []string{"X"}, nil); err == nil {
		t.Errorf("expected an error for a missing status variable")
	}
	if _, err := NewPHReg(data1(), "Time", "Status", []string{"Z"}, nil); err == nil {
		t.Errorf("expected an error for a missing predictor")
	}
	if _, err := NewPHReg(data1(), "Time", "Status", nil, nil); err == nil {
		t.Errorf("expected an error for no predictors")
	}
}
