package survival

import (
	"math"
	"testing"

	"github.com/kshedden/dstream/dstream"
)

func lrData(time, status, group []float64) dstream.Dstream {

	var z [][]interface{}
	z = append(z, []interface{}{time})
	z = append(z, []interface{}{status})
	z = append(z, []interface{}{group})
	na := []string{"Time", "Status", "Group"}

	return dstream.NewFromArrays(z, na)
}

// Two groups with identical survival experience have a statistic of
// exactly zero.
func TestLogRankNull(t *testing.T) {

	time := []float64{1, 2, 3, 4, 1, 2, 3, 4}
	status := []float64{1, 1, 0, 1, 1, 1, 0, 1}
	group := []float64{0, 0, 0, 0, 1, 1, 1, 1}

	lr := NewLogRank(lrData(time, status, group), "Time", "Status", "Group").Done()

	if lr.ChiSq() != 0 {
		t.Errorf("chi-square: got %v, expected 0", lr.ChiSq())
	}
	if lr.Df() != 1 {
		t.Errorf("df: got %d, expected 1", lr.Df())
	}
	if math.Abs(lr.PValue()-1) > 1e-10 {
		t.Errorf("p-value: got %v, expected 1", lr.PValue())
	}
}

// Worked by hand: group A dies at 1,2,3 and group B at 2,3,4 with no
// censoring.  The observed-minus-expected sum for A is 31/30 and its
// variance 749/900, giving chi-square 961/749.
func TestLogRankWorked(t *testing.T) {

	time := []float64{1, 2, 3, 2, 3, 4}
	status := []float64{1, 1, 1, 1, 1, 1}
	group := []float64{0, 0, 0, 1, 1, 1}

	lr := NewLogRank(lrData(time, status, group), "Time", "Status", "Group").Done()

	expected := 961.0 / 749.0
	if math.Abs(lr.ChiSq()-expected) > 1e-10 {
		t.Errorf("chi-square: got %v, expected %v", lr.ChiSq(), expected)
	}

	if lr.PValue() <= 0 || lr.PValue() >= 1 {
		t.Errorf("p-value out of range: %v", lr.PValue())
	}
}

// The statistic does not depend on which group is labeled 0.
func TestLogRankLabelSymmetry(t *testing.T) {

	time := []float64{1, 2, 3, 2, 3, 4, 5, 5}
	status := []float64{1, 1, 1, 1, 0, 1, 1, 0}
	group := []float64{0, 0, 0, 1, 1, 1, 0, 1}

	lr1 := NewLogRank(lrData(time, status, group), "Time", "Status", "Group").Done()

	flipped := make([]float64, len(group))
	for i, g := range group {
		flipped[i] = 1 - g
	}
	lr2 := NewLogRank(lrData(time, status, flipped), "Time", "Status", "Group").Done()

	if math.Abs(lr1.ChiSq()-lr2.ChiSq()) > 1e-10 {
		t.Errorf("chi-square changed under relabeling: %v != %v", lr1.ChiSq(), lr2.ChiSq())
	}
}

// Three groups exercise the matrix path.
func TestLogRankThreeGroups(t *testing.T) {

	time := []float64{1, 2, 3, 2, 3, 4, 3, 4, 5}
	status := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1}
	group := []float64{0, 0, 0, 1, 1, 1, 2, 2, 2}

	lr := NewLogRank(lrData(time, status, group), "Time", "Status", "Group").Done()

	if lr.Df() != 2 {
		t.Errorf("df: got %d, expected 2", lr.Df())
	}
	if lr.NumGroups() != 3 {
		t.Errorf("groups: got %d, expected 3", lr.NumGroups())
	}
	if lr.ChiSq() < 0 {
		t.Errorf("chi-square must be nonnegative, got %v", lr.ChiSq())
	}
	if lr.PValue() <= 0 || lr.PValue() > 1 {
		t.Errorf("p-value out of range: %v", lr.PValue())
	}
}
