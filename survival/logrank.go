package survival

import (
	"sort"

	"github.com/kshedden/dstream/dstream"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// LogRank performs a log-rank test comparing the survival distributions
// of two or more groups.  Entry times may be provided so that the test
// can be applied to left truncated (person-period) data.
type LogRank struct {

	// The data used to perform the test.
	data dstream.Dstream

	timeVar   string
	statusVar string
	groupVar  string
	entryVar  string

	timepos   int
	statuspos int
	grouppos  int
	entrypos  int

	// Sorted distinct group labels.
	groups []float64

	// Per-group tallies keyed by time.
	events []map[float64]float64
	total  []map[float64]float64
	entry  []map[float64]float64

	chisq  float64
	df     int
	pvalue float64
}

// NewLogRank creates a LogRank value for comparing survival between the
// levels of the given grouping variable.
func NewLogRank(data dstream.Dstream, timevar, statusvar, groupvar string) *LogRank {

	return &LogRank{
		data:      data,
		timeVar:   timevar,
		statusVar: statusvar,
		groupVar:  groupvar,
	}
}

// Entry specifies the name of an entry time variable.
func (lr *LogRank) Entry(entry string) *LogRank {
	lr.entryVar = entry
	return lr
}

// ChiSq returns the log-rank chi-square statistic.
func (lr *LogRank) ChiSq() float64 {
	return lr.chisq
}

// Df returns the degrees of freedom of the test.
func (lr *LogRank) Df() int {
	return lr.df
}

// PValue returns the p-value of the test.
func (lr *LogRank) PValue() float64 {
	return lr.pvalue
}

// NumGroups returns the number of distinct group labels in the data.
func (lr *LogRank) NumGroups() int {
	return len(lr.groups)
}

func (lr *LogRank) init() {

	lr.data.Reset()

	lr.timepos = -1
	lr.statuspos = -1
	lr.grouppos = -1
	lr.entrypos = -1

	for k, na := range lr.data.Names() {
		switch na {
		case lr.timeVar:
			lr.timepos = k
		case lr.statusVar:
			lr.statuspos = k
		case lr.groupVar:
			lr.grouppos = k
		case lr.entryVar:
			lr.entrypos = k
		}
	}

	if lr.timepos == -1 {
		panic("LogRank: time variable not found")
	}
	if lr.statuspos == -1 {
		panic("LogRank: status variable not found")
	}
	if lr.grouppos == -1 {
		panic("LogRank: group variable not found")
	}
	if lr.entryVar != "" && lr.entrypos == -1 {
		panic("LogRank: entry variable not found")
	}
}

func (lr *LogRank) groupIndex(g float64) int {

	for j, q := range lr.groups {
		if q == g {
			return j
		}
	}

	lr.groups = append(lr.groups, g)
	lr.events = append(lr.events, make(map[float64]float64))
	lr.total = append(lr.total, make(map[float64]float64))
	lr.entry = append(lr.entry, make(map[float64]float64))

	return len(lr.groups) - 1
}

func (lr *LogRank) scanData() {

	for lr.data.Next() {

		time := lr.data.GetPos(lr.timepos).([]float64)
		status := lr.data.GetPos(lr.statuspos).([]float64)
		group := lr.data.GetPos(lr.grouppos).([]float64)

		var entry []float64
		if lr.entrypos != -1 {
			entry = lr.data.GetPos(lr.entrypos).([]float64)
		}

		for i, t := range time {

			j := lr.groupIndex(group[i])

			if status[i] == 1 {
				lr.events[j][t]++
			}
			lr.total[j][t]++

			if lr.entrypos != -1 {
				if entry[i] >= t {
					panic("LogRank: entry times must be before the event/censoring time")
				}
				lr.entry[j][entry[i]]++
			}
		}
	}

	// A stable group order keeps the test reproducible.
	ord := make([]int, len(lr.groups))
	for i := range ord {
		ord[i] = i
	}
	sort.Slice(ord, func(a, b int) bool { return lr.groups[ord[a]] < lr.groups[ord[b]] })

	groups := make([]float64, len(ord))
	events := make([]map[float64]float64, len(ord))
	total := make([]map[float64]float64, len(ord))
	entry := make([]map[float64]float64, len(ord))
	for i, j := range ord {
		groups[i] = lr.groups[j]
		events[i] = lr.events[j]
		total[i] = lr.total[j]
		entry[i] = lr.entry[j]
	}
	lr.groups = groups
	lr.events = events
	lr.total = total
	lr.entry = entry
}

// riskSets returns the sorted distinct observation times, the per-group
// event counts, and the per-group risk set sizes at each time.
func (lr *LogRank) riskSets() ([]float64, [][]float64, [][]float64) {

	seen := make(map[float64]bool)
	for j := range lr.groups {
		for t := range lr.total[j] {
			seen[t] = true
		}
	}

	times := make([]float64, 0, len(seen))
	for t := range seen {
		times = append(times, t)
	}
	sort.Float64s(times)

	nEvents := make([][]float64, len(lr.groups))
	nRisk := make([][]float64, len(lr.groups))

	for j := range lr.groups {

		nEvents[j] = make([]float64, len(times))
		nRisk[j] = make([]float64, len(times))

		for i, t := range times {
			nEvents[j][i] = lr.events[j][t]
			nRisk[j][i] = lr.total[j][t]
		}
		rollback(nRisk[j])

		if lr.entrypos != -1 {
			ent := make([]float64, len(times))
			for t, w := range lr.entry[j] {
				ii := sort.SearchFloat64s(times, t)
				if ii < len(times) && t < times[ii] {
					ii--
				}
				if ii >= len(times) {
					ii = len(times) - 1
				}
				if ii >= 0 {
					ent[ii] += w
				}
			}
			rollback(ent)
			for i := range nRisk[j] {
				nRisk[j][i] -= ent[i]
			}
		}
	}

	return times, nEvents, nRisk
}

// Done runs the test.  The chi-square statistic has NumGroups()-1
// degrees of freedom.
func (lr *LogRank) Done() *LogRank {

	lr.init()
	lr.scanData()

	if len(lr.groups) < 2 {
		panic("LogRank: at least two groups are required")
	}

	times, nEvents, nRisk := lr.riskSets()

	// Observed minus expected event counts for the first k-1
	// groups, and their covariance.
	k := len(lr.groups)
	u := make([]float64, k-1)
	v := make([]float64, (k-1)*(k-1))

	for i := range times {

		var d, n float64
		for j := 0; j < k; j++ {
			d += nEvents[j][i]
			n += nRisk[j][i]
		}

		if d == 0 || n <= 1 {
			continue
		}

		c := d * (n - d) / (n - 1)
		for j1 := 0; j1 < k-1; j1++ {
			p1 := nRisk[j1][i] / n
			u[j1] += nEvents[j1][i] - d*p1
			for j2 := 0; j2 < k-1; j2++ {
				p2 := nRisk[j2][i] / n
				if j1 == j2 {
					v[j1*(k-1)+j2] += c * p1 * (1 - p1)
				} else {
					v[j1*(k-1)+j2] -= c * p1 * p2
				}
			}
		}
	}

	lr.df = k - 1

	if k == 2 {
		if v[0] > 0 {
			lr.chisq = u[0] * u[0] / v[0]
		}
	} else {
		vm := mat.NewDense(k-1, k-1, v)
		um := mat.NewVecDense(k-1, u)
		var x mat.VecDense
		if err := x.SolveVec(vm, um); err != nil {
			panic("LogRank: singular covariance matrix")
		}
		lr.chisq = mat.Dot(um, &x)
	}

	chi2 := distuv.ChiSquared{K: float64(lr.df)}
	lr.pvalue = chi2.Survival(lr.chisq)

	return lr
}
