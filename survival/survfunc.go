package survival

import (
	"fmt"
	"math"
	"sort"

	"github.com/kshedden/dstream/dstream"
)

// SurvfuncRight uses the method of Kaplan and Meier to estimate the
// survival distribution based on (possibly) right censored data.  Entry
// times may be provided, in which case the data are treated as left
// truncated, which is how person-period (counting process) records are
// handled: each row contributes only the interval between its entry and
// exit time to the risk sets.
type SurvfuncRight struct {

	// The data used to perform the estimation.
	data dstream.Dstream

	// The name of the variable containing the minimum of the
	// event time and censoring time.  The underlying data must
	// have float64 type.
	timeVar string

	// The name of a variable containing the status indicator,
	// which is 1 if the event occurred at the time given by
	// timeVar, and 0 otherwise.
	statusVar string

	// The name of a variable containing entry times, optional.
	entryVar string

	// Times at which events occur, sorted.
	times []float64

	// Number of events at each time in times.
	nEvents []float64

	// Number of people at risk just before each time in times.
	nRisk []float64

	// The estimated survival function evaluated at each time in times.
	survProb []float64

	// The standard errors for the estimates in survProb.
	survProbSE []float64

	events map[float64]float64
	total  map[float64]float64
	entry  map[float64]float64

	timepos   int
	statuspos int
	entrypos  int
}

// NewSurvfuncRight creates a new value for fitting a survival function
// to the given data.
func NewSurvfuncRight(data dstream.Dstream, timevar, statusvar string) *SurvfuncRight {

	return &SurvfuncRight{
		data:      data,
		timeVar:   timevar,
		statusVar: statusvar,
	}
}

// Entry specifies the name of an entry time variable.
func (sf *SurvfuncRight) Entry(entry string) *SurvfuncRight {
	sf.entryVar = entry
	return sf
}

// Time returns the times at which the survival function changes.
func (sf *SurvfuncRight) Time() []float64 {
	return sf.times
}

// NumRisk returns the number of people at risk at each time point
// where the survival function changes.
func (sf *SurvfuncRight) NumRisk() []float64 {
	return sf.nRisk
}

// NumEvents returns the number of events at each time point where the
// survival function changes.
func (sf *SurvfuncRight) NumEvents() []float64 {
	return sf.nEvents
}

// SurvProb returns the estimated survival probabilities at the points
// where the survival function changes.
func (sf *SurvfuncRight) SurvProb() []float64 {
	return sf.survProb
}

// SurvProbSE returns the standard errors of the estimated survival
// probabilities at the points where the survival function changes.
func (sf *SurvfuncRight) SurvProbSE() []float64 {
	return sf.survProbSE
}

// Quantile returns the smallest time at which the estimated survival
// probability falls to 1-p or below.  The second return value is false
// if the survival function never reaches 1-p.
func (sf *SurvfuncRight) Quantile(p float64) (float64, bool) {

	for i, pr := range sf.survProb {
		if pr <= 1-p {
			return sf.times[i], true
		}
	}

	return 0, false
}

// Median returns the estimated median survival time, if reached.
func (sf *SurvfuncRight) Median() (float64, bool) {
	return sf.Quantile(0.5)
}

func (sf *SurvfuncRight) init() {

	sf.events = make(map[float64]float64)
	sf.total = make(map[float64]float64)
	sf.entry = make(map[float64]float64)

	sf.data.Reset()

	sf.timepos = -1
	sf.statuspos = -1
	sf.entrypos = -1

	for k, na := range sf.data.Names() {
		switch na {
		case sf.timeVar:
			sf.timepos = k
		case sf.statusVar:
			sf.statuspos = k
		case sf.entryVar:
			sf.entrypos = k
		}
	}

	if sf.timepos == -1 {
		panic("SurvfuncRight: time variable not found")
	}
	if sf.statuspos == -1 {
		panic("SurvfuncRight: status variable not found")
	}
	if sf.entryVar != "" && sf.entrypos == -1 {
		panic("SurvfuncRight: entry variable not found")
	}
}

func (sf *SurvfuncRight) scanData() {

	for j := 0; sf.data.Next(); j++ {

		time := sf.data.GetPos(sf.timepos).([]float64)
		status := sf.data.GetPos(sf.statuspos).([]float64)

		var entry []float64
		if sf.entrypos != -1 {
			entry = sf.data.GetPos(sf.entrypos).([]float64)
		}

		for i, t := range time {

			if status[i] == 1 {
				sf.events[t]++
			}
			sf.total[t]++

			if sf.entrypos != -1 {
				if entry[i] >= t {
					msg := fmt.Sprintf("SurvfuncRight: entry time for observation %d in chunk %d is not before the event/censoring time", i, j)
					panic(msg)
				}
				sf.entry[entry[i]]++
			}
		}
	}
}

func rollback(x []float64) {
	var z float64
	for i := len(x) - 1; i >= 0; i-- {
		z += x[i]
		x[i] = z
	}
}

func (sf *SurvfuncRight) eventstats() {

	// Get the sorted distinct times (event or censoring)
	sf.times = make([]float64, len(sf.total))
	var i int
	for t := range sf.total {
		sf.times[i] = t
		i++
	}
	sort.Float64s(sf.times)

	// Get the event count and risk set size at each time point (in
	// the same order as times).
	sf.nEvents = make([]float64, len(sf.times))
	sf.nRisk = make([]float64, len(sf.times))
	for i, t := range sf.times {
		sf.nEvents[i] = sf.events[t]
		sf.nRisk[i] = sf.total[t]
	}
	rollback(sf.nRisk)

	// Adjust for entry times
	if sf.entrypos != -1 {
		entry := make([]float64, len(sf.times))
		for t, w := range sf.entry {
			ii := sort.SearchFloat64s(sf.times, t)
			if t < sf.times[ii] {
				ii--
			}
			if ii >= 0 {
				entry[ii] += w
			}
		}
		rollback(entry)
		for i := 0; i < len(sf.nRisk); i++ {
			sf.nRisk[i] -= entry[i]
		}
	}
}

// compress removes times where no events occurred.
func (sf *SurvfuncRight) compress() {

	var ix []int
	for i := 0; i < len(sf.times); i++ {
		// Only retain events, except for the last point,
		// which is retained even if there are no events.
		if sf.nEvents[i] > 0 || i == len(sf.times)-1 {
			ix = append(ix, i)
		}
	}

	if len(ix) < len(sf.times) {
		for i, j := range ix {
			sf.times[i] = sf.times[j]
			sf.nEvents[i] = sf.nEvents[j]
			sf.nRisk[i] = sf.nRisk[j]
		}
		sf.times = sf.times[0:len(ix)]
		sf.nEvents = sf.nEvents[0:len(ix)]
		sf.nRisk = sf.nRisk[0:len(ix)]
	}
}

func (sf *SurvfuncRight) fit() {

	sf.survProb = make([]float64, len(sf.times))
	x := float64(1)
	for i := range sf.times {
		x *= 1 - sf.nEvents[i]/sf.nRisk[i]
		sf.survProb[i] = x
	}

	// Greenwood standard errors
	sf.survProbSE = make([]float64, len(sf.times))
	x = 0
	for i := range sf.times {
		d := sf.nEvents[i]
		n := sf.nRisk[i]
		if n > d {
			x += d / (n * (n - d))
		}
		sf.survProbSE[i] = math.Sqrt(x) * sf.survProb[i]
	}
}

// Done indicates that the survival function has been configured and can
// now be fit.
func (sf *SurvfuncRight) Done() *SurvfuncRight {
	sf.init()
	sf.scanData()
	sf.eventstats()
	sf.compress()
	sf.fit()
	return sf
}
