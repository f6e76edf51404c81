package oscars

import (
	"github.com/kshedden/dstream/dstream"

	"github.com/mbounthavong/immortaltime/survival"
)

// wideColumns converts subject-level records to float64 columns.
func wideColumns(subjects []Subject) (time, status, winner []float64) {

	time = make([]float64, len(subjects))
	status = make([]float64, len(subjects))
	winner = make([]float64, len(subjects))

	for i, s := range subjects {
		time[i] = float64(s.Years)
		if s.Died {
			status[i] = 1
		}
		if s.Winner {
			winner[i] = 1
		}
	}

	return time, status, winner
}

// WideDataset returns the subject-level cohort as a survival.Dataset
// with columns Time, Status, and Winner.  The Winner column is the
// static ever-winner flag, the grouping the naive analysis uses.
func WideDataset(subjects []Subject) survival.Dataset {

	time, status, winner := wideColumns(subjects)

	da := [][]survival.Dtype{time, status, winner}
	names := []string{"Time", "Status", "Winner"}

	return survival.NewDataset(da, names)
}

// WideDstream returns the subject-level cohort as a dstream with the
// same columns as WideDataset.
func WideDstream(subjects []Subject) dstream.Dstream {

	time, status, winner := wideColumns(subjects)

	var z [][]interface{}
	z = append(z, []interface{}{time})
	z = append(z, []interface{}{status})
	z = append(z, []interface{}{winner})
	names := []string{"Time", "Status", "Winner"}

	return dstream.NewFromArrays(z, names)
}

// WideGroupDstream returns the subject-level rows for one arm of the
// static grouping, with Time and Status columns.
func WideGroupDstream(subjects []Subject, winner bool) dstream.Dstream {

	var time, status []float64
	for _, s := range subjects {
		if s.Winner != winner {
			continue
		}
		time = append(time, float64(s.Years))
		if s.Died {
			status = append(status, 1)
		} else {
			status = append(status, 0)
		}
	}

	var z [][]interface{}
	z = append(z, []interface{}{time})
	z = append(z, []interface{}{status})
	names := []string{"Time", "Status"}

	return dstream.NewFromArrays(z, names)
}
