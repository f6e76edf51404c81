package oscars

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/kshedden/dstream/dstream"

	"github.com/mbounthavong/immortaltime/survival"
)

// LongTable is the person-period (counting process) form of the
// cohort: one row per subject and follow-up year.  Row t of a subject
// covers the interval (t-1, t].  The event flag is 1 only on the final
// row of a subject who died.  The winner flag is the time-varying
// exposure: 0 on a winner's rows before the award year, 1 from the
// award year onward, and constant 0 for controls.  The static
// ever-winner flag is carried on every row for reference.
type LongTable struct {
	ids    []string
	year   []float64
	entry  []float64
	exit   []float64
	event  []float64
	winner []float64
	ever   []float64
}

// Expand produces the person-period expansion of the cohort.  Every
// subject must pass validation; Expand rejects the whole input on the
// first invalid record so that an invalid follow-up time can never
// reach the models.
func Expand(subjects []Subject) (*LongTable, error) {

	if err := ValidateAll(subjects); err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}

	var n int
	for _, s := range subjects {
		n += s.Years
	}

	lt := &LongTable{
		ids:    make([]string, 0, n),
		year:   make([]float64, 0, n),
		entry:  make([]float64, 0, n),
		exit:   make([]float64, 0, n),
		event:  make([]float64, 0, n),
		winner: make([]float64, 0, n),
		ever:   make([]float64, 0, n),
	}

	for _, s := range subjects {

		var ever float64
		if s.Winner {
			ever = 1
		}

		for t := 1; t <= s.Years; t++ {

			var ev float64
			if s.Died && t == s.Years {
				ev = 1
			}

			// Time before the award is never credited to the
			// exposed arm.
			var w float64
			if s.Winner && t >= s.AwardYear {
				w = 1
			}

			lt.ids = append(lt.ids, s.ID)
			lt.year = append(lt.year, float64(t))
			lt.entry = append(lt.entry, float64(t-1))
			lt.exit = append(lt.exit, float64(t))
			lt.event = append(lt.event, ev)
			lt.winner = append(lt.winner, w)
			lt.ever = append(lt.ever, ever)
		}
	}

	return lt, nil
}

// NumRows returns the number of person-period rows.
func (lt *LongTable) NumRows() int {
	return len(lt.exit)
}

// IDs returns the subject identifier of each row.
func (lt *LongTable) IDs() []string {
	return lt.ids
}

// Dataset returns the table as a survival.Dataset with columns Entry,
// Time, Status, Winner, and EverWinner.
func (lt *LongTable) Dataset() survival.Dataset {

	da := [][]survival.Dtype{lt.entry, lt.exit, lt.event, lt.winner, lt.ever}
	names := []string{"Entry", "Time", "Status", "Winner", "EverWinner"}

	return survival.NewDataset(da, names)
}

// Dstream returns the table as a dstream with the same columns as
// Dataset.
func (lt *LongTable) Dstream() dstream.Dstream {

	var z [][]interface{}
	z = append(z, []interface{}{lt.entry})
	z = append(z, []interface{}{lt.exit})
	z = append(z, []interface{}{lt.event})
	z = append(z, []interface{}{lt.winner})
	z = append(z, []interface{}{lt.ever})
	names := []string{"Entry", "Time", "Status", "Winner", "EverWinner"}

	return dstream.NewFromArrays(z, names)
}

// GroupDstream returns the rows whose time-varying winner flag matches
// the given exposure, with Entry, Time and Status columns, for
// group-wise survival function estimation on the adjusted scale.
func (lt *LongTable) GroupDstream(exposed bool) dstream.Dstream {

	var target float64
	if exposed {
		target = 1
	}

	var entry, exit, event []float64
	for i, w := range lt.winner {
		if w == target {
			entry = append(entry, lt.entry[i])
			exit = append(exit, lt.exit[i])
			event = append(event, lt.event[i])
		}
	}

	var z [][]interface{}
	z = append(z, []interface{}{entry})
	z = append(z, []interface{}{exit})
	z = append(z, []interface{}{event})
	names := []string{"Entry", "Time", "Status"}

	return dstream.NewFromArrays(z, names)
}

// WriteCSV dumps the person-period table.
func (lt *LongTable) WriteCSV(w io.Writer) error {

	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"id", "year", "entry", "exit", "event", "winner", "ever_winner"}); err != nil {
		return err
	}

	f := func(x float64) string {
		return strconv.FormatFloat(x, 'g', -1, 64)
	}

	for i := range lt.exit {
		rec := []string{
			lt.ids[i],
			f(lt.year[i]),
			f(lt.entry[i]),
			f(lt.exit[i]),
			f(lt.event[i]),
			f(lt.winner[i]),
			f(lt.ever[i]),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
