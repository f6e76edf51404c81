package oscars

// FilterNominees restricts the cohort to the two comparison groups:
// award winners and true controls (performers who were never
// nominated).  Performers who were nominated but never won are dropped,
// since they are neither clearly exposed nor clearly unexposed.  The
// filter is idempotent.
func FilterNominees(subjects []Subject) []Subject {

	var keep []Subject
	for _, s := range subjects {
		if s.Winner || s.Nominations == 0 {
			keep = append(keep, s)
		}
	}

	return keep
}

// CohortCounts summarizes the composition of a cohort.
type CohortCounts struct {
	Total    int
	Winners  int
	Nominees int
	Controls int
	Deaths   int
}

// Counts tallies the composition of the given cohort.
func Counts(subjects []Subject) CohortCounts {

	var c CohortCounts
	c.Total = len(subjects)
	for _, s := range subjects {
		switch {
		case s.Winner:
			c.Winners++
		case s.Nominations > 0:
			c.Nominees++
		default:
			c.Controls++
		}
		if s.Died {
			c.Deaths++
		}
	}

	return c
}
