package oscars

import "fmt"

// Subject describes one performer in the cohort.
type Subject struct {

	// Identifier for the performer.
	ID string

	// Years of follow-up from study entry to death or censoring.
	Years int

	// Indicator that the performer died during follow-up.
	Died bool

	// Indicator that the performer ever won an Academy Award.
	Winner bool

	// Number of Academy Award nominations received.
	Nominations int

	// Follow-up year in which the award was won, counted from
	// study entry.  Zero for performers who never won.
	AwardYear int
}

// Validate checks that the record can be analyzed.  Records that fail
// validation must be rejected before the person-period expansion: a
// non-positive follow-up time would produce an empty or negative-length
// expansion, and a winner without a usable award year cannot be
// assigned a time-varying exposure.
func (s Subject) Validate() error {

	if s.Years <= 0 {
		return fmt.Errorf("subject %s: follow-up time must be positive, got %d", s.ID, s.Years)
	}

	if s.Nominations < 0 {
		return fmt.Errorf("subject %s: nomination count cannot be negative, got %d", s.ID, s.Nominations)
	}

	if s.Winner {
		if s.AwardYear <= 0 {
			return fmt.Errorf("subject %s: winner has no award year", s.ID)
		}
		if s.AwardYear > s.Years {
			return fmt.Errorf("subject %s: award year %d is after the end of follow-up (%d years)",
				s.ID, s.AwardYear, s.Years)
		}
	}

	return nil
}

// ValidateAll validates every subject, returning the first failure.
func ValidateAll(subjects []Subject) error {

	for _, s := range subjects {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	return nil
}
