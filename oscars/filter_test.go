package oscars

import "testing"

func testCohort() []Subject {
	return []Subject{
		{ID: "w1", Years: 20, Died: true, Winner: true, Nominations: 3, AwardYear: 5},
		{ID: "w2", Years: 15, Died: false, Winner: true, Nominations: 1, AwardYear: 2},
		{ID: "n1", Years: 18, Died: true, Winner: false, Nominations: 2},
		{ID: "n2", Years: 10, Died: false, Winner: false, Nominations: 1},
		{ID: "c1", Years: 12, Died: true, Winner: false, Nominations: 0},
		{ID: "c2", Years: 8, Died: false, Winner: false, Nominations: 0},
		{ID: "c3", Years: 25, Died: true, Winner: false, Nominations: 0},
	}
}

func TestFilterNominees(t *testing.T) {

	subjects := testCohort()

	kept := FilterNominees(subjects)
	if len(kept) != 5 {
		t.Fatalf("kept: got %d, want 5", len(kept))
	}
	for _, s := range kept {
		if !s.Winner && s.Nominations > 0 {
			t.Errorf("subject %s should have been dropped", s.ID)
		}
	}

	// Idempotence
	again := FilterNominees(kept)
	if len(again) != len(kept) {
		t.Errorf("second pass changed the cohort: %d != %d", len(again), len(kept))
	}
}

func TestCounts(t *testing.T) {

	c := Counts(testCohort())

	if c.Total != 7 {
		t.Errorf("total: got %d, want 7", c.Total)
	}
	if c.Winners != 2 {
		t.Errorf("winners: got %d, want 2", c.Winners)
	}
	if c.Nominees != 2 {
		t.Errorf("nominees: got %d, want 2", c.Nominees)
	}
	if c.Controls != 3 {
		t.Errorf("controls: got %d, want 3", c.Controls)
	}
	if c.Deaths != 4 {
		t.Errorf("deaths: got %d, want 4", c.Deaths)
	}
}
