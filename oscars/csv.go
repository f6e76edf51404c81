package oscars

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// The columns a subject file must provide.  Header matching is
// case-insensitive and order-independent.
var requiredColumns = []string{"id", "years", "died", "winner", "nominations", "award_year"}

// ParseCSV reads subject records from a delimited file.  All records
// are validated; a malformed or invalid row is reported with its row
// number rather than silently propagated into the expansion step.
func ParseCSV(r io.Reader) ([]Subject, error) {

	rd := csv.NewReader(r)
	rd.TrimLeadingSpace = true

	header, err := rd.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	pos := make(map[string]int)
	for j, na := range header {
		pos[strings.ToLower(strings.TrimSpace(na))] = j
	}

	for _, na := range requiredColumns {
		if _, ok := pos[na]; !ok {
			return nil, fmt.Errorf("missing required column '%s'", na)
		}
	}

	var subjects []Subject
	for row := 2; ; row++ {

		rec, err := rd.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		s, err := parseRow(rec, pos)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		subjects = append(subjects, s)
	}

	if len(subjects) == 0 {
		return nil, fmt.Errorf("no subject records found")
	}

	return subjects, nil
}

func parseRow(rec []string, pos map[string]int) (Subject, error) {

	get := func(name string) string {
		return strings.TrimSpace(rec[pos[name]])
	}

	getInt := func(name string) (int, error) {
		v, err := strconv.Atoi(get(name))
		if err != nil {
			return 0, fmt.Errorf("field '%s': %q is not an integer", name, get(name))
		}
		return v, nil
	}

	getBool := func(name string) (bool, error) {
		v, err := getInt(name)
		if err != nil {
			return false, err
		}
		if v != 0 && v != 1 {
			return false, fmt.Errorf("field '%s': expected 0 or 1, got %d", name, v)
		}
		return v == 1, nil
	}

	var s Subject
	var err error

	s.ID = get("id")
	if s.ID == "" {
		return s, fmt.Errorf("field 'id': empty")
	}

	if s.Years, err = getInt("years"); err != nil {
		return s, err
	}
	if s.Died, err = getBool("died"); err != nil {
		return s, err
	}
	if s.Winner, err = getBool("winner"); err != nil {
		return s, err
	}
	if s.Nominations, err = getInt("nominations"); err != nil {
		return s, err
	}

	// The award year may be empty for performers who never won.
	if get("award_year") == "" {
		if s.Winner {
			return s, fmt.Errorf("field 'award_year': empty for a winner")
		}
		s.AwardYear = 0
	} else if s.AwardYear, err = getInt("award_year"); err != nil {
		return s, err
	}

	return s, nil
}

// ReadFile reads subject records from a CSV file on disk.
func ReadFile(path string) ([]Subject, error) {

	fid, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fid.Close()

	subjects, err := ParseCSV(fid)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return subjects, nil
}

// WriteCSV writes subject records in the same format ParseCSV reads.
func WriteCSV(w io.Writer, subjects []Subject) error {

	cw := csv.NewWriter(w)

	if err := cw.Write(requiredColumns); err != nil {
		return err
	}

	b2i := func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	}

	for _, s := range subjects {
		rec := []string{
			s.ID,
			strconv.Itoa(s.Years),
			b2i(s.Died),
			b2i(s.Winner),
			strconv.Itoa(s.Nominations),
			strconv.Itoa(s.AwardYear),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
