package oscars

import (
	"fmt"

	"github.com/mbounthavong/immortaltime/survival"
)

// ArmResult holds the four estimates for one treatment-definition arm
// of the comparison: Kaplan-Meier curves per group, the log-rank test,
// the restricted mean survival time difference, and the Cox hazard
// ratio for winning.
type ArmResult struct {

	// How the winner group was defined for this run.
	Label string

	// Kaplan-Meier curves for the unexposed and exposed groups.
	KMControl *survival.SurvfuncRight
	KMWinner  *survival.SurvfuncRight

	// Log-rank test between the groups.
	LogRankChiSq  float64
	LogRankPValue float64

	// Restricted mean survival time comparison (winner minus
	// control).
	RMST survival.RMSTDiffResult

	// Cox regression of death on the winner flag.
	Cox *survival.PHResults

	// Convenience values extracted from Cox.
	HR        float64
	HRLow     float64
	HRHigh    float64
	CoxPValue float64
}

// Comparison holds the naive and adjusted analyses side by side.  The
// naive arm classifies each winner as exposed for their entire
// follow-up, crediting the pre-award ("immortal") years to the exposed
// group.  The adjusted arm reassigns those years to the unexposed group
// through a time-varying flag on person-period data.
type Comparison struct {

	// Cohort composition before and after the nominee exclusion.
	Before, After CohortCounts

	// The number of never-winning nominees removed.
	Excluded int

	// The RMST horizon shared by both arms.
	Horizon float64

	// The number of person-period rows in the adjusted arm.
	NumExpandedRows int

	Naive    ArmResult
	Adjusted ArmResult
}

// Analyze runs the full paired analysis on the raw cohort.  A horizon
// of zero selects the largest observed follow-up time.
func Analyze(subjects []Subject, horizon float64) (*Comparison, error) {

	before := Counts(subjects)
	filtered := FilterNominees(subjects)

	if err := ValidateAll(filtered); err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no subjects remain after the nominee exclusion")
	}

	if horizon <= 0 {
		for _, s := range filtered {
			if float64(s.Years) > horizon {
				horizon = float64(s.Years)
			}
		}
	}

	cmp := &Comparison{
		Before:   before,
		After:    Counts(filtered),
		Excluded: before.Total - len(filtered),
		Horizon:  horizon,
	}

	var err error
	cmp.Naive, err = analyzeNaive(filtered, horizon)
	if err != nil {
		return nil, fmt.Errorf("naive analysis: %w", err)
	}

	lt, err := Expand(filtered)
	if err != nil {
		return nil, err
	}
	cmp.NumExpandedRows = lt.NumRows()

	cmp.Adjusted, err = analyzeAdjusted(lt, horizon)
	if err != nil {
		return nil, fmt.Errorf("adjusted analysis: %w", err)
	}

	return cmp, nil
}

func analyzeNaive(subjects []Subject, horizon float64) (ArmResult, error) {

	ar := ArmResult{Label: "ever-winner (static)"}

	ar.KMControl = survival.NewSurvfuncRight(WideGroupDstream(subjects, false), "Time", "Status").Done()
	ar.KMWinner = survival.NewSurvfuncRight(WideGroupDstream(subjects, true), "Time", "Status").Done()

	lr := survival.NewLogRank(WideDstream(subjects), "Time", "Status", "Winner").Done()
	ar.LogRankChiSq = lr.ChiSq()
	ar.LogRankPValue = lr.PValue()

	var err error
	ar.RMST, err = survival.RMSTDiff(ar.KMControl, ar.KMWinner, horizon)
	if err != nil {
		return ar, err
	}

	ph, err := survival.NewPHReg(WideDataset(subjects), "Time", "Status", []string{"Winner"}, nil)
	if err != nil {
		return ar, err
	}
	ar.Cox, err = ph.Fit()
	if err != nil {
		return ar, err
	}

	fillCox(&ar)
	return ar, nil
}

func analyzeAdjusted(lt *LongTable, horizon float64) (ArmResult, error) {

	ar := ArmResult{Label: "winner (time-varying)"}

	ar.KMControl = survival.NewSurvfuncRight(lt.GroupDstream(false), "Time", "Status").Entry("Entry").Done()
	ar.KMWinner = survival.NewSurvfuncRight(lt.GroupDstream(true), "Time", "Status").Entry("Entry").Done()

	lr := survival.NewLogRank(lt.Dstream(), "Time", "Status", "Winner").Entry("Entry").Done()
	ar.LogRankChiSq = lr.ChiSq()
	ar.LogRankPValue = lr.PValue()

	var err error
	ar.RMST, err = survival.RMSTDiff(ar.KMControl, ar.KMWinner, horizon)
	if err != nil {
		return ar, err
	}

	config := survival.DefaultPHRegConfig()
	config.EntryVar = "Entry"
	ph, err := survival.NewPHReg(lt.Dataset(), "Time", "Status", []string{"Winner"}, config)
	if err != nil {
		return ar, err
	}
	ar.Cox, err = ph.Fit()
	if err != nil {
		return ar, err
	}

	fillCox(&ar)
	return ar, nil
}

func fillCox(ar *ArmResult) {

	ar.HR = ar.Cox.HazardRatios()[0]
	if lcb, ucb := ar.Cox.HRConfInt(0.95); lcb != nil {
		ar.HRLow = lcb[0]
		ar.HRHigh = ucb[0]
	}
	if pv := ar.Cox.PValues(); pv != nil {
		ar.CoxPValue = pv[0]
	}
}
