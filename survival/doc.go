// Package survival provides the estimators used in the immortal time
// bias reanalysis: Kaplan-Meier survival function estimation, the
// log-rank test, restricted mean survival time, and Cox proportional
// hazards regression.  All estimators accept entry times so that they
// can be applied to counting-process (person-period) data with
// time-varying covariates.
package survival
