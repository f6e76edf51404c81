// Package oscars implements the cohort pipeline of the Academy Award
// winners reanalysis: subject-level records, the nominee exclusion
// filter, the wide-to-long (person-period) expansion that carries a
// time-varying winner flag, and the paired naive/adjusted survival
// analyses whose comparison exposes immortal time bias.
package oscars
