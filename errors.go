// Package repanalyzer processes multi-sensor exercise recordings into
// per-repetition feature tables. The root package holds the error taxonomy
// shared by the processing, alignment, segmentation and pipeline packages.
package repanalyzer

import "fmt"

// InvalidParameterError reports a misconfigured filter or threshold value.
// It is fatal for the run: bad parameters indicate a configuration problem,
// not a data problem.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// InsufficientDataError reports a signal or table too short to process.
// Trial-local: the assembler skips the trial and continues.
type InsufficientDataError struct {
	Op      string
	Samples int
	Needed  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %d samples, need at least %d", e.Op, e.Samples, e.Needed)
}

// MissingReferenceError reports an absent label file, device table or
// required channel. Fatal for the affected subject; processing continues
// for other subjects.
type MissingReferenceError struct {
	Subject string
	What    string
}

func (e *MissingReferenceError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("missing reference: %s", e.What)
	}
	return fmt.Sprintf("subject %s: missing reference: %s", e.Subject, e.What)
}

// AlignmentAmbiguousError reports that no repetition alignment is possible,
// typically because segmentation found zero repetitions. Trial-local.
type AlignmentAmbiguousError struct {
	Reason string
}

func (e *AlignmentAmbiguousError) Error() string {
	return fmt.Sprintf("alignment ambiguous: %s", e.Reason)
}
