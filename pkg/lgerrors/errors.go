// Package lgerrors holds the sentinel errors the core raises, so callers can
// distinguish "this run cannot proceed" conditions with errors.Is instead of
// string matching.
package lgerrors

import "errors"

var (
	// ErrInvalidModelFile is returned when a serialized model fails its
	// magic-byte or version check.
	ErrInvalidModelFile = errors.New("logjuicer: invalid or incompatible model file")

	// ErrNoTrainingData is returned by Classifier.Train when the baseline
	// files yielded zero lines in total (counted before tokenization).
	ErrNoTrainingData = errors.New("logjuicer: no training data")

	// ErrNoTestData is returned by Classifier.Test when no target file
	// survived the File Iterator's filtering policy.
	ErrNoTestData = errors.New("logjuicer: no test data")

	// ErrUnreadableFile is returned when a source file could not be
	// opened or decompressed.
	ErrUnreadableFile = errors.New("logjuicer: unreadable file")

	// ErrNotFittedModel wraps the case where a target file's model has an
	// index with zero trained rows; Classifier.Test logs it and reports the
	// file as skipped rather than returning it.
	ErrNotFittedModel = errors.New("logjuicer: model not fitted")
)
