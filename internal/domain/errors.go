package domain

import "errors"

var (
	// ErrDownload means the dataset could not be fetched this cycle.
	ErrDownload = errors.New("download failed")

	// ErrMalformedDocument means the payload is not well-formed XML or a tuple
	// line could not be decoded.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrEmptyDataset means the payload is missing or lacks a tuple block.
	ErrEmptyDataset = errors.New("dataset contains no features")

	// ErrAllNaNValues means every reading in the dataset is NaN.
	ErrAllNaNValues = errors.New("dataset values are all NaN")

	// ErrMisalignedSequence means the value and position blocks differ in length.
	ErrMisalignedSequence = errors.New("value and position sequences differ in length")

	// ErrUnknownStation means a position has no matching gml:Point feature.
	ErrUnknownStation = errors.New("position has no matching station")
)

// Outcome labels used in logs and metrics.
const (
	OutcomeOK                 = "ok"
	OutcomeDownloadError      = "download_error"
	OutcomeMalformedDocument  = "malformed_document"
	OutcomeEmptyDataset       = "empty_dataset"
	OutcomeAllNaN             = "all_nan"
	OutcomeMisalignedSequence = "misaligned_sequence"
	OutcomeUnknownStation     = "unknown_station"
	OutcomeError              = "error"
)

// Outcome classifies an ingestion or fetch error into a stable label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrDownload):
		return OutcomeDownloadError
	case errors.Is(err, ErrMalformedDocument):
		return OutcomeMalformedDocument
	case errors.Is(err, ErrEmptyDataset):
		return OutcomeEmptyDataset
	case errors.Is(err, ErrAllNaNValues):
		return OutcomeAllNaN
	case errors.Is(err, ErrMisalignedSequence):
		return OutcomeMisalignedSequence
	case errors.Is(err, ErrUnknownStation):
		return OutcomeUnknownStation
	default:
		return OutcomeError
	}
}
