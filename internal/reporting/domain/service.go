package domain

import (
	"context"
	"errors"
	"time"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrInvalidFormat = errors.New("invalid_format")

type MetricsRequest struct {
	BusinessType string
	Start        time.Time
	End          time.Time
}

// Document is an exported report file.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Service interface {
	Metrics(context.Context, MetricsRequest) (Metrics, error)
	// Today aggregates the current UTC day.
	Today(context.Context) (Metrics, error)
	Export(ctx context.Context, req MetricsRequest, format Format) (Document, error)
}
