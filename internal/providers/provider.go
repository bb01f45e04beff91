package providers

import (
	"context"

	"figaroflows/internal/flows"
	"figaroflows/internal/model"
)

// Provider serves annual flow sets from one dataset.
type Provider interface {
	Name() string
	AvailableYears(ctx context.Context) ([]int, error)
	FetchFlows(ctx context.Context, year int, opts flows.Options) ([]model.FlowRecord, error)
}
