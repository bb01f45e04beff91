package store

import (
	"context"

	"figaroflows/internal/model"
)

type Store interface {
	ReplaceFlows(ctx context.Context, run model.Run, records []model.FlowRecord) error
	ListFlows(ctx context.Context, provider string, year int) ([]model.FlowRecord, error)
	ListYears(ctx context.Context, provider string) ([]int, error)
	Close() error
}

type NopStore struct{}

func (s *NopStore) ReplaceFlows(ctx context.Context, run model.Run, records []model.FlowRecord) error {
	_ = ctx
	_ = run
	_ = records
	return nil
}

func (s *NopStore) ListFlows(ctx context.Context, provider string, year int) ([]model.FlowRecord, error) {
	_ = ctx
	_ = provider
	_ = year
	return nil, nil
}

func (s *NopStore) ListYears(ctx context.Context, provider string) ([]int, error) {
	_ = ctx
	_ = provider
	return nil, nil
}

func (s *NopStore) Close() error {
	return nil
}
