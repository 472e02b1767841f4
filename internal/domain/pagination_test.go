package domain

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacatalog/internal/core/apperror"
)

func TestPagination_Defaults(t *testing.T) {
	p := Pagination{}
	p.Normalize()

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 0, p.Offset())
	assert.NoError(t, p.Validate())
}

func TestPagination_Validate(t *testing.T) {
	tests := []struct {
		name string
		p    Pagination
		ok   bool
	}{
		{"max page size", Pagination{Page: 3, PageSize: 100}, true},
		{"page size too large", Pagination{Page: 1, PageSize: 101}, false},
		{"negative page", Pagination{Page: -1, PageSize: 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperror.IsValidation(err))
			}
		})
	}
}

func TestPagination_OffsetSaturates(t *testing.T) {
	tests := []struct {
		name string
		p    Pagination
		want int
	}{
		{"first page", Pagination{Page: 1, PageSize: 20}, 0},
		{"wraps to zero without guard", Pagination{Page: 1<<62 + 1, PageSize: 20}, math.MaxInt},
		{"wraps negative without guard", Pagination{Page: 461168601842738792, PageSize: 20}, math.MaxInt},
		{"largest page", Pagination{Page: math.MaxInt, PageSize: 1}, math.MaxInt - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Offset())
		})
	}
}

func TestListResult_TotalPages(t *testing.T) {
	p := Pagination{Page: 1, PageSize: 20}
	assert.Equal(t, 2, NewListResult([]int{}, 25, p).TotalPages())
	assert.Equal(t, 1, NewListResult([]int{}, 20, p).TotalPages())
	assert.Equal(t, 0, NewListResult([]int(nil), 0, p).TotalPages())
	assert.NotNil(t, NewListResult([]int(nil), 0, p).Items)
	assert.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())
}

func TestHookRegistry(t *testing.T) {
	reg := NewHookRegistry[string]()
	var calls []string
	reg.OnAfterWrite(func(_ context.Context, s string) error {
		calls = append(calls, s)
		return nil
	})
	reg.On(AfterDelete, func(context.Context, string) error { return errors.New("stop") })

	require.NoError(t, reg.Run(context.Background(), AfterCreate, "a"))
	require.NoError(t, reg.Run(context.Background(), AfterUpdate, "b"))
	assert.EqualError(t, reg.Run(context.Background(), AfterDelete, "c"), "stop")
	assert.Equal(t, []string{"a", "b", "c"}, calls)
}
