package dto_test

import (
	"courtpay/shared/constant"
	"courtpay/shared/dto"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "equal with table",
			filter:    dto.Filter{Field: "status", Value: "PENDING", Operator: dto.FilterOperatorEq, Table: "bookings"},
			wantWhere: "bookings.status = :status",
			wantArgs:  map[string]any{"status": "PENDING"},
		},
		{
			name:      "strict less with arg name",
			filter:    dto.Filter{Field: "start_time", ArgName: "range_end", Value: "11:30:00", Operator: dto.FilterOperatorLess},
			wantWhere: "start_time < :range_end",
			wantArgs:  map[string]any{"range_end": "11:30:00"},
		},
		{
			name:      "strict greater",
			filter:    dto.Filter{Field: "end_time", ArgName: "range_start", Value: "10:00:00", Operator: dto.FilterOperatorGreater},
			wantWhere: "end_time > :range_start",
			wantArgs:  map[string]any{"range_start": "10:00:00"},
		},
		{
			name:      "is null",
			filter:    dto.Filter{Field: "expires_at", Operator: dto.FilterIsNull, Table: "bookings"},
			wantWhere: "bookings.expires_at IS NULL",
			wantArgs:  map[string]any{},
		},
		{
			name:      "unknown operator",
			filter:    dto.Filter{Field: "id", Operator: "between"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	t.Run("nested or group inside and group", func(t *testing.T) {
		group := dto.FilterGroup{
			Operator: dto.FilterGroupOperatorAnd,
			Filters: []any{
				dto.Filter{Field: "court_id", Value: "c1", Operator: dto.FilterOperatorEq},
				dto.FilterGroup{
					Operator: dto.FilterGroupOperatorOr,
					Filters: []any{
						dto.Filter{Field: "expires_at", Operator: dto.FilterIsNull},
						dto.Filter{Field: "expires_at", ArgName: "now", Value: "2024-06-15", Operator: dto.FilterOperatorGreater},
					},
				},
			},
		}

		where, args := group.GetWhereClause()

		assert.Equal(t, "(court_id = :court_id AND (expires_at IS NULL OR expires_at > :now))", where)
		assert.Equal(t, map[string]any{"court_id": "c1", "now": "2024-06-15"}, args)
	})

	t.Run("missing operator defaults to and", func(t *testing.T) {
		group := dto.FilterGroup{
			Filters: []any{
				dto.Filter{Field: "a", Value: 1, Operator: dto.FilterOperatorEq},
				dto.Filter{Field: "b", Value: 2, Operator: dto.FilterOperatorNotEq},
			},
		}

		where, _ := group.GetWhereClause()

		assert.Equal(t, "(a = :a AND b != :b)", where)
	})

	t.Run("empty group", func(t *testing.T) {
		group := dto.FilterGroup{}

		where, args := group.GetWhereClause()

		assert.Empty(t, where)
		assert.Empty(t, args)
	})
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		defaultRequest bool
		want           dto.QueryParams
	}{
		{
			name:  "all parameters",
			query: "?page=2&limit=50&sort_by=amount&sort_dir=asc",
			want:  dto.QueryParams{Page: 2, Limit: 50, SortBy: "amount", SortDir: dto.SortDirAsc},
		},
		{
			name:           "defaults",
			defaultRequest: true,
			want:           dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:  "no defaults",
			query: "",
			want:  dto.QueryParams{},
		},
		{
			name:           "invalid numbers fall back to defaults",
			query:          "?page=-1&limit=abc",
			defaultRequest: true,
			want:           dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:  "unknown direction is dropped",
			query: "?sort_by=created_at&sort_dir=sideways",
			want:  dto.QueryParams{SortBy: "created_at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/v1/bookings/b1/payments"+tt.query, nil)

			params := dto.QueryParams{}
			params.FromRequest(request, tt.defaultRequest)

			assert.Equal(t, tt.want, params)
		})
	}
}

func TestQueryParams_TotalPage(t *testing.T) {
	assert.Equal(t, 1, dto.QueryParams{Limit: 20}.TotalPage(0))
	assert.Equal(t, 1, dto.QueryParams{Limit: 20}.TotalPage(20))
	assert.Equal(t, 2, dto.QueryParams{Limit: 20}.TotalPage(21))
	assert.Equal(t, 1, dto.QueryParams{}.TotalPage(100))
}
