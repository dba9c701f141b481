package shared_test

import (
	"courtpay/shared"
	"courtpay/shared/constant"
	"courtpay/shared/dto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCacheKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		parts  []string
		want   string
	}{
		{name: "prefix only", prefix: "limiter", want: "limiter"},
		{name: "with parts", prefix: "limiter", parts: []string{"10.0.0.1", "curl"}, want: "limiter:10.0.0.1:curl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.BuildCacheKey(tt.prefix, tt.parts...))
		})
	}
}

func TestTransformFields(t *testing.T) {
	type update struct {
		Name        string  `db:"name"`
		Environment *string `db:"payment_environment"`
		PublicKey   *string `db:"payment_public_key"`
		Untagged    string
	}

	env := "production"

	got := shared.TransformFields(update{Name: "Club", Environment: &env, Untagged: "x"}, "admin")

	assert.Equal(t, "Club", got["name"])
	assert.Equal(t, "production", got["payment_environment"])
	assert.NotContains(t, got, "payment_public_key")
	assert.Equal(t, "admin", got[constant.FieldModifiedBy])
	assert.Contains(t, got, constant.FieldModifiedAt)
	assert.Len(t, got, 4)
}

func TestFilterByID(t *testing.T) {
	got := shared.FilterByID("b1", "id", "bookings")

	assert.Equal(t, dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "id", Value: "b1", Operator: dto.FilterOperatorEq, Table: "bookings"},
		},
	}, got)
}
