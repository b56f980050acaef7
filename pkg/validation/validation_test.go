package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

type createModel struct {
	Name  string `validate:"required,max=10"`
	Price int    `validate:"gte=0"`
	Kind  string `validate:"omitempty,oneof=tool toy"`
}

func TestStruct(t *testing.T) {
	v := Struct[*createModel](nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		model      *createModel
		wantFields []string
	}{
		{name: "valid", model: &createModel{Name: "hammer", Price: 3, Kind: "tool"}},
		{name: "missing name", model: &createModel{Price: 1}, wantFields: []string{"Name"}},
		{name: "name too long and negative price", model: &createModel{Name: "abcdefghijkl", Price: -1}, wantFields: []string{"Name", "Price"}},
		{name: "bad kind", model: &createModel{Name: "x", Kind: "food"}, wantFields: []string{"Kind"}},
		{name: "nil model", model: nil, wantFields: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(ctx, tt.model)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrValidation)

			var verrs Errors
			require.True(t, errors.As(err, &verrs))
			var fields []string
			for _, f := range verrs {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestStructMessages(t *testing.T) {
	err := Struct[*createModel](nil).Validate(context.Background(), &createModel{Price: -2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name: is required")
	assert.Contains(t, err.Error(), "Price: must be at least 0")
}

func TestCheckAndAll(t *testing.T) {
	ctx := context.Background()
	positive := Func[int](func(_ context.Context, n int) error {
		return Check(n > 0, "n", "must be positive")
	})
	even := Func[int](func(_ context.Context, n int) error {
		return Check(n%2 == 0, "n", "must be even")
	})
	v := All[int](positive, even)

	assert.NoError(t, v.Validate(ctx, 4))

	err := v.Validate(ctx, -3)
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)

	boom := errors.New("boom")
	failing := Func[int](func(context.Context, int) error { return boom })
	assert.ErrorIs(t, All[int](failing, positive).Validate(ctx, -1), boom)
}

func TestDelegate(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	v := Delegate[*createModel](r)

	err := v.Validate(ctx, &createModel{Name: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoValidator)
	assert.Contains(t, err.Error(), "no validator registered for *validation.createModel")

	Register(r, Struct[*createModel](nil))
	assert.NoError(t, v.Validate(ctx, &createModel{Name: "x"}))
	assert.ErrorIs(t, v.Validate(ctx, &createModel{}), types.ErrValidation)
}

func TestLookup(t *testing.T) {
	r := NewRegistry()
	_, ok := Lookup[string](r)
	assert.False(t, ok)

	Register[string](r, Func[string](func(context.Context, string) error { return nil }))
	_, ok = Lookup[string](r)
	assert.True(t, ok)
	_, ok = Lookup[*string](r)
	assert.False(t, ok)
}
