package shared

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
)

func TestNullableDistinguishesAbsentAndNull(t *testing.T) {
	var payload struct {
		TaxID   Nullable[string] `json:"taxId"`
		Address Nullable[string] `json:"address"`
		Name    Nullable[string] `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"taxId":null,"address":"Długa 1"}`), &payload))

	assert.True(t, payload.TaxID.Set)
	assert.False(t, payload.TaxID.Valid)
	assert.Nil(t, payload.TaxID.Ptr())

	assert.True(t, payload.Address.Set)
	require.NotNil(t, payload.Address.Ptr())
	assert.Equal(t, "Długa 1", *payload.Address.Ptr())

	assert.False(t, payload.Name.Set)
}

func TestNormalizeType(t *testing.T) {
	got, err := NormalizeType(" income ")
	require.NoError(t, err)
	assert.Equal(t, TypeIncome, got)

	_, err = NormalizeType("REFUND")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestFiltersFromQuery(t *testing.T) {
	req := httptest.NewRequest("GET", "/?q=%20acme%20&sort=taxId&dir=DESC&active=false", nil)
	f := FiltersFromQuery(req)
	assert.Equal(t, "acme", f.Search)
	assert.Equal(t, "taxId", f.SortBy)
	assert.Equal(t, "DESC", f.Direction())
	require.NotNil(t, f.IsActive)
	assert.False(t, *f.IsActive)

	f = FiltersFromQuery(httptest.NewRequest("GET", "/?active=maybe", nil))
	assert.Nil(t, f.IsActive)
	assert.Equal(t, "ASC", f.Direction())
}
