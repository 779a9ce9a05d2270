package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-backoffice/internal/application/dto"
)

func TestStrictBool_AceptaFormasLiterales(t *testing.T) {
	cases := map[string]bool{
		`{"is_paid": true}`:    true,
		`{"is_paid": "True"}`:  true,
		`{"is_paid": "1"}`:     true,
		`{"is_paid": 1}`:       true,
		`{"is_paid": false}`:   false,
		`{"is_paid": "False"}`: false,
		`{"is_paid": 0}`:       false,
	}
	for body, want := range cases {
		var in dto.UpdateOrderRequest
		require.NoError(t, json.Unmarshal([]byte(body), &in), body)
		require.NotNil(t, in.IsPaid, body)
		assert.Equal(t, want, bool(*in.IsPaid), body)
	}
}

func TestStrictBool_RechazaCoerciones(t *testing.T) {
	for _, body := range []string{
		`{"is_paid": 15}`,
		`{"is_paid": "15"}`,
		`{"is_paid": "yes"}`,
		`{"is_paid": "true"}`,
		`{"is_paid": ""}`,
		`{"is_paid": null}`,
	} {
		var in dto.UpdateOrderRequest
		err := json.Unmarshal([]byte(body), &in)
		if body == `{"is_paid": null}` {
			// null deja el puntero en nil: el validador lo rechaza como campo requerido.
			require.NoError(t, err)
			assert.Nil(t, in.IsPaid)
			continue
		}
		assert.Error(t, err, body)
	}
}

func TestPageRequest_DefaultPage(t *testing.T) {
	p := dto.PageRequest{Limit: 0, Offset: -5}
	p.DefaultPage()
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = dto.PageRequest{Limit: 500}
	p.DefaultPage()
	assert.Equal(t, 100, p.Limit)
}

func TestMoney_EscalaFijaEnLaSalida(t *testing.T) {
	cases := map[string]string{"0": `"0.00"`, "1.4": `"1.40"`, "2.999": `"2.99"`, "-3": `"-3.00"`}
	for raw, want := range cases {
		out, err := json.Marshal(dto.NewMoney(decimal.RequireFromString(raw), 2))
		require.NoError(t, err)
		assert.Equal(t, want, string(out), raw)
	}

	var resp dto.OrderTotalResponse
	require.NoError(t, json.Unmarshal([]byte(`{"order_id":"x","total_price":"12.50"}`), &resp))
	assert.True(t, decimal.RequireFromString("12.5").Equal(resp.TotalPrice.Decimal))
}
