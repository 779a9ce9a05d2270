package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-backoffice/internal/application/ordering"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/pdf"
	"github.com/jhoicas/tienda-backoffice/pkg/money"
)

func TestRenderReceipt_GeneraPDF(t *testing.T) {
	g := pdf.NewReceiptGenerator("Tienda", money.NewFormatter("es-CO", 2))
	doc := ordering.Document{
		Order: &entity.Order{ID: "3f2a9c1e-0000-0000-0000-000000000001", UserID: "u1", CreatedAt: time.Now()},
		Owner: &entity.User{Username: "ana", Email: "ana@tienda.com"},
		Items: []*entity.OrderItem{{
			ProductName: "Camisa", Quantity: 2,
			UnitPrice: decimal.RequireFromString("1.40"), Price: decimal.RequireFromString("2.80"),
		}},
		Total: "2.80",
	}

	out, err := g.RenderReceipt(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderReceipt_PedidoVacio(t *testing.T) {
	g := pdf.NewReceiptGenerator("Tienda", money.NewFormatter("es-CO", 2))
	out, err := g.RenderReceipt(context.Background(), ordering.Document{
		Order: &entity.Order{ID: "o1", CreatedAt: time.Now()},
		Total: "0.00",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = g.RenderReceipt(context.Background(), ordering.Document{})
	assert.Error(t, err)
}
