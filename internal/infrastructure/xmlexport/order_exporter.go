// Package xmlexport serializa pedidos a XML canónico (C14N) con digest SHA-256.
package xmlexport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/tienda-backoffice/internal/application/ordering"
)

// Namespace del documento de pedido.
const Namespace = "urn:tienda:backoffice:order:1"

// OrderExporter implementa ordering.XMLExporter.
type OrderExporter struct {
	places int32
}

var _ ordering.XMLExporter = (*OrderExporter)(nil)

// NewOrderExporter construye el exportador; places son los decimales de los montos.
func NewOrderExporter(places int32) *OrderExporter {
	return &OrderExporter{places: places}
}

// ExportOrderXML construye el documento, lo canoniza y devuelve el hex del SHA-256 de la forma canónica.
func (e *OrderExporter) ExportOrderXML(_ context.Context, doc ordering.Document) ([]byte, string, error) {
	if doc.Order == nil {
		return nil, "", fmt.Errorf("xmlexport: pedido vacío")
	}
	raw, err := e.build(doc).WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("xmlexport: serializar: %w", err)
	}
	canonical, err := canonicalize(raw)
	if err != nil {
		return nil, "", fmt.Errorf("xmlexport: canonizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return canonical, hex.EncodeToString(sum[:]), nil
}

func (e *OrderExporter) build(doc ordering.Document) *etree.Document {
	x := etree.NewDocument()
	root := x.CreateElement("Order")
	root.CreateAttr("xmlns", Namespace)
	root.CreateAttr("id", doc.Order.ID)

	root.CreateElement("CreatedAt").SetText(doc.Order.CreatedAt.UTC().Format(time.RFC3339))
	root.CreateElement("IsPaid").SetText(strconv.FormatBool(doc.Order.IsPaid))

	owner := root.CreateElement("Customer")
	owner.CreateAttr("id", doc.Order.UserID)
	if doc.Owner != nil {
		owner.CreateElement("Username").SetText(doc.Owner.Username)
		owner.CreateElement("Email").SetText(doc.Owner.Email)
	}

	items := root.CreateElement("Items")
	for _, it := range doc.Items {
		el := items.CreateElement("Item")
		el.CreateAttr("id", it.ID)
		el.CreateAttr("productId", it.ProductID)
		el.CreateElement("Name").SetText(it.ProductName)
		el.CreateElement("Quantity").SetText(strconv.Itoa(it.Quantity))
		el.CreateElement("UnitPrice").SetText(it.UnitPrice.StringFixed(e.places))
		el.CreateElement("Price").SetText(it.Price.StringFixed(e.places))
	}
	root.CreateElement("Total").SetText(doc.Total)
	return x
}

func canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}
