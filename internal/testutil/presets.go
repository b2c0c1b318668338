package testutil

import (
	"strings"
	"time"
)

// Standard catalog template ids.
const (
	RestID   = "acme.connectors.rest"
	ChargeID = "acme.payments.charge"
	RefundID = "acme.payments.refund"
	ReviewID = "acme.user.review"
)

// LongDescription is longer than the catalog truncation limit.
var LongDescription = "Call any HTTP endpoint. " + strings.Repeat("Supports headers, query parameters and JSON bodies. ", 6)

// WithStandardCatalog adds a small catalog: two payment templates, one
// connector with several tags and a long description, and an untagged user
// task template.
func (b *Builder) WithStandardCatalog() *Builder {
	updated := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	return b.
		WithTemplate("connectors.json", RestID,
			Name("REST Call"), Description(LongDescription), Version(2),
			Tags("Connectors", "HTTP")).
		WithTemplate("payments.json", ChargeID,
			Name("Charge Card"), Description("Charge the customer's card"),
			AppliesTo("bpmn:ServiceTask"), Tags("Payments"), Updated(updated)).
		WithTemplate("payments.json", RefundID,
			Name("Refund Payment"),
			AppliesTo("bpmn:ServiceTask"), Tags("Payments")).
		WithTemplate("user-tasks.yaml", ReviewID,
			Name("Review Form"), AppliesTo("bpmn:UserTask"))
}
