package tracing

// Span attribute keys.
const (
	AttrActionName    = "action.name"
	AttrActionArgs    = "action.args"
	AttrTemplateID    = "template.id"
	AttrTemplateCount = "template.count"
	AttrElementType   = "element.type"
	AttrSessionID     = "catalog.session"
)

// Span name prefixes.
const (
	SpanPrefixAction  = "host.action."
	SpanPrefixCatalog = "catalog."
)

// Event names for span events.
const (
	EventActionRejected = "action.rejected"
)
