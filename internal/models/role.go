package models

// DefaultRoles is the enumerated persona set offered by the client. The
// backend accepts free-text roles as well; the list only drives selector
// defaults.
var DefaultRoles = []string{
	"friendly assistant",
	"teacher",
	"funny friend",
	"professional",
	"creative",
}
