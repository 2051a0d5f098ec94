// Package appstore adapts the App Store Connect API to the reconciler's
// read and write capabilities.
package appstore

import (
	"encoding/json"
)

// resource is a generic JSON:API resource
type resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    json.RawMessage         `json:"attributes,omitempty"`
	Relationships map[string]relationship `json:"relationships,omitempty"`
}

// relationship is a JSON:API relationship, either inline or link-only
type relationship struct {
	Data  *resourceRef       `json:"data,omitempty"`
	Links *relationshipLinks `json:"links,omitempty"`
}

// resourceRef references another resource by type and id
type resourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// relationshipLinks carries the follow links of a link-only relationship
type relationshipLinks struct {
	Related string `json:"related"`
}

// page is a paginated JSON:API response
type page struct {
	Data     []resource `json:"data"`
	Included []resource `json:"included,omitempty"`
	Links    pageLinks  `json:"links"`
}

// pageLinks carries pagination links
type pageLinks struct {
	Next string `json:"next,omitempty"`
}

// single is a single-resource JSON:API response
type single struct {
	Data *resource `json:"data"`
}

// pricePointAttributes are the attributes of an inAppPurchasePricePoint.
// The storefront serializes customerPrice as a decimal string.
type pricePointAttributes struct {
	CustomerPrice string `json:"customerPrice"`
}

// relatedID returns the inline data id of a named relationship, or ""
func (r resource) relatedID(name string) string {
	rel, ok := r.Relationships[name]
	if !ok || rel.Data == nil {
		return ""
	}
	return rel.Data.ID
}

// relatedLink returns the follow link of a named relationship, or ""
func (r resource) relatedLink(name string) string {
	rel, ok := r.Relationships[name]
	if !ok || rel.Links == nil {
		return ""
	}
	return rel.Links.Related
}
