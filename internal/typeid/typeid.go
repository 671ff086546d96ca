package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixChart   = "chart"
	PrefixClient  = "client"
	PrefixOverlay = "ovl"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewChartID() string   { return New(PrefixChart) }
func NewClientID() string  { return New(PrefixClient) }
func NewOverlayID() string { return New(PrefixOverlay) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
