package task

import "github.com/microcosm-cc/bluemonday"

// descriptionPolicy keeps basic formatting markup in task descriptions and
// strips scripts, event handlers and unsafe links before they are stored.
var descriptionPolicy = bluemonday.UGCPolicy()

func sanitizeDescription(s string) string {
	if s == "" {
		return ""
	}
	return descriptionPolicy.Sanitize(s)
}
