package devtools

import (
	"strings"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// skippedTypes are target types that never map to a user-visible page.
var skippedTypes = map[string]bool{
	"browser":         true,
	"webview":         true,
	"auction_worklet": true,
}

var skippedURLPrefixes = []string{
	"devtools://",
	"chrome-extension://",
	"edge://",
}

// typeLabels maps protocol target types to display names. Plain pages have none.
var typeLabels = map[string]string{
	"page":            "",
	"service_worker":  "Service Worker",
	"shared_worker":   "Shared Worker",
	"worker":          "Worker",
	"iframe":          "iframe",
	"background_page": "Background Page",
}

const defaultTargetType = "page"

// Interesting reports whether a target of the given type and URL is worth listing.
func Interesting(targetType, url string) bool {
	if targetType == "" {
		targetType = defaultTargetType
	}
	if skippedTypes[targetType] {
		return false
	}
	if url == "" || url == "about:blank" {
		return false
	}
	for _, prefix := range skippedURLPrefixes {
		if strings.HasPrefix(url, prefix) {
			return false
		}
	}
	return true
}

// TypeLabel returns the human-friendly name of a target type.
func TypeLabel(targetType string) string {
	if targetType == "" {
		return ""
	}
	if label, ok := typeLabels[targetType]; ok {
		return label
	}
	return targetType
}

// DisplayLabel joins title and url, or returns the url alone when the title adds nothing.
func DisplayLabel(title, url string) string {
	if title == "" || title == url {
		return url
	}
	return title + " \u2014 " + url
}

// pageInfo builds the unresolved page record for a listed target.
func pageInfo(targetType, title, url string) model.PageInfo {
	return model.PageInfo{
		Label:      DisplayLabel(title, url),
		TargetType: TypeLabel(targetType),
	}
}
