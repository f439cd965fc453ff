package utils

import (
	"net/url"
	"os"
	"strings"
)

// ExportAccessURL is where an archived export can be fetched from.
// EXPORT_ACCESS_BASE_URL may hold an {objectKey} placeholder or end with a query key;
// without it the gs:// location is returned.
func ExportAccessURL(bucket, objectKey string) string {
	base := strings.TrimSpace(os.Getenv("EXPORT_ACCESS_BASE_URL"))
	if base != "" {
		if strings.Contains(base, "{objectKey}") {
			escaped := objectKey
			if strings.Contains(base, "?") {
				escaped = url.QueryEscape(objectKey)
			}
			return strings.ReplaceAll(base, "{objectKey}", escaped)
		}
		if strings.Contains(base, "?") {
			return base + url.QueryEscape(objectKey)
		}
		return strings.TrimRight(base, "/") + "/" + objectKey
	}
	return "gs://" + bucket + "/" + objectKey
}
