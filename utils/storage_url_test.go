package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportAccessURL(t *testing.T) {
	t.Setenv("EXPORT_ACCESS_BASE_URL", "")
	assert.Equal(t, "gs://reports/exports/2024/05/01/a.csv", ExportAccessURL("reports", "exports/2024/05/01/a.csv"))

	t.Setenv("EXPORT_ACCESS_BASE_URL", "https://storage.googleapis.com/reports/")
	assert.Equal(t, "https://storage.googleapis.com/reports/exports/a.csv", ExportAccessURL("reports", "exports/a.csv"))

	t.Setenv("EXPORT_ACCESS_BASE_URL", "https://files.example.com/get?key=")
	assert.Equal(t, "https://files.example.com/get?key=exports%2Fa.csv", ExportAccessURL("reports", "exports/a.csv"))

	t.Setenv("EXPORT_ACCESS_BASE_URL", "https://files.example.com/{objectKey}/download")
	assert.Equal(t, "https://files.example.com/exports/a.csv/download", ExportAccessURL("reports", "exports/a.csv"))
}
