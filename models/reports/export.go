package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatPDF, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Export is a generated file. ArchiveURL is set when a copy went to the export bucket.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
	ArchiveURL  string
}

func newExport(ctx context.Context, name string, format Format, data []byte) *Export {
	export := &Export{
		Filename:    name + "." + string(format),
		ContentType: format.ContentType(),
		Data:        data,
	}
	if utils.ArchiveEnabled() {
		objectName := fmt.Sprintf("exports/%s/%s", utils.Now().Format("2006/01/02"), export.Filename)
		url, err := utils.ArchiveExport(ctx, objectName, data, export.ContentType)
		if err != nil {
			config.LogError(config.GetLogger(), "export.go", "newExport", "ArchiveExport", objectName, err)
		}
		export.ArchiveURL = url
	}
	return export
}

func ExportDashboard(ctx context.Context, d *Dashboard, format Format, periodKey string) (*Export, error) {
	var data []byte
	var err error
	switch format {
	case FormatCSV:
		data, err = DashboardCSV(d)
	case FormatPDF:
		data, err = DashboardPDF(d)
	case FormatXLSX:
		data, err = DashboardXLSX(d)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return newExport(ctx, "dashboard-report-"+periodKey, format, data), nil
}

func ExportInventory(ctx context.Context, view *InventoryView, format Format, periodKey string) (*Export, error) {
	var data []byte
	var err error
	switch format {
	case FormatCSV:
		data, err = InventoryCSV(view)
	case FormatPDF:
		data, err = InventoryPDF(view)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return newExport(ctx, "reporte-inventario-"+periodKey, format, data), nil
}
