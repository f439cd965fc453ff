package main

import (
	"fmt"
	"net/http"

	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"bitbucket.org/mmdatafocus/meatshop_console/models/reports"
	"github.com/gin-gonic/gin"
)

const headerArchiveURL = "X-Archive-Url"

func registerReportRoutes(api *gin.RouterGroup, b models.Backend) {
	api.GET("/dashboard", func(c *gin.Context) {
		filter, ok := periodFilter(c)
		if !ok {
			return
		}
		// partial dashboards are still a 200, failed sections are listed in "errors"
		c.JSON(http.StatusOK, reports.Aggregate(c.Request.Context(), b, filter, nil))
	})

	api.GET("/dashboard/stream", func(c *gin.Context) {
		filter, ok := periodFilter(c)
		if !ok {
			return
		}
		streamDashboard(c, b, filter)
	})

	api.GET("/dashboard/export/:format", func(c *gin.Context) {
		format, err := reports.ParseFormat(c.Param("format"))
		if err != nil {
			respondError(c, err)
			return
		}
		filter, ok := periodFilter(c)
		if !ok {
			return
		}
		dashboard := reports.Aggregate(c.Request.Context(), b, filter, nil)
		export, err := reports.ExportDashboard(c.Request.Context(), dashboard, format, models.PeriodKey(filter))
		if err != nil {
			respondError(c, err)
			return
		}
		sendExport(c, export)
	})

	api.GET("/inventory", func(c *gin.Context) {
		filter, ok := periodFilter(c)
		if !ok {
			return
		}
		view, err := reports.GetInventoryView(c.Request.Context(), b, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	api.GET("/inventory/export/:format", func(c *gin.Context) {
		format, err := reports.ParseFormat(c.Param("format"))
		if err != nil {
			respondError(c, err)
			return
		}
		filter, ok := periodFilter(c)
		if !ok {
			return
		}
		view, err := reports.GetInventoryView(c.Request.Context(), b, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		export, err := reports.ExportInventory(c.Request.Context(), view, format, models.PeriodKey(filter))
		if err != nil {
			respondError(c, err)
			return
		}
		sendExport(c, export)
	})
}

// streamDashboard sends one server-sent event per section as it arrives, then a "done" event
// with the assembled dashboard.
func streamDashboard(c *gin.Context, b models.Backend, filter models.PeriodFilter) {
	ctx := c.Request.Context()
	updates := make(chan reports.SectionUpdate, len(reports.Sections))
	done := make(chan *reports.Dashboard, 1)
	go func() {
		done <- reports.Aggregate(ctx, b, filter, func(u reports.SectionUpdate) { updates <- u })
	}()

	emit := func(u reports.SectionUpdate) {
		if u.Err != nil {
			c.SSEvent("error", gin.H{"section": u.Section, "error": u.Err.Error()})
			return
		}
		c.SSEvent(string(u.Section), u.Data)
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	for {
		select {
		case u := <-updates:
			emit(u)
			c.Writer.Flush()
		case dashboard := <-done:
			for len(updates) > 0 {
				emit(<-updates)
			}
			c.SSEvent("done", dashboard)
			c.Writer.Flush()
			return
		case <-ctx.Done():
			return
		}
	}
}

func sendExport(c *gin.Context, export *reports.Export) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	if export.ArchiveURL != "" {
		c.Header(headerArchiveURL, export.ArchiveURL)
	}
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
