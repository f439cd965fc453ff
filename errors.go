package main

import (
	"errors"
	"net/http"
	"net/url"

	"bitbucket.org/mmdatafocus/meatshop_console/apiclient"
	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"bitbucket.org/mmdatafocus/meatshop_console/models/reports"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"bitbucket.org/mmdatafocus/meatshop_console/workflow"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// statusFor maps an error to the notification's HTTP status.
func statusFor(err error) int {
	var validationErr *models.ValidationError
	var apiErr *apiclient.APIError
	var urlErr *url.Error
	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.Is(err, utils.ErrorRecordNotFound), apiclient.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, reports.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, config.ErrDatabaseDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, reports.ErrDashboardIncomplete), errors.As(err, &apiErr), errors.As(err, &urlErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError turns any failure into a {"error": "..."} notification; validation failures also list their fields.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	body := gin.H{"error": err.Error()}
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) && len(validationErr.Fields) > 0 {
		body["fields"] = validationErr.Fields
	}
	c.AbortWithStatusJSON(statusFor(err), body)
}

// bindJSON decodes the body; malformed json and wrong field types become a 400.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			respondError(c, &models.ValidationError{Fields: utils.ProcessValidationErrors(err)})
			return false
		}
		config.GetLogger().WithFields(logrus.Fields{"path": c.FullPath()}).Debug("invalid request body: " + err.Error())
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func periodFilter(c *gin.Context) (models.PeriodFilter, bool) {
	filter, err := models.ParsePeriodQuery(c.Query)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return filter, true
}
