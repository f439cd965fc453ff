package main

import (
	"net/http"
	"strings"

	"bitbucket.org/mmdatafocus/meatshop_console/middlewares"
	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"bitbucket.org/mmdatafocus/meatshop_console/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type outstandingResponse struct {
	PartyId    string            `json:"party_id"`
	DocumentId string            `json:"document_id,omitempty"`
	Balance    decimal.Decimal   `json:"balance"`
	Documents  []models.Document `json:"documents"`
}

func registerDocumentRoutes(g *gin.RouterGroup, b models.Backend, kind models.DocumentKind) {
	lookup := middlewares.ProductLookup(b)

	g.GET("", func(c *gin.Context) {
		filter, ok := periodFilter(c)
		if !ok {
			return
		}
		docs, err := models.ListDocuments(c.Request.Context(), b, kind, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, docs)
	})

	// parties the payment form can pick from
	g.GET("/parties-with-debt", func(c *gin.Context) {
		docs, err := models.ListDocuments(c.Request.Context(), b, kind, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PartiesWithDebt(docs))
	})

	g.GET("/outstanding", func(c *gin.Context) {
		partyId := strings.TrimSpace(c.Query("party_id"))
		documentId := strings.TrimSpace(c.Query("document_id"))
		if documentId == "none" {
			documentId = ""
		}
		if partyId == "" {
			respondError(c, &models.ValidationError{Message: "party_id is required", Fields: map[string]string{"party_id": "required"}})
			return
		}
		docs, err := models.ListDocuments(c.Request.Context(), b, kind, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		balance, err := models.OutstandingBalance(docs, partyId, documentId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, outstandingResponse{
			PartyId:    partyId,
			DocumentId: documentId,
			Balance:    balance,
			Documents:  models.OpenDocuments(docs, partyId),
		})
	})

	g.GET("/:id", func(c *gin.Context) {
		doc, err := models.GetDocument(c.Request.Context(), b, kind, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.NewDocumentDetail(*doc))
	})

	g.POST("/preview", func(c *gin.Context) {
		var input models.NewDocument
		if !bindJSON(c, &input) {
			return
		}
		preview, err := models.PreviewDocument(c.Request.Context(), kind, &input, lookup)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, preview)
	})

	g.POST("", func(c *gin.Context) {
		filter, ok := periodFilter(c)
		if !ok {
			return
		}
		var input models.NewDocument
		if !bindJSON(c, &input) {
			return
		}
		result, err := workflow.CreateDocument(c.Request.Context(), b, kind, &input, lookup, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	})

	g.POST("/payments", func(c *gin.Context) {
		var input models.NewPayment
		if !bindJSON(c, &input) {
			return
		}
		result, err := workflow.RecordPayment(c.Request.Context(), b, kind, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	})
}
