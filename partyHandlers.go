package main

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"github.com/gin-gonic/gin"
)

func registerPartyRoutes(g *gin.RouterGroup, b models.Backend, kind models.PartyKind) {
	g.GET("", func(c *gin.Context) {
		parties, err := models.ListParties(c.Request.Context(), b, kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, parties)
	})

	g.GET("/:id", func(c *gin.Context) {
		party, err := models.GetParty(c.Request.Context(), b, kind, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, party)
	})

	g.POST("", func(c *gin.Context) {
		var input models.NewParty
		if !bindJSON(c, &input) {
			return
		}
		party, err := models.CreateParty(c.Request.Context(), b, kind, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, party)
	})

	g.PUT("/:id", func(c *gin.Context) {
		var input models.NewParty
		if !bindJSON(c, &input) {
			return
		}
		party, err := models.UpdateParty(c.Request.Context(), b, kind, c.Param("id"), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, party)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		party, err := models.DeleteParty(c.Request.Context(), b, kind, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, party)
	})
}

func registerProductRoutes(g *gin.RouterGroup, b models.Backend) {
	g.GET("", func(c *gin.Context) {
		products, err := models.ListProducts(c.Request.Context(), b)
		if err != nil {
			respondError(c, err)
			return
		}
		if inStock, _ := strconv.ParseBool(c.Query("in_stock")); inStock {
			products = models.InStockProducts(products)
		}
		c.JSON(http.StatusOK, products)
	})

	g.GET("/:id", func(c *gin.Context) {
		product, err := models.GetProduct(c.Request.Context(), b, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	})

	g.POST("", func(c *gin.Context) {
		var input models.NewProduct
		if !bindJSON(c, &input) {
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), b, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	})

	g.PUT("/:id", func(c *gin.Context) {
		var input models.NewProduct
		if !bindJSON(c, &input) {
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), b, c.Param("id"), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		product, err := models.DeleteProduct(c.Request.Context(), b, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	})
}

func listHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := models.ListHistory(c.Request.Context(), c.Query("reference_type"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
