package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photoapp/models"
)

// Labels returns the labels of an asset, running the analysis on first use.
func (a *API) Labels(c *gin.Context) {
	fail := gin.H{"asset_name": "?", "data": []any{}}
	assetID, err := paramID(c, "assetid")
	if err != nil {
		a.abortWithError(c, err.Error(), err, fail)
		return
	}
	result, err := a.annotator.Annotate(c.Request.Context(), assetID)
	if err != nil {
		a.abortWithError(c, errorMessage(err, noSuchAsset), err, fail)
		return
	}
	labels := result.Labels
	if labels == nil {
		labels = []models.Label{}
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "success",
		"asset_name": result.Asset.AssetName,
		"data":       labels,
	})
}

// SearchImages lists the analyzed assets carrying a label, by asset id.
func (a *API) SearchImages(c *gin.Context) {
	matches, err := models.LabelSearch(c.Request.Context(), a.db, c.Param("label"))
	if err != nil {
		a.abortWithError(c, err.Error(), err, gin.H{"data": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "data": matches})
}
