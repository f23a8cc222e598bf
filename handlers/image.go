package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photoapp/failure"
)

func (a *API) GetImage(c *gin.Context) {
	fail := gin.H{"user_id": -1, "asset_name": "?", "bucket_key": "?", "data": []any{}}
	assetID, err := paramID(c, "assetid")
	if err != nil {
		a.abortWithError(c, err.Error(), err, fail)
		return
	}
	image, err := a.catalog.Image(c.Request.Context(), assetID)
	if err != nil {
		a.abortWithError(c, errorMessage(err, noSuchAsset), err, fail)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "success",
		"user_id":    image.Asset.UserID,
		"asset_name": image.Asset.AssetName,
		"bucket_key": image.Asset.BucketKey,
		"data":       image.Data,
	})
}

type PostImageRequest struct {
	AssetName string `json:"assetname"`
	Data      string `json:"data"` // base64
}

func (a *API) PostImage(c *gin.Context) {
	fail := gin.H{"asset_id": -1}
	userID, err := paramID(c, "userid")
	if err != nil {
		a.abortWithError(c, err.Error(), err, fail)
		return
	}
	req := PostImageRequest{}
	if err = c.ShouldBindJSON(&req); err != nil {
		err = failure.Validation.Wrap(err)
		a.abortWithError(c, err.Error(), err, fail)
		return
	}
	asset, err := a.catalog.Upload(c.Request.Context(), userID, req.AssetName, req.Data)
	if err != nil {
		a.abortWithError(c, errorMessage(err, noSuchUser), err, fail)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "asset_id": asset.AssetID})
}
