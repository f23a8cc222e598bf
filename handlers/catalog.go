package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photoapp/failure"
	"photoapp/models"
)

// Stats reports the bucket status and the number of users and assets.
func (a *API) Stats(c *gin.Context) {
	stats, err := a.catalog.Stats(c.Request.Context())
	if err != nil {
		a.abortWithError(c, err.Error(), err, gin.H{"db_numUsers": -1, "db_numAssets": -1})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      stats.BucketStatus,
		"db_numUsers":  stats.Users,
		"db_numAssets": stats.Assets,
	})
}

func (a *API) Users(c *gin.Context) {
	users, err := models.UserList(c.Request.Context(), a.db)
	if err != nil {
		a.abortWithError(c, err.Error(), err, gin.H{"data": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "data": users})
}

func (a *API) Assets(c *gin.Context) {
	assets, err := models.AssetList(c.Request.Context(), a.db)
	if err != nil {
		a.abortWithError(c, err.Error(), err, gin.H{"data": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "data": assets})
}

// Bucket lists one page of the bucket. The next page starts after the last
// Key of this one: GET /bucket?startafter=<key>.
func (a *API) Bucket(c *gin.Context) {
	objects, err := a.catalog.Page(c.Request.Context(), c.Query("prefix"), c.Query("startafter"))
	if err != nil {
		a.abortWithError(c, err.Error(), err, gin.H{"data": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "data": objects})
}

type PutUserRequest struct {
	Email        string `json:"email"`
	LastName     string `json:"lastname"`
	FirstName    string `json:"firstname"`
	BucketFolder string `json:"bucketfolder"`
}

// PutUser inserts a user, or updates the one with the same email.
func (a *API) PutUser(c *gin.Context) {
	req := PutUserRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		err = failure.Validation.Wrap(err)
		a.abortWithError(c, err.Error(), err, gin.H{"user_id": -1})
		return
	}
	user := models.User{
		Email:        req.Email,
		LastName:     req.LastName,
		FirstName:    req.FirstName,
		BucketFolder: req.BucketFolder,
	}
	inserted, err := models.UserUpsert(c.Request.Context(), a.db, &user)
	if err != nil {
		a.abortWithError(c, err.Error(), err, gin.H{"user_id": -1})
		return
	}
	message := "updated"
	if inserted {
		message = "inserted"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "user_id": user.UserID})
}
