// Package handlers exposes the catalog and the annotation pipeline over HTTP.
package handlers

import (
	"context"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"photoapp/annotation"
	"photoapp/catalog"
)

// Annotator returns the labels of an asset, analyzing it first if needed.
type Annotator interface {
	Annotate(ctx context.Context, assetID uint64) (annotation.Result, error)
}

type API struct {
	db        *gorm.DB
	catalog   *catalog.Catalog
	annotator Annotator
	logger    *zap.Logger
}

func New(db *gorm.DB, catalog *catalog.Catalog, annotator Annotator, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{db: db, catalog: catalog, annotator: annotator, logger: logger}
}

// Router builds the gin engine with every route registered. Responses are
// gzipped unless debug is set.
func (a *API) Router(debug bool) *gin.Engine {
	router := gin.New()
	_ = router.SetTrustedProxies([]string{})
	router.Use(RequestLogger(a.logger), gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{
		Repanic: true,
	}))
	if debug {
		router.Use(ErrorLogMiddleware(a.logger))
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "PUT", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        24 * time.Hour,
	}))
	if !debug {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/image/"})))
	}
	router.Use(NoCache)

	router.GET("/stats", a.Stats)
	router.GET("/users", a.Users)
	router.PUT("/user", a.PutUser)
	router.GET("/assets", a.Assets)
	router.GET("/bucket", a.Bucket)
	router.GET("/image/:assetid", a.GetImage)
	router.POST("/image/:userid", a.PostImage)
	router.GET("/labels/:assetid", a.Labels)
	router.GET("/images/:label", a.SearchImages)
	return router
}
