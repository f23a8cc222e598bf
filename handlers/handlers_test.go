package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"photoapp/annotation"
	"photoapp/catalog"
	"photoapp/db/dbtest"
	"photoapp/models"
	"photoapp/storage"
	"photoapp/vision"
)

var jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")

type fakeDetector struct {
	labels []vision.Label
	err    error
	calls  int
	keys   []string
	bodies [][]byte
}

func (f *fakeDetector) DetectLabels(ctx context.Context, image vision.Image, maxLabels int64, minConfidence float64) ([]vision.Label, error) {
	f.calls++
	f.keys = append(f.keys, image.Bucket+":"+image.Key)
	f.bodies = append(f.bodies, image.Bytes)
	return f.labels, f.err
}

type envelope struct {
	Message   string          `json:"message"`
	UserID    int64           `json:"user_id"`
	AssetID   int64           `json:"asset_id"`
	AssetName string          `json:"asset_name"`
	BucketKey string          `json:"bucket_key"`
	Users     int64           `json:"db_numUsers"`
	Assets    int64           `json:"db_numAssets"`
	Data      json.RawMessage `json:"data"`
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	detector *fakeDetector
}

func newTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t)
	require.NoError(t, models.Migrate(db))
	store, err := storage.NewDiskStorage(storage.Bucket{Name: "photoapp", Path: t.TempDir()})
	require.NoError(t, err)

	detector := &fakeDetector{}
	pipeline := annotation.NewPipeline(db, store, detector, annotation.Options{
		Bucket:        store.Bucket(),
		MaxLabels:     100,
		MinConfidence: 80,
		InlineImages:  true,
	}, nil)
	api := New(db, catalog.New(db, store, catalog.Options{PageSize: 12}, nil), pipeline, nil)
	return &testEnv{router: api.Router(true), db: db, detector: detector}
}

// do sends body (JSON encoded unless it is a string) and decodes the reply.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	reply := envelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply), w.Body.String())
	return w.Code, reply
}

func (e *testEnv) putUser(t *testing.T, email, folder string) int64 {
	code, reply := e.do(t, http.MethodPut, "/user", PutUserRequest{
		Email: email, LastName: "Doe", FirstName: "Pat", BucketFolder: folder,
	})
	require.Equal(t, http.StatusOK, code, reply.Message)
	return reply.UserID
}

func (e *testEnv) upload(t *testing.T, userID int64, name string) int64 {
	code, reply := e.do(t, http.MethodPost, fmt.Sprintf("/image/%d", userID), PostImageRequest{
		AssetName: name, Data: base64.StdEncoding.EncodeToString(jpegBytes),
	})
	require.Equal(t, http.StatusOK, code, reply.Message)
	return reply.AssetID
}

func TestPutUser(t *testing.T) {
	e := newTestEnv(t)

	code, first := e.do(t, http.MethodPut, "/user", PutUserRequest{Email: "pat@example.com", FirstName: "Pat", BucketFolder: "f1"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "inserted", first.Message)
	assert.Positive(t, first.UserID)

	code, second := e.do(t, http.MethodPut, "/user", PutUserRequest{Email: "pat@example.com", FirstName: "Patricia", BucketFolder: "f1"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "updated", second.Message)
	assert.Equal(t, first.UserID, second.UserID)

	code, reply := e.do(t, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusOK, code)
	users := []models.User{}
	require.NoError(t, json.Unmarshal(reply.Data, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "Patricia", users[0].FirstName)
}

func TestPutUserRejects(t *testing.T) {
	e := newTestEnv(t)

	code, reply := e.do(t, http.MethodPut, "/user", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, int64(-1), reply.UserID)

	code, reply = e.do(t, http.MethodPut, "/user", PutUserRequest{FirstName: "Pat"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, int64(-1), reply.UserID)
}

func TestUploadAndGetImage(t *testing.T) {
	e := newTestEnv(t)
	userID := e.putUser(t, "pat@example.com", "pat")
	assetID := e.upload(t, userID, "degu.jpg")

	code, reply := e.do(t, http.MethodGet, fmt.Sprintf("/image/%d", assetID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", reply.Message)
	assert.Equal(t, userID, reply.UserID)
	assert.Equal(t, "degu.jpg", reply.AssetName)
	assert.Regexp(t, `^pat/[0-9a-f-]{36}\.jpg$`, reply.BucketKey)

	var data string
	require.NoError(t, json.Unmarshal(reply.Data, &data))
	assert.Equal(t, base64.StdEncoding.EncodeToString(jpegBytes), data)

	named := e.upload(t, userID, "holiday photos/café.jpg")
	code, reply = e.do(t, http.MethodGet, fmt.Sprintf("/image/%d", named), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "holiday photos/café.jpg", reply.AssetName)

	code, reply = e.do(t, http.MethodGet, "/assets", nil)
	assert.Equal(t, http.StatusOK, code)
	assets := []models.Asset{}
	require.NoError(t, json.Unmarshal(reply.Data, &assets))
	require.Len(t, assets, 2)
	assert.Equal(t, uint64(assetID), assets[0].AssetID)
}

func TestGetImageErrors(t *testing.T) {
	e := newTestEnv(t)

	code, reply := e.do(t, http.MethodGet, "/image/99999", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No such asset...", reply.Message)
	assert.Equal(t, int64(-1), reply.UserID)
	assert.Equal(t, "?", reply.AssetName)
	assert.JSONEq(t, `[]`, string(reply.Data))

	code, reply = e.do(t, http.MethodGet, "/image/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `[]`, string(reply.Data))

	// the row exists but its object is gone
	orphan := models.Asset{UserID: 1, AssetName: "gone.jpg", BucketKey: "pat/gone.jpg"}
	require.NoError(t, models.AssetCreate(context.Background(), e.db, &orphan))
	code, _ = e.do(t, http.MethodGet, fmt.Sprintf("/image/%d", orphan.AssetID), nil)
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestPostImageErrors(t *testing.T) {
	e := newTestEnv(t)
	userID := e.putUser(t, "pat@example.com", "pat")
	image := base64.StdEncoding.EncodeToString(jpegBytes)

	code, reply := e.do(t, http.MethodPost, "/image/424242", PostImageRequest{AssetName: "a.jpg", Data: image})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No such user...", reply.Message)
	assert.Equal(t, int64(-1), reply.AssetID)

	code, reply = e.do(t, http.MethodPost, "/image/-3", PostImageRequest{AssetName: "a.jpg", Data: image})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, int64(-1), reply.AssetID)

	code, _ = e.do(t, http.MethodPost, fmt.Sprintf("/image/%d", userID), PostImageRequest{AssetName: "a.jpg", Data: "not base64!"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodPost, fmt.Sprintf("/image/%d", userID), "[")
	assert.Equal(t, http.StatusBadRequest, code)

	_, reply = e.do(t, http.MethodGet, "/assets", nil)
	assert.JSONEq(t, `[]`, string(reply.Data))
}

func TestLabels(t *testing.T) {
	e := newTestEnv(t)
	userID := e.putUser(t, "pat@example.com", "pat")
	assetID := e.upload(t, userID, "dog.jpg")
	e.detector.labels = []vision.Label{
		{Name: "Outdoors", Confidence: 99.87},
		{Name: "Animal", Confidence: 91.99},
		{Name: "Dog", Confidence: 85.5},
	}

	path := fmt.Sprintf("/labels/%d", assetID)
	code, fresh := e.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code, fresh.Message)
	assert.Equal(t, "dog.jpg", fresh.AssetName)
	assert.JSONEq(t, `[{"name":"Outdoors","confidence":99},{"name":"Animal","confidence":91},{"name":"Dog","confidence":85}]`, string(fresh.Data))

	code, stored := e.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[{"name":"Animal","confidence":91},{"name":"Dog","confidence":85},{"name":"Outdoors","confidence":99}]`, string(stored.Data))
	assert.Equal(t, 1, e.detector.calls)
	require.Len(t, e.detector.keys, 1)
	assert.Regexp(t, `^photoapp:pat/`, e.detector.keys[0])
	assert.Equal(t, [][]byte{jpegBytes}, e.detector.bodies)

	code, found := e.do(t, http.MethodGet, "/images/Dog", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, fmt.Sprintf(`[{"asset_id":%d,"confidence":85}]`, assetID), string(found.Data))

	code, found = e.do(t, http.MethodGet, "/images/Cat", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(found.Data))
}

func TestLabelsErrors(t *testing.T) {
	e := newTestEnv(t)

	code, reply := e.do(t, http.MethodGet, "/labels/99999", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No such asset...", reply.Message)
	assert.Equal(t, "?", reply.AssetName)
	assert.Zero(t, e.detector.calls)

	code, _ = e.do(t, http.MethodGet, "/labels/x1", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	userID := e.putUser(t, "pat@example.com", "pat")
	assetID := e.upload(t, userID, "blank.jpg")
	path := fmt.Sprintf("/labels/%d", assetID)

	// nothing found: success, but nothing stored either
	code, reply = e.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(reply.Data))

	e.detector.err = errors.New("ThrottlingException")
	code, reply = e.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "?", reply.AssetName)
	assert.Equal(t, 2, e.detector.calls)
}

func TestBucketPaging(t *testing.T) {
	e := newTestEnv(t)
	userID := e.putUser(t, "pat@example.com", "pat")
	for i := 0; i < 13; i++ {
		e.upload(t, userID, fmt.Sprintf("%d.jpg", i))
	}

	code, reply := e.do(t, http.MethodGet, "/bucket", nil)
	require.Equal(t, http.StatusOK, code)
	first := []storage.Object{}
	require.NoError(t, json.Unmarshal(reply.Data, &first))
	require.Len(t, first, 12)

	cursor := first[len(first)-1].Key
	code, reply = e.do(t, http.MethodGet, "/bucket?startafter="+url.QueryEscape(cursor), nil)
	require.Equal(t, http.StatusOK, code)
	second := []storage.Object{}
	require.NoError(t, json.Unmarshal(reply.Data, &second))
	require.Len(t, second, 1)
	assert.Greater(t, second[0].Key, cursor)

	code, reply = e.do(t, http.MethodGet, "/bucket?startafter="+url.QueryEscape(second[0].Key), nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(reply.Data))
}

func TestResponsesAreNotCached(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{"/users", "/image/99999"} {
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"), path)
	}
}

func TestStats(t *testing.T) {
	e := newTestEnv(t)
	userID := e.putUser(t, "pat@example.com", "pat")
	e.putUser(t, "sam@example.com", "sam")
	e.upload(t, userID, "a.jpg")

	code, reply := e.do(t, http.MethodGet, "/stats", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", reply.Message)
	assert.Equal(t, int64(2), reply.Users)
	assert.Equal(t, int64(1), reply.Assets)
}
