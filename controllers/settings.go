package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"erpbackend/middleware"
	"erpbackend/models"
	"erpbackend/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// SettingsStore gives the rest of the API best effort access to settings.
// Failures are logged and reported as a nil result.
type SettingsStore struct {
	coll store.Collection
	log  *zap.Logger
}

func NewSettingsStore(coll store.Collection, log *zap.Logger) *SettingsStore {
	return &SettingsStore{coll: coll, log: log}
}

// IncreaseBySettingKey atomically adds one to a numeric setting.
func (s *SettingsStore) IncreaseBySettingKey(ctx context.Context, key string) bson.M {
	doc, err := s.coll.FindOneAndUpdate(ctx, bson.M{"settingKey": key}, bson.M{"$inc": bson.M{"settingValue": 1}})
	if err != nil {
		s.log.Error("increase setting failed", zap.String("settingKey", key), zap.Error(err))
		return nil
	}
	return doc
}

func (s *SettingsStore) ReadBySettingKey(ctx context.Context, key string) bson.M {
	doc, err := s.coll.FindOne(ctx, bson.M{"settingKey": key})
	if err != nil {
		s.log.Error("read setting failed", zap.String("settingKey", key), zap.Error(err))
		return nil
	}
	return doc
}

// LoadSettings returns every setting that is not removed, keyed by its
// settingKey. Documents that cannot be decoded are skipped.
func (s *SettingsStore) LoadSettings(ctx context.Context) models.Settings {
	docs, err := s.coll.Find(ctx, bson.M{"removed": false}, store.FindOptions{})
	if err != nil {
		s.log.Error("list settings failed", zap.Error(err))
		return nil
	}
	settings := make(models.Settings, len(docs))
	for _, doc := range docs {
		var setting models.Setting
		if err := models.Decode(doc, &setting); err != nil {
			s.log.Warn("skipping setting", zap.Any("_id", doc["_id"]), zap.Error(err))
			continue
		}
		if setting.SettingKey != "" {
			settings[setting.SettingKey] = setting.SettingValue
		}
	}
	return settings
}

// SettingController serves the setting entity. The generic operations come
// from CRUD; the key based ones are defined here.
type SettingController struct {
	*CRUD
}

func NewSettingController(coll store.Collection) *SettingController {
	return &SettingController{CRUD: NewCRUD("setting", coll)}
}

func noSettingKey(c *gin.Context) {
	c.JSON(http.StatusAccepted, gin.H{
		"success": false,
		"result":  nil,
		"message": "No settingKey provided ",
	})
}

// ListAll hides private settings.
func (h *SettingController) ListAll(c *gin.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var sort interface{} = "desc"
	if n, err := strconv.Atoi(c.Query("sort")); err == nil && n != 0 {
		sort = n
	}

	result, err := h.Collection.Find(ctx, bson.M{"removed": false, "isPrivate": false}, store.FindOptions{
		Sort: bson.D{{Key: "created", Value: sort}},
	})
	if err != nil {
		return fmt.Errorf("list settings: %w", err)
	}

	if len(result) == 0 {
		c.JSON(http.StatusNonAuthoritativeInfo, gin.H{
			"success": false,
			"result":  []bson.M{},
			"message": "Collection is Empty",
		})
		return nil
	}
	success(c, result, "Successfully found all documents")
	return nil
}

func (h *SettingController) ListBySettingKey(c *gin.Context) error {
	var keys []string
	for _, k := range strings.Split(c.Query("settingKeyArray"), ",") {
		if k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		c.JSON(http.StatusAccepted, gin.H{
			"success": false,
			"result":  []bson.M{},
			"message": "No settingKey provided ",
		})
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	or := bson.A{}
	for _, k := range keys {
		or = append(or, bson.M{"settingKey": k})
	}
	result, err := h.Collection.Find(ctx, bson.M{"$or": or, "removed": false}, store.FindOptions{})
	if err != nil {
		return fmt.Errorf("list settings by key: %w", err)
	}

	if len(result) == 0 {
		c.JSON(http.StatusAccepted, gin.H{
			"success": false,
			"result":  []bson.M{},
			"message": "No document found by this request",
		})
		return nil
	}
	success(c, result, "Successfully found all documents")
	return nil
}

func (h *SettingController) ReadBySettingKey(c *gin.Context) error {
	key := c.Param("settingKey")
	if key == "" {
		noSettingKey(c)
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := findOptional(ctx, h.Collection, bson.M{"settingKey": key})
	if err != nil {
		return fmt.Errorf("read setting %s: %w", key, err)
	}
	if result == nil {
		notFound(c, "No document found by this settingKey: "+key)
		return nil
	}

	success(c, result, "we found this document by this settingKey: "+key)
	return nil
}

func (h *SettingController) UpdateBySettingKey(c *gin.Context) error {
	key := c.Param("settingKey")
	if key == "" {
		noSettingKey(c)
		return nil
	}

	body, err := readBody(c)
	if err != nil {
		return err
	}
	value, present := body["settingValue"]
	if !present || value == nil || value == "" {
		c.JSON(http.StatusAccepted, gin.H{
			"success": false,
			"result":  nil,
			"message": "No settingValue provided ",
		})
		return nil
	}

	return h.updateValue(c, key, value)
}

// Upload stores the object path written by the upload middleware as the
// setting value.
func (h *SettingController) Upload(c *gin.Context) error {
	key := c.Param("settingKey")
	if key == "" {
		noSettingKey(c)
		return nil
	}

	upload, found := middleware.UploadedFile(c)
	if !found || upload.FilePath == "" {
		c.JSON(http.StatusAccepted, gin.H{
			"success": false,
			"result":  nil,
			"message": "No file provided ",
		})
		return nil
	}

	return h.updateValue(c, key, upload.FilePath)
}

func (h *SettingController) updateValue(c *gin.Context, key string, value interface{}) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := updateOptional(ctx, h.Collection, bson.M{"settingKey": key}, bson.M{"settingValue": value})
	if err != nil {
		return fmt.Errorf("update setting %s: %w", key, err)
	}
	if result == nil {
		notFound(c, "No document found by this settingKey: "+key)
		return nil
	}

	success(c, result, "we update this document by this settingKey: "+key)
	return nil
}

func (h *SettingController) UpdateManySetting(c *gin.Context) error {
	var body struct {
		Settings []map[string]interface{} `json:"settings"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode settings: %w", err)
	}

	if len(body.Settings) == 0 {
		c.JSON(http.StatusAccepted, gin.H{
			"success": false,
			"result":  nil,
			"message": "No settings provided ",
		})
		return nil
	}

	ops := make([]store.UpdateOp, 0, len(body.Settings))
	for _, setting := range body.Settings {
		key, hasKey := setting["settingKey"]
		value, hasValue := setting["settingValue"]
		if !hasKey || !hasValue {
			c.JSON(http.StatusAccepted, gin.H{
				"success": false,
				"result":  nil,
				"message": "Settings provided has Error",
			})
			return nil
		}
		ops = append(ops, store.UpdateOp{
			Filter: bson.M{"settingKey": key},
			Update: bson.M{"settingValue": value},
		})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	matched, err := h.Collection.BulkUpdate(ctx, ops)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if matched == 0 {
		notFound(c, "No settings found by to update")
		return nil
	}

	success(c, []bson.M{}, "we update all settings")
	return nil
}
