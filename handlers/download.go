package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"erpbackend/storage"
	"erpbackend/store"
	"erpbackend/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DownloadPDF renders /download/:directory/:file, where file is
// "<directory>-<id>.pdf", and keeps a copy in object storage when one is
// configured.
func DownloadPDF(registry *store.Registry, st storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		directory := c.Param("directory")
		file := c.Param("file")

		modelName := directory
		if directory != "" {
			modelName = strings.ToUpper(directory[:1]) + directory[1:]
		}

		coll, ok := registry.Lookup(directory)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"result":  nil,
				"message": fmt.Sprintf("Model '%s' does not exist", modelName),
			})
			return
		}

		id := strings.TrimSuffix(strings.TrimPrefix(file, directory+"-"), ".pdf")
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"result":  nil,
				"error":   err.Error(),
				"message": "Invalid ID",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		doc, err := coll.FindOne(ctx, bson.M{"_id": oid, "removed": false})
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"result":  nil,
				"error":   err.Error(),
				"message": "Required fields are not supplied",
			})
			return
		}
		if err != nil {
			downloadFailed(c, err)
			return
		}

		var buf bytes.Buffer
		if err := utils.RenderPDF(directory, doc, &buf); err != nil {
			downloadFailed(c, err)
			return
		}

		fileID := fmt.Sprintf("%s-%s.pdf", strings.ToLower(directory), oid.Hex())
		key := fmt.Sprintf("download/%s/%s", strings.ToLower(directory), fileID)
		_, err = st.Put(ctx, key, bytes.NewReader(buf.Bytes()), storage.PutObjectOptions{
			Size:        int64(buf.Len()),
			ContentType: "application/pdf",
		})
		if err != nil && !errors.Is(err, storage.ErrDisabled) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"result":  nil,
				"message": "Couldn't find file",
				"error":   err.Error(),
			})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileID))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}

func downloadFailed(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success":    false,
		"result":     nil,
		"error":      err.Error(),
		"message":    err.Error(),
		"controller": "downloadPDF",
	})
}
