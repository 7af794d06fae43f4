// Package controllers holds the request handlers of the API. Every handler
// returns an error for unexpected failures and leaves the 500 answer to
// handlers.CatchErrors.
package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"erpbackend/config"
	"erpbackend/middleware"
	"erpbackend/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const requestTimeout = 10 * time.Second

// createdByPopulate expands the author of a document to its name.
var createdByPopulate = store.Populate{Path: "createdBy", From: config.AdminCollection, Fields: []string{"name"}}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// findOptional returns nil instead of mongo.ErrNoDocuments.
func findOptional(ctx context.Context, coll store.Collection, filter bson.M, populate ...store.Populate) (bson.M, error) {
	doc, err := coll.FindOne(ctx, filter, populate...)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return doc, err
}

func updateOptional(ctx context.Context, coll store.Collection, filter, update bson.M) (bson.M, error) {
	doc, err := coll.FindOneAndUpdate(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return doc, err
}

// readBody decodes a JSON body, or the form fields of a multipart body merged
// with the file stored by the upload middleware.
func readBody(c *gin.Context) (bson.M, error) {
	body := bson.M{}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		for key, values := range form.Value {
			if len(values) > 0 {
				body[key] = values[0]
			}
		}
		if upload, ok := middleware.UploadedFile(c); ok && upload.FilePath != "" {
			body[upload.FieldName] = upload.FilePath
		}
		return body, nil
	}

	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return body, nil
		}
		return nil, fmt.Errorf("decode body: %w", err)
	}
	for k, v := range raw {
		body[k] = v
	}
	return body, nil
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"result":  nil,
		"message": message,
	})
}

func success(c *gin.Context, result interface{}, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
		"message": message,
	})
}

// percentage rounds part/total to a whole percent. A zero total yields 0.
func percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(part / total * 100)
}
