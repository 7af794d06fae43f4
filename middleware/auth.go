package middleware

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"erpbackend/models"
	"erpbackend/store"
	"erpbackend/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// Context keys set by IsValidAuthToken.
const (
	AdminKey = "admin"
	TokenKey = "token"
)

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":    false,
		"result":     nil,
		"message":    message,
		"jwtExpired": true,
	})
}

func bearerToken(c *gin.Context) string {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// IsValidAuthToken admits a request only when its bearer token verifies
// against the secret held in the environment variable secretName, the admin
// it names still exists and the token is one of the admin's logged sessions.
func IsValidAuthToken(admins, passwords store.Collection, secretName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthorized(c, "No authentication token, authorization denied.")
			return
		}

		claims, err := utils.ValidateToken(token, []byte(os.Getenv(secretName)))
		if err != nil {
			if errors.Is(err, utils.ErrTokenMalformed) {
				abortWithError(c, err)
				return
			}
			unauthorized(c, "Token verification failed, authorization denied.")
			return
		}

		var admin, credential bson.M
		g, ctx := errgroup.WithContext(c.Request.Context())
		g.Go(func() error {
			var err error
			admin, err = findOptional(ctx, admins, bson.M{"_id": store.ID(claims.ID), "removed": false})
			return err
		})
		g.Go(func() error {
			var err error
			credential, err = findOptional(ctx, passwords, bson.M{"user": store.ID(claims.ID), "removed": false})
			return err
		})
		if err := g.Wait(); err != nil {
			abortWithError(c, err)
			return
		}

		if admin == nil {
			unauthorized(c, "User doens't Exist, authorization denied.")
			return
		}

		var record models.AdminPassword
		if credential != nil {
			if err := models.Decode(credential, &record); err != nil {
				abortWithError(c, err)
				return
			}
		}
		if !record.HasSession(token) {
			unauthorized(c, "User is already logout try to login, authorization denied.")
			return
		}

		c.Set(AdminKey, admin)
		c.Set(TokenKey, token)
		c.Next()
	}
}

func findOptional(ctx context.Context, coll store.Collection, filter bson.M) (bson.M, error) {
	doc, err := coll.FindOne(ctx, filter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return doc, err
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"success":    false,
		"result":     nil,
		"message":    err.Error(),
		"error":      err.Error(),
		"controller": "isValidAuthToken",
		"jwtExpired": true,
	})
}

// CurrentAdmin returns the admin attached by IsValidAuthToken.
func CurrentAdmin(c *gin.Context) (bson.M, bool) {
	v, ok := c.Get(AdminKey)
	if !ok {
		return nil, false
	}
	admin, ok := v.(bson.M)
	return admin, ok && admin != nil
}

// CurrentToken returns the bearer token of an authenticated request.
func CurrentToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}
