package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"erpbackend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const UploadKey = "upload"

// Upload describes the file stored by SingleUpload. FilePath is empty when the
// request carried no file.
type Upload struct {
	FileName  string
	FieldExt  string
	Entity    string
	FieldName string
	FileType  string
	FilePath  string
}

var fileTypes = map[string][]string{
	"image": {"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp", "image/svg+xml"},
	"pdf":   {"application/pdf"},
	"video": {"video/mp4", "video/mpeg", "video/ogg", "video/webm", "video/quicktime", "video/x-msvideo"},
	"audio": {"audio/mpeg", "audio/ogg", "audio/wav", "audio/webm", "audio/aac"},
	"text": {
		"text/plain",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	},
	"excel": {
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	},
	"compressed": {
		"application/zip",
		"application/x-zip-compressed",
		"application/vnd.rar",
		"application/x-rar-compressed",
		"application/x-7z-compressed",
		"application/gzip",
		"application/x-tar",
	},
}

var errInvalidFileType = errors.New("invalid file type")

// FileFilter reports whether mimetype is accepted for fileType. Unknown types
// and "default" accept anything.
func FileFilter(fileType, mimetype string) bool {
	allowed, ok := fileTypes[fileType]
	if !ok {
		return true
	}
	for _, m := range allowed {
		if m == mimetype {
			return true
		}
	}
	return false
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// SingleUpload stores the multipart file in field under
// public/uploads/<entity>/ and records an Upload in the context for the
// controller.
func SingleUpload(st storage.Storage, entity, fileType, field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := &Upload{Entity: entity, FieldName: field, FileType: fileType}

		file, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			c.Set(UploadKey, info)
			c.Next()
			return
		}
		if err != nil {
			uploadFailed(c, err)
			return
		}

		mimetype := file.Header.Get("Content-Type")
		if !FileFilter(fileType, mimetype) {
			uploadFailed(c, errInvalidFileType)
			return
		}

		src, err := file.Open()
		if err != nil {
			uploadFailed(c, err)
			return
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			uploadFailed(c, err)
			return
		}
		if strings.HasPrefix(mimetype, "image/") && int64(len(data)) > storage.CompressThreshold {
			if data, err = storage.Downscale(data, mimetype); err != nil {
				uploadFailed(c, err)
				return
			}
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		base := slugify(strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename)))
		info.FieldExt = ext
		info.FileName = fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext)
		info.FilePath = fmt.Sprintf("public/uploads/%s/%s", entity, info.FileName)

		_, err = st.Put(c.Request.Context(), info.FilePath, bytes.NewReader(data), storage.PutObjectOptions{
			Size:        int64(len(data)),
			ContentType: mimetype,
		})
		if err != nil {
			uploadFailed(c, err)
			return
		}

		c.Set(UploadKey, info)
		c.Next()
	}
}

func uploadFailed(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success":    false,
		"result":     nil,
		"controller": "SingleUpload",
		"message":    "Error on uploading file",
		"error":      err.Error(),
	})
}

// UploadedFile returns what SingleUpload recorded for this request.
func UploadedFile(c *gin.Context) (*Upload, bool) {
	v, ok := c.Get(UploadKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*Upload)
	return u, ok
}
