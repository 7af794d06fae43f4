package controllers

import (
	"fmt"
	"net/http"

	"erpbackend/middleware"
	"erpbackend/models"
	"erpbackend/store"
	"erpbackend/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

const minPasswordLength = 8

// AdminController serves the profile of the signed in admin and password
// changes. Generic admin CRUD goes through CRUD.
type AdminController struct {
	*CRUD
	Passwords store.Collection
}

func NewAdminController(admins, passwords store.Collection) *AdminController {
	return &AdminController{CRUD: NewCRUD("admin", admins), Passwords: passwords}
}

var passwordTooLongMessage = fmt.Sprintf("The password must be at most %d characters long.", utils.MaxPasswordLength)

func passwordProblem(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"msg": msg})
}

func forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, gin.H{
		"success": false,
		"result":  nil,
		"message": message,
	})
}

func isDemo(c *gin.Context) bool {
	admin, ok := middleware.CurrentAdmin(c)
	return ok && admin["email"] == models.DemoEmail
}

// adminView is the part of an admin document shown on profile pages.
func adminView(doc bson.M) (gin.H, error) {
	admin, err := decodeAdmin(doc)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"_id":     admin.ID,
		"enabled": admin.IsEnabled(),
		"email":   admin.Email,
		"name":    admin.Name,
		"surname": admin.Surname,
		"photo":   admin.Photo,
		"role":    admin.Role,
	}, nil
}

func (h *AdminController) Profile(c *gin.Context) error {
	adminID, found := currentAdminID(c)
	if !found {
		return errNoAdmin
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	admin, err := findOptional(ctx, h.Collection, bson.M{"_id": adminID, "removed": false})
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	if admin == nil {
		notFound(c, "No document found ")
		return nil
	}

	view, err := adminView(admin)
	if err != nil {
		return err
	}
	success(c, view, "we found this document ")
	return nil
}

func (h *AdminController) UpdateProfile(c *gin.Context) error {
	adminID, found := currentAdminID(c)
	if !found {
		return errNoAdmin
	}
	if isDemo(c) {
		forbidden(c, "you couldn't update demo informations")
		return nil
	}

	body, err := readBody(c)
	if err != nil {
		return err
	}
	set := bson.M{}
	for _, key := range []string{"email", "name", "surname"} {
		if v, ok := body[key]; ok {
			set[key] = v
		}
	}
	if upload, ok := middleware.UploadedFile(c); ok && upload.FilePath != "" {
		set["photo"] = upload.FilePath
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"result":  nil,
			"message": "No profile fields provided",
		})
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	id := adminID.Hex()
	result, err := updateOptional(ctx, h.Collection, bson.M{"_id": adminID, "removed": false}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if result == nil {
		notFound(c, "No profile found by this id: "+id)
		return nil
	}

	view, err := adminView(result)
	if err != nil {
		return err
	}
	success(c, view, "we update this profile by this id: "+id)
	return nil
}

// UpdatePassword sets the password of the admin named in the path.
func (h *AdminController) UpdatePassword(c *gin.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	password, _ := body["password"].(string)
	if len(password) < minPasswordLength {
		passwordProblem(c, "The password needs to be at least 8 characters long.")
		return nil
	}
	if utils.PasswordTooLong(password) {
		passwordProblem(c, passwordTooLongMessage)
		return nil
	}
	if isDemo(c) {
		forbidden(c, "you couldn't update demo password")
		return nil
	}

	return h.savePassword(c, c.Param("id"), password)
}

// UpdateProfilePassword sets the password of the signed in admin.
func (h *AdminController) UpdateProfilePassword(c *gin.Context) error {
	adminID, found := currentAdminID(c)
	if !found {
		return errNoAdmin
	}

	body, err := readBody(c)
	if err != nil {
		return err
	}
	password, _ := body["password"].(string)
	check, _ := body["passwordCheck"].(string)
	if password == "" || check == "" {
		passwordProblem(c, "Not all fields have been entered.")
		return nil
	}
	if len(password) < minPasswordLength {
		passwordProblem(c, "The password needs to be at least 8 characters long.")
		return nil
	}
	if utils.PasswordTooLong(password) {
		passwordProblem(c, passwordTooLongMessage)
		return nil
	}
	if password != check {
		passwordProblem(c, "Enter the same password twice for verification.")
		return nil
	}
	if isDemo(c) {
		forbidden(c, "you couldn't update demo password")
		return nil
	}

	return h.savePassword(c, adminID.Hex(), password)
}

func (h *AdminController) savePassword(c *gin.Context, id, password string) error {
	salt := utils.NewSalt()
	hash, err := utils.HashPassword(salt, password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := updateOptional(ctx, h.Passwords, bson.M{"user": store.ID(id), "removed": false}, bson.M{
		"$set": bson.M{"password": hash, "salt": salt},
	})
	if err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	if result == nil {
		forbidden(c, "User Password couldn't save correctly")
		return nil
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  gin.H{},
		"message": "we update the password by this id: " + id,
	})
	return nil
}
