package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"erpbackend/middleware"
	"erpbackend/models"
	"erpbackend/store"
	"erpbackend/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

var errNoCredential = errors.New("no credential record for admin")

// AuthController issues and revokes session tokens. The signing secret is
// read from the environment variable named by SecretName, the same one the
// auth guard reads.
type AuthController struct {
	Admins     store.Collection
	Passwords  store.Collection
	Settings   *SettingsStore
	Mailer     utils.Mailer
	SecretName string
	AppEmail   string
	BaseURL    string
}

type loginInput struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Remember interface{} `json:"remember"`
}

type emailInput struct {
	Email string `json:"email" validate:"required,email"`
}

type resetInput struct {
	Password   string `json:"password" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
	ResetToken string `json:"resetToken" validate:"required"`
}

func (h *AuthController) secret() []byte {
	return []byte(os.Getenv(h.SecretName))
}

func invalidPayload(c *gin.Context, message, detail string) {
	c.JSON(http.StatusConflict, gin.H{
		"success":      false,
		"result":       nil,
		"error":        detail,
		"message":      message,
		"errorMessage": detail,
	})
}

func accountDisabled(c *gin.Context) {
	c.JSON(http.StatusConflict, gin.H{
		"success": false,
		"result":  nil,
		"message": "Your account is disabled, contact your account adminstrator",
	})
}

func noAccount(c *gin.Context) {
	notFound(c, "No account with this email has been registered.")
}

func decodeAdmin(doc bson.M) (*models.Admin, error) {
	var admin models.Admin
	if err := models.Decode(doc, &admin); err != nil {
		return nil, fmt.Errorf("decode admin: %w", err)
	}
	return &admin, nil
}

// profile is the public part of an admin returned with a fresh token.
func profile(admin *models.Admin, token string, maxAge interface{}) gin.H {
	return gin.H{
		"_id":     admin.ID,
		"name":    admin.Name,
		"surname": admin.Surname,
		"role":    admin.Role,
		"email":   admin.Email,
		"photo":   admin.Photo,
		"token":   token,
		"maxAge":  maxAge,
	}
}

func (h *AuthController) Login(c *gin.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	var input loginInput
	msg, err := decodeInto(body, &input)
	if err != nil {
		return err
	}
	if msg != "" {
		middleware.AuthLoginsTotal.WithLabelValues("invalid").Inc()
		invalidPayload(c, "Invalid/Missing credentials.", msg)
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := findOptional(ctx, h.Admins, bson.M{"email": input.Email, "removed": false})
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}
	if doc == nil {
		middleware.AuthLoginsTotal.WithLabelValues("unknown").Inc()
		noAccount(c)
		return nil
	}
	admin, err := decodeAdmin(doc)
	if err != nil {
		return err
	}

	credential, err := findOptional(ctx, h.Passwords, bson.M{"user": admin.ID, "removed": false})
	if err != nil {
		return fmt.Errorf("find credential: %w", err)
	}
	if !admin.IsEnabled() {
		middleware.AuthLoginsTotal.WithLabelValues("disabled").Inc()
		accountDisabled(c)
		return nil
	}
	if credential == nil {
		return errNoCredential
	}

	var password models.AdminPassword
	if err = models.Decode(credential, &password); err != nil {
		return err
	}
	match, err := utils.VerifyPassword(password.Password, password.Salt, input.Password)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !match {
		middleware.AuthLoginsTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"result":  nil,
			"message": "Invalid credentials.",
		})
		return nil
	}

	remember := utils.IsTruthy(input.Remember)
	ttl := utils.TokenTTL(remember)
	token, err := utils.GenerateToken(admin.ID.Hex(), ttl, h.secret())
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	if _, err = h.Passwords.FindOneAndUpdate(ctx, bson.M{"_id": credential["_id"]}, bson.M{
		"$push": bson.M{"loggedSessions": token},
	}); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	middleware.AuthLoginsTotal.WithLabelValues("success").Inc()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", token, int(ttl.Seconds()), "/", "", c.Request.TLS != nil, true)

	var maxAge interface{}
	if remember {
		maxAge = 365
	}
	success(c, profile(admin, token, maxAge), "Successfully login user")
	return nil
}

// Logout revokes the bearer token of the request, or every session of the
// admin when there is none.
func (h *AuthController) Logout(c *gin.Context) error {
	adminID, found := currentAdminID(c)
	if !found {
		return errNoAdmin
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	update := bson.M{"$set": bson.M{"loggedSessions": []string{}}}
	if token := middleware.CurrentToken(c); token != "" {
		update = bson.M{"$pull": bson.M{"loggedSessions": token}}
	}
	if _, err := updateOptional(ctx, h.Passwords, bson.M{"user": adminID}, update); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  gin.H{},
		"message": "Successfully logout",
	})
	return nil
}

func (h *AuthController) ForgetPassword(c *gin.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	var input emailInput
	msg, err := decodeInto(body, &input)
	if err != nil {
		return err
	}
	if msg != "" {
		invalidPayload(c, "Invalid email.", msg)
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := findOptional(ctx, h.Admins, bson.M{"email": input.Email, "removed": false})
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}
	if doc == nil {
		noAccount(c)
		return nil
	}
	admin, err := decodeAdmin(doc)
	if err != nil {
		return err
	}
	credential, err := findOptional(ctx, h.Passwords, bson.M{"user": admin.ID, "removed": false})
	if err != nil {
		return fmt.Errorf("find credential: %w", err)
	}
	if credential == nil {
		noAccount(c)
		return nil
	}

	resetToken := utils.NewToken()
	if _, err = h.Passwords.FindOneAndUpdate(ctx, bson.M{"user": admin.ID}, bson.M{
		"$set": bson.M{"resetToken": resetToken},
	}); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	settings := h.Settings.LoadSettings(ctx)
	appEmail := settings.StringOr(models.SettingAppEmail, h.AppEmail)
	baseURL := settings.StringOr(models.SettingBaseURL, h.BaseURL)
	link := utils.CheckAndCorrectURL(baseURL) + "/resetpassword/" + admin.ID.Hex() + "/" + resetToken

	err = utils.SendMail(ctx, h.Mailer, utils.MailRequest{
		Email:    input.Email,
		Name:     admin.Name,
		Link:     link,
		Subject:  "Reset your password | idurar",
		AppEmail: appEmail,
		Type:     utils.MailPasswordVerification,
	})
	if err != nil {
		return err
	}

	success(c, nil, "Check your email inbox , to reset your password")
	return nil
}

func (h *AuthController) ResetPassword(c *gin.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	userID, _ := body["userId"].(string)
	resetToken, _ := body["resetToken"].(string)

	ctx, cancel := requestContext(c)
	defer cancel()

	id := store.ID(userID)
	doc, err := findOptional(ctx, h.Admins, bson.M{"_id": id, "removed": false})
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}
	if doc == nil {
		noAccount(c)
		return nil
	}
	admin, err := decodeAdmin(doc)
	if err != nil {
		return err
	}
	if !admin.IsEnabled() {
		accountDisabled(c)
		return nil
	}
	credential, err := findOptional(ctx, h.Passwords, bson.M{"user": id, "removed": false})
	if err != nil {
		return fmt.Errorf("find credential: %w", err)
	}
	if credential == nil {
		noAccount(c)
		return nil
	}

	stored, _ := credential["resetToken"].(string)
	if stored == "" || stored != resetToken {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"result":  nil,
			"message": "Invalid reset token",
		})
		return nil
	}

	var input resetInput
	msg, err := decodeInto(body, &input)
	if err != nil {
		return err
	}
	if msg != "" {
		invalidPayload(c, "Invalid reset password object", msg)
		return nil
	}
	if utils.PasswordTooLong(input.Password) {
		invalidPayload(c, "Invalid reset password object", fmt.Sprintf("%q length must be less than or equal to %d characters long", "password", utils.MaxPasswordLength))
		return nil
	}

	salt := utils.NewSalt()
	hash, err := utils.HashPassword(salt, input.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	token, err := utils.GenerateToken(admin.ID.Hex(), utils.SessionTTL, h.secret())
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	if _, err = h.Passwords.FindOneAndUpdate(ctx, bson.M{"user": admin.ID}, bson.M{
		"$set": bson.M{
			"password":       hash,
			"salt":           salt,
			"emailVerified":  true,
			"resetToken":     utils.NewToken(),
			"loggedSessions": []string{token},
		},
	}); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	success(c, profile(admin, token, nil), "Successfully resetPassword user")
	return nil
}
