package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/ASMFahim71/ledgerly/internal/apperr"
	"github.com/ASMFahim71/ledgerly/internal/config"
	"github.com/ASMFahim71/ledgerly/internal/models"
	"github.com/ASMFahim71/ledgerly/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves register/login/logout/me.
type AuthHandler struct {
	DB         *gorm.DB
	JWT        config.JWTConfig
	BcryptCost int
}

func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, bcryptCost int) *AuthHandler {
	if jwtCfg.ExpireHours <= 0 {
		jwtCfg.ExpireHours = 24
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		DB:         db,
		JWT:        jwtCfg,
		BcryptCost: bcryptCost,
	}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validateRegister(req *registerReq) map[string]string {
	errs := make(map[string]string)

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Name == "" {
		errs["name"] = "Name is required!"
	} else if len(req.Name) > 100 {
		errs["name"] = "Name must be less than 100 characters"
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		errs["email"] = "Please enter a valid email address!"
	}
	if len(req.Password) < 8 {
		errs["password"] = "Password must contain at least 8 characters!"
	} else if len(req.Password) > 72 {
		errs["password"] = "Password must be less than 72 characters!"
	}

	return errs
}

// sendToken issues the JWT, sets the http-only auth cookie and writes the
// token plus the user in the response body.
func (h *AuthHandler) sendToken(c *gin.Context, user *models.User, status int) {
	ttl := time.Duration(h.JWT.ExpireHours) * time.Hour
	token, err := util.GenerateToken(h.JWT.Secret, h.JWT.Issuer, user.ID, ttl)
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't issue token!", err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.JWT.CookieName, token, int(ttl.Seconds()), "/", "", gin.Mode() == gin.ReleaseMode, true)

	c.JSON(status, gin.H{
		"status": true,
		"data": util.Response{
			"token": token,
			"user":  user,
		},
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation(map[string]string{"body": "Invalid request body!"}))
		return
	}

	if errs := validateRegister(&req); len(errs) > 0 {
		util.Fail(c, apperr.Validation(errs))
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("email = ?", req.Email).
		Count(&count).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't look up user!", err))
		return
	}
	if count > 0 {
		util.Fail(c, apperr.Conflict("Email already in use!"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't hash password!", err))
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't create user!", err))
		return
	}

	h.sendToken(c, &user, http.StatusCreated)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation(map[string]string{"body": "Invalid request body!"}))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	errs := make(map[string]string)
	if err := util.ValidateEmail(req.Email); err != nil {
		errs["email"] = "Please enter a valid email address!"
	}
	if len(req.Password) < 8 {
		errs["password"] = "Password must contain at least 8 characters!"
	}
	if len(errs) > 0 {
		util.Fail(c, apperr.Validation(errs))
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Fail(c, apperr.Unauthenticated("Incorrect email or password"))
		} else {
			util.Fail(c, apperr.Internal("Couldn't look up user!", err))
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		util.Fail(c, apperr.Unauthenticated("Incorrect email or password"))
		return
	}

	h.sendToken(c, &user, http.StatusOK)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.JWT.CookieName, "", -1, "/", "", gin.Mode() == gin.ReleaseMode, true)
	util.Message(c, "Logout successful!")
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	util.Success(c, util.Response{"user": user})
}
