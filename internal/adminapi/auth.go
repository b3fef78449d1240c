package adminapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/phonemart/phonemart/internal/domain"
	"github.com/phonemart/phonemart/pkg/common"
	"github.com/phonemart/phonemart/internal/webserver"
)

type loginPayload struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1,max=128"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Level    string `json:"level"`
	Expires  int64  `json:"expires"`
}

func registerAuthRoutes() {
	webserver.PubPOST("/api/v1/login", login)
	webserver.ApiGET("/current/session", currentSession)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var opr domain.SysOpr
	err := GetDB(c).Where("username = ? AND status = ?", payload.Username, "enabled").First(&opr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operator", err.Error())
	}

	if bcrypt.CompareHashAndPassword([]byte(opr.Password), []byte(payload.Password)) != nil {
		zap.L().Warn("login rejected", zap.String("username", payload.Username), zap.String("remote", c.RealIP()))
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}

	expires := time.Now().Add(24 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": opr.ID,
		"usr": opr.Username,
		"lvl": opr.Level,
		"exp": expires.Unix(),
	})
	signed, err := token.SignedString([]byte(GetAppContext(c).Config().Web.Secret))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to sign session token", nil)
	}

	GetDB(c).Model(&domain.SysOpr{}).Where("id = ?", opr.ID).Update("last_login", time.Now())
	GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   opr.Username,
		OprIp:     c.RealIP(),
		OptAction: "login",
		OptDesc:   "operator login",
		OptTime:   time.Now(),
	})

	return ok(c, loginResponse{
		Token:    signed,
		Username: opr.Username,
		Level:    opr.Level,
		Expires:  expires.Unix(),
	})
}

func currentSession(c echo.Context) error {
	token, is := c.Get("user").(*jwt.Token)
	if !is {
		return fail(c, http.StatusUnauthorized, "NO_SESSION", "No active session", nil)
	}
	claims, is := token.Claims.(jwt.MapClaims)
	if !is {
		return fail(c, http.StatusUnauthorized, "NO_SESSION", "No active session", nil)
	}
	return ok(c, map[string]interface{}{
		"username": claims["usr"],
		"level":    claims["lvl"],
	})
}
