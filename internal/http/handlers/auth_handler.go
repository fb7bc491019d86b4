// README: Auth handlers: driver phone login, admin password login, admin profile.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"autometer/internal/modules/account"
)

type AuthHandler struct {
	accounts *account.Service
	log      *slog.Logger
}

func NewAuthHandler(svc *account.Service, log *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: svc, log: log}
}

type loginReq struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

type adminLoginReq struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type updateProfileReq struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phoneNumber"`
	Password    *string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.accounts.Login(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, "", sess)
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req adminLoginReq
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.accounts.AdminLogin(c.Request.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, "", sess)
}

func (h *AuthHandler) AdminProfile(c *gin.Context) {
	acc, err := h.accounts.AdminProfile(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, "", acc)
}

func (h *AuthHandler) UpdateAdminProfile(c *gin.Context) {
	var req updateProfileReq
	if !bindJSON(c, &req) {
		return
	}
	acc, err := h.accounts.UpdateAdminProfile(c.Request.Context(), account.ProfileUpdate{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, "Admin profile updated successfully", acc)
}
