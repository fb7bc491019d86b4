// README: Admin handlers: driver enrolment, driver listing, earnings and ride corrections.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"autometer/internal/modules/account"
	"autometer/internal/modules/ledger"
)

type AdminHandler struct {
	accounts *account.Service
	ledger   *ledger.Service
	log      *slog.Logger
}

func NewAdminHandler(accounts *account.Service, ledgerSvc *ledger.Service, log *slog.Logger) *AdminHandler {
	return &AdminHandler{accounts: accounts, ledger: ledgerSvc, log: log}
}

type addDriverReq struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

type adjustEarningsReq struct {
	Amount *float64 `json:"amount" binding:"required"`
}

type rideOutcomeReq struct {
	Status string `json:"status" binding:"required,oneof=completed cancelled"`
}

// AddDriver enrols the account and opens its ledger. A failed ledger open is
// not fatal: the first ride event synthesizes it.
func (h *AdminHandler) AddDriver(c *gin.Context) {
	var req addDriverReq
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	acc, err := h.accounts.EnrollDriver(ctx, req.Name, req.PhoneNumber)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	rec, err := h.ledger.Open(ctx, acc)
	if err != nil {
		h.log.Warn("ledger open after enrolment failed", "account_id", acc.ID, "error", err)
		writeData(c, http.StatusCreated, "Driver added successfully", gin.H{"user": acc})
		return
	}
	writeData(c, http.StatusCreated, "Driver added successfully", gin.H{"user": acc, "driver": rec})
}

func (h *AdminHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.ledger.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, "", drivers)
}

func (h *AdminHandler) DriverStats(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	stats, err := h.ledger.GetStats(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, "", stats)
}

func (h *AdminHandler) AdjustEarnings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req adjustEarningsReq
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.ledger.AdjustEarnings(c.Request.Context(), id, *req.Amount)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, "Earnings updated successfully", gin.H{
		"earnings":      rec.Earnings,
		"totalEarnings": rec.TotalEarnings,
	})
}

func (h *AdminHandler) RecordRide(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req rideOutcomeReq
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.ledger.RecordOutcome(c.Request.Context(), id, ledger.Outcome(req.Status))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, "Ride "+req.Status+" successfully", gin.H{
		"totalRides":     rec.TotalRides,
		"completedRides": rec.CompletedRides,
		"cancelledRides": rec.CancelledRides,
		"totalTrips":     rec.TotalTrips,
	})
}
