// README: Fare handlers: read and set the system fare config, quote a trip.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"autometer/internal/modules/fare"
)

type FareHandler struct {
	fares *fare.Service
	log   *slog.Logger
}

func NewFareHandler(svc *fare.Service, log *slog.Logger) *FareHandler {
	return &FareHandler{fares: svc, log: log}
}

// setFareReq keeps the field names existing admin clients send;
// waiting60min is the charge per waiting interval.
type setFareReq struct {
	BaseFare     *float64 `json:"baseFare" binding:"required"`
	PerKmRate    *float64 `json:"perKmRate" binding:"required"`
	Waiting60min *float64 `json:"waiting60min" binding:"required"`
}

type quoteReq struct {
	Distance       float64 `json:"distance"`
	WaitingMinutes float64 `json:"waitingMinutes"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
}

func (h *FareHandler) Get(c *gin.Context) {
	cfg, err := h.fares.GetConfig(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, "", cfg)
}

func (h *FareHandler) Set(c *gin.Context) {
	var req setFareReq
	if !bindJSON(c, &req) {
		return
	}
	cfg, created, err := h.fares.SetConfig(c.Request.Context(), fare.Rates{
		BaseFare:                 *req.BaseFare,
		PerKmRate:                *req.PerKmRate,
		WaitingChargePerInterval: *req.Waiting60min,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	if created {
		writeData(c, http.StatusCreated, "fare configuration created", cfg)
		return
	}
	writeData(c, http.StatusOK, "fare configuration updated", cfg)
}

func (h *FareHandler) Calculate(c *gin.Context) {
	var req quoteReq
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.fares.Quote(c.Request.Context(), fare.QuoteRequest{
		Distance:       req.Distance,
		WaitingMinutes: req.WaitingMinutes,
		Origin:         req.Origin,
		Destination:    req.Destination,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, "", q)
}
