// README: Ride handlers: apply completion and cancellation to a driver ledger, read driver stats.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"autometer/internal/modules/ledger"
)

type RideHandler struct {
	ledger *ledger.Service
	log    *slog.Logger
}

func NewRideHandler(svc *ledger.Service, log *slog.Logger) *RideHandler {
	return &RideHandler{ledger: svc, log: log}
}

type completeRideReq struct {
	RideEarnings *float64         `json:"rideEarnings" binding:"required"`
	TripData     *ledger.TripData `json:"tripData"`
}

type completionResp struct {
	CompletedRides int64   `json:"completedRides"`
	TotalRides     int64   `json:"totalRides"`
	TotalTrips     int64   `json:"totalTrips"`
	TotalEarnings  float64 `json:"totalEarnings"`
	Earnings       float64 `json:"earnings"`
	Name           string  `json:"name"`
	PhoneNumber    string  `json:"phoneNumber"`
	RideEarnings   float64 `json:"rideEarnings"`
	PreviousTotal  float64 `json:"previousTotal"`
}

type cancellationResp struct {
	CancelledRides int64  `json:"cancelledRides"`
	TotalRides     int64  `json:"totalRides"`
	Name           string `json:"name"`
	PhoneNumber    string `json:"phoneNumber"`
}

func (h *RideHandler) Complete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req completeRideReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.ledger.RecordCompletion(c.Request.Context(), id, *req.RideEarnings, req.TripData)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	r := res.Record
	writeData(c, http.StatusOK, "Trip completed successfully! Earnings updated.", completionResp{
		CompletedRides: r.CompletedRides,
		TotalRides:     r.TotalRides,
		TotalTrips:     r.TotalTrips,
		TotalEarnings:  r.TotalEarnings,
		Earnings:       r.Earnings,
		Name:           r.Name,
		PhoneNumber:    r.PhoneNumber,
		RideEarnings:   res.RideEarnings,
		PreviousTotal:  res.PreviousTotal,
	})
}

func (h *RideHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.ledger.RecordCancellation(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, "Cancelled rides updated successfully", cancellationResp{
		CancelledRides: r.CancelledRides,
		TotalRides:     r.TotalRides,
		Name:           r.Name,
		PhoneNumber:    r.PhoneNumber,
	})
}

func (h *RideHandler) Stats(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	stats, err := h.ledger.GetStats(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, "Driver statistics retrieved successfully", stats)
}
