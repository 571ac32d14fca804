package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/multipark/booking-recon-backend/internal/api/dto"
	"github.com/multipark/booking-recon-backend/internal/infrastructure/storage"
)

// BookingsHandler handles booking-related HTTP requests.
type BookingsHandler struct {
	*Base
}

// NewBookingsHandler creates a new bookings handler.
func NewBookingsHandler(repo storage.Repository) *BookingsHandler {
	return &BookingsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/bookings - returns a paginated, filtered list.
func (h *BookingsHandler) List(c *gin.Context) {
	filters := storage.BookingFilters{
		NeedsApproval: ParseBoolQuery(c, "needs_approval"),
		ParkBrand:     c.Query("park_brand"),
		PaymentMethod: c.Query("payment_method"),
		Limit:         ParseIntQuery(c, "limit", 50),
		Offset:        ParseIntQuery(c, "offset", 0),
	}

	result, err := h.repo.ListBookings(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.BookingListResponse{
		Bookings:   make([]dto.BookingResponse, 0, len(result.Bookings)),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
	for _, booking := range result.Bookings {
		response.Bookings = append(response.Bookings, toBookingResponse(booking, nil))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/bookings/:id - returns a booking with its split.
func (h *BookingsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("booking id must be an integer"))
		return
	}

	booking, err := h.repo.GetBooking(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}
	if booking == nil {
		c.JSON(http.StatusNotFound, dto.NotFoundError("booking"))
		return
	}

	split, err := h.repo.GetSplitByBookingID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(booking, split))
}

// Approve handles PATCH /api/bookings/:id/approve - manual sign-off.
func (h *BookingsHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("booking id must be an integer"))
		return
	}

	found, err := h.repo.ApproveBooking(id, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, dto.NotFoundError("booking"))
		return
	}

	c.JSON(http.StatusOK, dto.ApproveResponse{
		Message:   "booking approved",
		BookingID: id,
	})
}
