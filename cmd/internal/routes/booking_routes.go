package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"roomcal/cmd/internal/service"
	"roomcal/cmd/internal/utils"
	"roomcal/cmd/internal/utils/apierror"
)

type BookingService interface {
	GetBookings(sub string) ([]*service.BookingResponse, apierror.ErrorResponse)
	CreateBooking(req *service.BookingRequest, sub string) (*service.BookingResponse, apierror.ErrorResponse)
	DeleteBooking(req *service.DeleteBookingRequest, sub string) apierror.ErrorResponse
	GetAvailableRooms(begin, end int64, capacity int) ([]*service.RoomResponse, apierror.ErrorResponse)
}

type DefaultBookingRoute struct {
	BookingService BookingService
}

func NewBookingDefault(bookingService BookingService) *DefaultBookingRoute {
	return &DefaultBookingRoute{BookingService: bookingService}
}

func (b *DefaultBookingRoute) GetBookings(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	bookings, apierr := b.BookingService.GetBookings(data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"bookings": bookings}
	return c.JSON(http.StatusOK, &resp)
}

func (b *DefaultBookingRoute) CreateBooking(c echo.Context) error {
	var req service.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	booking, apierr := b.BookingService.CreateBooking(&req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, booking)
}

// DeleteBooking takes the booking's natural key as query parameters:
// ?room_id=3&booking_date=2025-10-14&start_time=10:00&end_time=11:00
func (b *DefaultBookingRoute) DeleteBooking(c echo.Context) error {
	roomStr := c.QueryParam("room_id")
	if roomStr == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("room_id"))
	}
	roomID, err := strconv.Atoi(roomStr)
	if err != nil {
		errResp := apierror.NewInvalidParamTypeError("room_id", "int32")
		return c.JSON(errResp.Code(), errResp)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	req := service.DeleteBookingRequest{
		RoomID:      roomID,
		BookingDate: c.QueryParam("booking_date"),
		StartTime:   c.QueryParam("start_time"),
		EndTime:     c.QueryParam("end_time"),
	}
	if apierr := b.BookingService.DeleteBooking(&req, data.Sub); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

// GetAvailableRooms powers the room picker: ?start=...&end=... (RFC3339),
// optional &capacity=N.
func (b *DefaultBookingRoute) GetAvailableRooms(c echo.Context) error {
	startStr := c.QueryParam("start")
	if startStr == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("start"))
	}
	endStr := c.QueryParam("end")
	if endStr == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("end"))
	}

	begin, err := utils.FromEpoch(startStr)
	if err != nil {
		errResp := apierror.NewInvalidParamTypeError("start", "RFC3339 timestamp")
		return c.JSON(errResp.Code(), errResp)
	}
	end, err := utils.FromEpoch(endStr)
	if err != nil {
		errResp := apierror.NewInvalidParamTypeError("end", "RFC3339 timestamp")
		return c.JSON(errResp.Code(), errResp)
	}

	capacity := 0
	if capStr := c.QueryParam("capacity"); capStr != "" {
		capacity, err = strconv.Atoi(capStr)
		if err != nil {
			errResp := apierror.NewInvalidParamTypeError("capacity", "int32")
			return c.JSON(errResp.Code(), errResp)
		}
	}

	rooms, apierr := b.BookingService.GetAvailableRooms(begin, end, capacity)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"rooms": rooms}
	return c.JSON(http.StatusOK, &resp)
}
