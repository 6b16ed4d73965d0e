package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"roomcal/cmd/internal/service"
	"roomcal/cmd/internal/utils"
	"roomcal/cmd/internal/utils/apierror"
)

type RoomService interface {
	GetRooms(capacity int) ([]*service.RoomResponse, apierror.ErrorResponse)
	GetRoom(id int) (*service.RoomResponse, apierror.ErrorResponse)
	CreateRoom(req *service.RoomRequest, sub string) (*service.RoomResponse, apierror.ErrorResponse)
}

type DefaultRoomRoute struct {
	RoomService RoomService
}

func NewRoomDefault(roomService RoomService) *DefaultRoomRoute {
	return &DefaultRoomRoute{RoomService: roomService}
}

func (r *DefaultRoomRoute) GetRooms(c echo.Context) error {
	capacity := 0
	if capStr := c.QueryParam("capacity"); capStr != "" {
		var err error
		capacity, err = strconv.Atoi(capStr)
		if err != nil {
			errResp := apierror.NewInvalidParamTypeError("capacity", "int32")
			return c.JSON(errResp.Code(), errResp)
		}
	}

	rooms, apierr := r.RoomService.GetRooms(capacity)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"rooms": rooms}
	return c.JSON(http.StatusOK, &resp)
}

func (r *DefaultRoomRoute) GetRoom(c echo.Context) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	room, apierr := r.RoomService.GetRoom(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, room)
}

func (r *DefaultRoomRoute) CreateRoom(c echo.Context) error {
	var req service.RoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	room, apierr := r.RoomService.CreateRoom(&req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, room)
}
