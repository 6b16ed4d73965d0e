package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"roomcal/cmd/internal/service"
	"roomcal/cmd/internal/utils"
	"roomcal/cmd/internal/utils/apierror"
)

type EventService interface {
	GetEvents() ([]*service.EventResponse, apierror.ErrorResponse)
	GetEvent(id int) (*service.EventDetailResponse, apierror.ErrorResponse)
	CreateEvent(req *service.EventRequest, sub string) (*service.EventResponse, apierror.ErrorResponse)
	UpdateEvent(id int, req *service.EventRequest, sub string) (*service.EventResponse, apierror.ErrorResponse)
	DeleteEvent(id int, sub string) apierror.ErrorResponse
	AttendEvent(eventID int, req *service.AttendRequest, sub string) (*service.ParticipantResponse, apierror.ErrorResponse)
	UnattendEvent(eventID int, sub string) apierror.ErrorResponse
}

type DefaultEventRoute struct {
	EventService EventService
}

func NewEventDefault(eventService EventService) *DefaultEventRoute {
	return &DefaultEventRoute{EventService: eventService}
}

func (e *DefaultEventRoute) GetEvents(c echo.Context) error {
	events, apierr := e.EventService.GetEvents()
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"events": events}
	return c.JSON(http.StatusOK, &resp)
}

func (e *DefaultEventRoute) GetEvent(c echo.Context) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	event, apierr := e.EventService.GetEvent(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, event)
}

func (e *DefaultEventRoute) CreateEvent(c echo.Context) error {
	var req service.EventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	event, apierr := e.EventService.CreateEvent(&req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, event)
}

func (e *DefaultEventRoute) UpdateEvent(c echo.Context) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	var req service.EventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	event, apierr := e.EventService.UpdateEvent(id, &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, event)
}

func (e *DefaultEventRoute) DeleteEvent(c echo.Context) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	if apierr := e.EventService.DeleteEvent(id, data.Sub); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (e *DefaultEventRoute) AttendEvent(c echo.Context) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	// The body is optional; an empty one means "accepted".
	var req service.AttendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	participant, apierr := e.EventService.AttendEvent(id, &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, participant)
}

func (e *DefaultEventRoute) UnattendEvent(c echo.Context) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	if apierr := e.EventService.UnattendEvent(id, data.Sub); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

func parseIDParam(c echo.Context) (int, apierror.ErrorResponse) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, apierror.NewInvalidParamTypeError("id", "int32")
	}
	return id, nil
}
