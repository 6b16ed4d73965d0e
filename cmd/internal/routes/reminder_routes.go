package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"roomcal/cmd/internal/service"
	"roomcal/cmd/internal/utils"
	"roomcal/cmd/internal/utils/apierror"
)

type ReminderService interface {
	GetReminders(sub string) ([]*service.ReminderResponse, apierror.ErrorResponse)
	MarkRead(id int, sub string) apierror.ErrorResponse
	MarkAllRead(sub string) (int64, apierror.ErrorResponse)
	GetPreferences(sub string) (*service.PreferencesResponse, apierror.ErrorResponse)
	UpdatePreferences(req *service.PreferencesRequest, sub string) (*service.PreferencesResponse, apierror.ErrorResponse)
}

type DefaultReminderRoute struct {
	ReminderService ReminderService
}

func NewReminderDefault(reminderService ReminderService) *DefaultReminderRoute {
	return &DefaultReminderRoute{ReminderService: reminderService}
}

func (r *DefaultReminderRoute) GetReminders(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	reminders, apierr := r.ReminderService.GetReminders(data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"reminders": reminders}
	return c.JSON(http.StatusOK, &resp)
}

func (r *DefaultReminderRoute) MarkRead(c echo.Context) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	if apierr := r.ReminderService.MarkRead(id, data.Sub); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (r *DefaultReminderRoute) MarkAllRead(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	count, apierr := r.ReminderService.MarkAllRead(data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"marked_read": count}
	return c.JSON(http.StatusOK, &resp)
}

func (r *DefaultReminderRoute) GetPreferences(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	prefs, apierr := r.ReminderService.GetPreferences(data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, prefs)
}

func (r *DefaultReminderRoute) UpdatePreferences(c echo.Context) error {
	var req service.PreferencesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	prefs, apierr := r.ReminderService.UpdatePreferences(&req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, prefs)
}
