package service

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"roomcal/cmd/internal/domain/entity"
	"roomcal/cmd/internal/utils"
	"roomcal/cmd/internal/utils/apierror"
)

type ReminderRepository interface {
	Save(reminder *entity.Reminder) error
	FindByUserID(userID int) ([]*entity.Reminder, error)
	DeleteByEventReminders(userID, eventID int) ([]*entity.Reminder, error)
	DeleteByRoomSlotReminders(userID, roomID int, slotStart int64) ([]*entity.Reminder, error)
	MarkRead(id, userID int) (bool, error)
	MarkAllRead(userID int) (int64, error)
}

type PreferencesRepository interface {
	FindByUserID(userID int) (*entity.ReminderPreferences, error)
	Save(prefs *entity.ReminderPreferences) error
	DeleteByUserID(userID int) error
}

// ReminderLedger is the surface the booking and event services use to post
// and retract reminders. Post always appends: a second "changed" notice for
// the same event does not replace the first, every edit is its own fact.
type ReminderLedger interface {
	Post(userID, reminderType int, relatedEventID, relatedRoomID *int, when int64, title, message string) (*entity.Reminder, error)
	DeleteByEventParticipation(userID, eventID int) ([]*entity.Reminder, error)
	DeleteByRoomBookingSlot(userID, roomID int, bookingDate, startTime string) ([]*entity.Reminder, error)
}

type ReminderResponse struct {
	ID             int    `json:"id"`
	ReminderType   int    `json:"reminder_type"`
	RelatedEventID *int   `json:"related_event_id,omitempty"`
	RelatedRoomID  *int   `json:"related_room_id,omitempty"`
	ReminderTime   string `json:"reminder_time"`
	IsRead         bool   `json:"is_read"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	CreatedAt      string `json:"created_at"`
}

type PreferencesRequest struct {
	EventReminder          *bool `json:"event_reminder" validate:"required"`
	BookingReminder        *bool `json:"booking_reminder" validate:"required"`
	ReminderAdvanceMinutes int   `json:"reminder_advance_minutes" validate:"gte=0,lte=10080"`
}

type PreferencesResponse struct {
	EventReminder          bool `json:"event_reminder"`
	BookingReminder        bool `json:"booking_reminder"`
	ReminderAdvanceMinutes int  `json:"reminder_advance_minutes"`
}

type DefaultReminderService struct {
	ReminderRepo ReminderRepository
	PrefsRepo    PreferencesRepository
	UserRepo     UserRepository
	Validate     *validator.Validate
}

func NewReminderService(reminderRepo ReminderRepository, prefsRepo PreferencesRepository, userRepo UserRepository, validate *validator.Validate) *DefaultReminderService {
	return &DefaultReminderService{ReminderRepo: reminderRepo, PrefsRepo: prefsRepo, UserRepo: userRepo, Validate: validate}
}

// Post appends a reminder unless the user has opted out of that reminder
// family. It never deduplicates. Returns (nil, nil) when preferences suppress
// the reminder.
func (r *DefaultReminderService) Post(userID, reminderType int, relatedEventID, relatedRoomID *int, when int64, title, message string) (*entity.Reminder, error) {
	prefs, err := r.PrefsRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		if entity.IsBookingReminder(reminderType) && !prefs.BookingReminder {
			return nil, nil
		}
		if !entity.IsBookingReminder(reminderType) && !prefs.EventReminder {
			return nil, nil
		}
	}

	reminder := &entity.Reminder{
		UserID:         userID,
		ReminderType:   reminderType,
		RelatedEventID: relatedEventID,
		RelatedRoomID:  relatedRoomID,
		ReminderTime:   when,
		IsRead:         false,
		Title:          title,
		Message:        message,
		CreatedAt:      utils.NowUTC(),
	}
	if err := r.ReminderRepo.Save(reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// DeleteByEventParticipation retracts the user's confirmed/changed reminders
// for an event. Safe to call twice; the second call returns an empty result.
func (r *DefaultReminderService) DeleteByEventParticipation(userID, eventID int) ([]*entity.Reminder, error) {
	return r.ReminderRepo.DeleteByEventReminders(userID, eventID)
}

// DeleteByRoomBookingSlot retracts the user's booking reminders whose
// reminder time matches the slot start. Reminders carry no booking ID, so the
// (room, date, start-of-slot) triple is the match key.
func (r *DefaultReminderService) DeleteByRoomBookingSlot(userID, roomID int, bookingDate, startTime string) ([]*entity.Reminder, error) {
	slotStart, err := utils.CombineDateClock(bookingDate, startTime)
	if err != nil {
		return nil, err
	}
	return r.ReminderRepo.DeleteByRoomSlotReminders(userID, roomID, slotStart)
}

func (r *DefaultReminderService) GetReminders(sub string) ([]*ReminderResponse, apierror.ErrorResponse) {
	caller, apierr := r.fetchCaller(sub)
	if apierr != nil {
		return nil, apierr
	}

	reminders, err := r.ReminderRepo.FindByUserID(caller.ID)
	if err != nil {
		log.Errorf("failed to fetch reminders for user %d: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*ReminderResponse, len(reminders))
	for i, rem := range reminders {
		resp[i] = toReminderResponse(rem)
	}
	return resp, nil
}

func (r *DefaultReminderService) MarkRead(id int, sub string) apierror.ErrorResponse {
	caller, apierr := r.fetchCaller(sub)
	if apierr != nil {
		return apierr
	}

	updated, err := r.ReminderRepo.MarkRead(id, caller.ID)
	if err != nil {
		log.Errorf("failed to mark reminder %d read: %v", id, err)
		return apierror.InternalServerError
	}
	if !updated {
		return apierror.NotFoundError
	}
	return nil
}

func (r *DefaultReminderService) MarkAllRead(sub string) (int64, apierror.ErrorResponse) {
	caller, apierr := r.fetchCaller(sub)
	if apierr != nil {
		return 0, apierr
	}

	count, err := r.ReminderRepo.MarkAllRead(caller.ID)
	if err != nil {
		log.Errorf("failed to mark reminders read for user %d: %v", caller.ID, err)
		return 0, apierror.InternalServerError
	}
	return count, nil
}

func (r *DefaultReminderService) GetPreferences(sub string) (*PreferencesResponse, apierror.ErrorResponse) {
	caller, apierr := r.fetchCaller(sub)
	if apierr != nil {
		return nil, apierr
	}

	prefs, err := r.PrefsRepo.FindByUserID(caller.ID)
	if err != nil {
		log.Errorf("failed to fetch preferences for user %d: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}
	if prefs == nil {
		// Accounts predating the preferences table behave as fully opted in.
		return &PreferencesResponse{
			EventReminder:          true,
			BookingReminder:        true,
			ReminderAdvanceMinutes: entity.DefaultReminderAdvanceMinutes,
		}, nil
	}
	return toPreferencesResponse(prefs), nil
}

func (r *DefaultReminderService) UpdatePreferences(req *PreferencesRequest, sub string) (*PreferencesResponse, apierror.ErrorResponse) {
	if err := r.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	caller, apierr := r.fetchCaller(sub)
	if apierr != nil {
		return nil, apierr
	}

	now := utils.NowUTC()
	prefs, err := r.PrefsRepo.FindByUserID(caller.ID)
	if err != nil {
		log.Errorf("failed to fetch preferences for user %d: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}
	if prefs == nil {
		prefs = &entity.ReminderPreferences{UserID: caller.ID, CreatedAt: now}
	}

	prefs.EventReminder = *req.EventReminder
	prefs.BookingReminder = *req.BookingReminder
	prefs.ReminderAdvanceMinutes = req.ReminderAdvanceMinutes
	prefs.UpdatedAt = now

	if err := r.PrefsRepo.Save(prefs); err != nil {
		log.Errorf("failed to save preferences for user %d: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}
	return toPreferencesResponse(prefs), nil
}

// CreateDefaultPreferences provisions the opt-in row that every employee gets
// at account-creation time.
func (r *DefaultReminderService) CreateDefaultPreferences(userID int) error {
	now := utils.NowUTC()
	return r.PrefsRepo.Save(&entity.ReminderPreferences{
		UserID:                 userID,
		EventReminder:          true,
		BookingReminder:        true,
		ReminderAdvanceMinutes: entity.DefaultReminderAdvanceMinutes,
		CreatedAt:              now,
		UpdatedAt:              now,
	})
}

// DeletePreferences removes the row when the employee is deleted.
func (r *DefaultReminderService) DeletePreferences(userID int) error {
	return r.PrefsRepo.DeleteByUserID(userID)
}

func (r *DefaultReminderService) fetchCaller(sub string) (*entity.User, apierror.ErrorResponse) {
	caller, err := r.UserRepo.FindBySub(sub)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", sub, err)
		return nil, apierror.InternalServerError
	}
	if caller == nil {
		return nil, apierror.NotFoundError
	}
	return caller, nil
}

func toReminderResponse(rem *entity.Reminder) *ReminderResponse {
	return &ReminderResponse{
		ID:             rem.ID,
		ReminderType:   rem.ReminderType,
		RelatedEventID: rem.RelatedEventID,
		RelatedRoomID:  rem.RelatedRoomID,
		ReminderTime:   utils.FormatEpoch(rem.ReminderTime),
		IsRead:         rem.IsRead,
		Title:          rem.Title,
		Message:        rem.Message,
		CreatedAt:      utils.FormatEpoch(rem.CreatedAt),
	}
}

func toPreferencesResponse(prefs *entity.ReminderPreferences) *PreferencesResponse {
	return &PreferencesResponse{
		EventReminder:          prefs.EventReminder,
		BookingReminder:        prefs.BookingReminder,
		ReminderAdvanceMinutes: prefs.ReminderAdvanceMinutes,
	}
}
