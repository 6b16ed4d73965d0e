package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"roomcal/cmd/internal/domain/entity"
	"roomcal/cmd/internal/utils"
	"roomcal/cmd/internal/utils/apierror"
)

type EventRepository interface {
	FindByID(id int) (*entity.Event, error)
	FindAll() ([]*entity.Event, error)
	Save(event *entity.Event) error
	Delete(event *entity.Event) error
}

type ParticipationRepository interface {
	Find(eventID, userID int) (*entity.EventParticipation, error)
	FindByEvent(eventID int) ([]*entity.EventParticipation, error)
	Save(row *entity.EventParticipation) error
	Delete(row *entity.EventParticipation) error
}

// BookingResolver is the slice of the booking service the event side needs:
// all interval creation goes through Reserve so the overlap invariant holds
// no matter who books, and Release hands back the removed row so a failed
// replacement can be rolled back.
type BookingResolver interface {
	Reserve(roomID, userID int, date, start, end, purpose string) (*entity.RoomBooking, apierror.ErrorResponse)
	Release(bookingID int) (*entity.RoomBooking, error)
}

type EventRequest struct {
	Title             string `json:"title" validate:"required,max=128"`
	Description       string `json:"description" validate:"max=1024"`
	StartsAt          string `json:"starts_at" validate:"required,iso8601"`
	EndsAt            string `json:"ends_at" validate:"required,iso8601"`
	Location          string `json:"location" validate:"max=128"`
	ExpectedAttendees int    `json:"expected_attendees" validate:"gte=0"`
}

type AttendRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=pending accepted declined"`
}

type EventResponse struct {
	ID                int    `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	StartsAt          string `json:"starts_at"`
	EndsAt            string `json:"ends_at"`
	Location          string `json:"location,omitempty"`
	BookingID         *int   `json:"booking_id,omitempty"`
	CreatedBy         int    `json:"created_by"`
	ExpectedAttendees int    `json:"expected_attendees"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

type ParticipantResponse struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

type EventDetailResponse struct {
	EventResponse
	Participants []*ParticipantResponse `json:"participants"`
}

type DefaultEventService struct {
	EventRepo         EventRepository
	ParticipationRepo ParticipationRepository
	UserRepo          UserRepository
	RoomRepo          RoomRepository
	Bookings          BookingResolver
	Reminders         ReminderLedger
	Validate          *validator.Validate
}

func NewEventService(eventRepo EventRepository, participationRepo ParticipationRepository, userRepo UserRepository, roomRepo RoomRepository, bookings BookingResolver, reminders ReminderLedger, validate *validator.Validate) *DefaultEventService {
	return &DefaultEventService{
		EventRepo:         eventRepo,
		ParticipationRepo: participationRepo,
		UserRepo:          userRepo,
		RoomRepo:          roomRepo,
		Bookings:          bookings,
		Reminders:         reminders,
		Validate:          validate,
	}
}

func (e *DefaultEventService) GetEvents() ([]*EventResponse, apierror.ErrorResponse) {
	events, err := e.EventRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch events: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*EventResponse, len(events))
	for i, event := range events {
		resp[i] = toEventResponse(event)
	}
	return resp, nil
}

func (e *DefaultEventService) GetEvent(id int) (*EventDetailResponse, apierror.ErrorResponse) {
	event, apierr := e.fetchEvent(id)
	if apierr != nil {
		return nil, apierr
	}

	rows, err := e.ParticipationRepo.FindByEvent(event.ID)
	if err != nil {
		log.Errorf("failed to fetch participants for event %d: %v", event.ID, err)
		return nil, apierror.InternalServerError
	}

	participants := make([]*ParticipantResponse, 0, len(rows))
	for _, row := range rows {
		pr := &ParticipantResponse{UserID: row.UserID, Status: row.Status}
		if user, err := e.UserRepo.FindByID(row.UserID); err == nil && user != nil {
			pr.Username = user.Username
		}
		participants = append(participants, pr)
	}

	return &EventDetailResponse{
		EventResponse: *toEventResponse(event),
		Participants:  participants,
	}, nil
}

// CreateEvent persists a calendar item. When the location names a catalog
// room, the room is reserved through the conflict resolver first; a conflict
// aborts the whole creation.
func (e *DefaultEventService) CreateEvent(req *EventRequest, sub string) (*EventResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := e.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	begin, end, apierr := parseEventInterval(req.StartsAt, req.EndsAt)
	if apierr != nil {
		return nil, apierr
	}

	caller, apierr := e.fetchCaller(sub)
	if apierr != nil {
		return nil, apierr
	}

	room, apierr := e.resolveRoom(req.Location)
	if apierr != nil {
		return nil, apierr
	}

	now := utils.NowUTC()
	event := &entity.Event{
		Title:             req.Title,
		Description:       req.Description,
		EventDate:         begin,
		EndTime:           end,
		Location:          req.Location,
		CreatedBy:         caller.ID,
		ExpectedAttendees: req.ExpectedAttendees,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var booking *entity.RoomBooking
	if room != nil {
		booking, apierr = e.reserveForEvent(room, caller.ID, begin, end, req.Title)
		if apierr != nil {
			return nil, apierr
		}
		event.BookingID = &booking.ID
	}

	if err := e.EventRepo.Save(event); err != nil {
		if booking != nil {
			if _, rerr := e.Bookings.Release(booking.ID); rerr != nil {
				log.Errorf("failed to release booking %d after event save failure: %v", booking.ID, rerr)
			}
		}
		log.Errorf("failed to save event: %v", err)
		return nil, apierror.InternalServerError
	}

	e.post(caller.ID, entity.ReminderEventConfirmed, &event.ID, roomIDPtr(room), event.EventDate,
		"Event created", fmt.Sprintf("%q is scheduled for %s", event.Title, utils.FormatMinute(event.EventDate)))

	return toEventResponse(event), nil
}

// UpdateEvent persists new event fields and fans a change notice out to every
// participant. A room or time change replaces the underlying booking through
// the conflict resolver; if the new interval conflicts, the old booking is
// restored and nothing about the event changes.
func (e *DefaultEventService) UpdateEvent(id int, req *EventRequest, sub string) (*EventResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := e.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	begin, end, apierr := parseEventInterval(req.StartsAt, req.EndsAt)
	if apierr != nil {
		return nil, apierr
	}

	caller, apierr := e.fetchCaller(sub)
	if apierr != nil {
		return nil, apierr
	}

	event, apierr := e.fetchEvent(id)
	if apierr != nil {
		return nil, apierr
	}
	if event.CreatedBy != caller.ID && !caller.IsAdmin {
		return nil, apierror.ForbiddenError
	}

	old := *event

	oldRoom, apierr := e.resolveRoom(old.Location)
	if apierr != nil {
		return nil, apierr
	}
	newRoom, apierr := e.resolveRoom(req.Location)
	if apierr != nil {
		return nil, apierr
	}

	newBookingID := event.BookingID
	timesChanged := old.EventDate != begin || old.EndTime != end
	roomChanged := roomID(oldRoom) != roomID(newRoom)

	var released, reserved *entity.RoomBooking
	if roomChanged || (event.BookingID != nil && timesChanged) {
		if event.BookingID != nil {
			var err error
			released, err = e.Bookings.Release(*event.BookingID)
			if err != nil {
				log.Errorf("failed to release booking %d for event %d: %v", *event.BookingID, id, err)
				return nil, apierror.InternalServerError
			}
		}
		newBookingID = nil

		if newRoom != nil {
			booking, apierr := e.reserveForEvent(newRoom, old.CreatedBy, begin, end, req.Title)
			if apierr != nil {
				e.restoreBooking(released)
				return nil, apierr
			}
			reserved = booking
			newBookingID = &booking.ID
		}
	}

	event.Title = req.Title
	event.Description = req.Description
	event.EventDate = begin
	event.EndTime = end
	event.Location = req.Location
	event.ExpectedAttendees = req.ExpectedAttendees
	event.BookingID = newBookingID
	event.UpdatedAt = utils.NowUTC()

	if err := e.EventRepo.Save(event); err != nil {
		// The booking swap already committed; undo it so the slot state
		// matches the event row that is still in place.
		if reserved != nil {
			if _, rerr := e.Bookings.Release(reserved.ID); rerr != nil {
				log.Errorf("failed to release booking %d after event save failure: %v", reserved.ID, rerr)
			}
		}
		e.restoreBooking(released)
		log.Errorf("failed to save event %d: %v", id, err)
		return nil, apierror.InternalServerError
	}

	lines := DescribeEventChanges(&old, event, roomName(oldRoom), roomName(newRoom))
	e.notifyParticipants(event, lines)

	return toEventResponse(event), nil
}

// DeleteEvent cancels the event: every participant gets a cancellation
// notice, their standing reminders are retracted, the room booking (if any)
// is released, and the event row goes away.
func (e *DefaultEventService) DeleteEvent(id int, sub string) apierror.ErrorResponse {
	caller, apierr := e.fetchCaller(sub)
	if apierr != nil {
		return apierr
	}

	event, apierr := e.fetchEvent(id)
	if apierr != nil {
		return apierr
	}
	if event.CreatedBy != caller.ID && !caller.IsAdmin {
		return apierror.ForbiddenError
	}

	rows, err := e.ParticipationRepo.FindByEvent(event.ID)
	if err != nil {
		log.Errorf("failed to fetch participants for event %d: %v", event.ID, err)
		return apierror.InternalServerError
	}

	canceled := fmt.Sprintf("%q on %s was canceled", event.Title, utils.FormatMinute(event.EventDate))
	notifiedCreator := false
	for _, row := range rows {
		e.retireParticipant(event, row.UserID, canceled)
		if row.UserID == event.CreatedBy {
			notifiedCreator = true
		}
		if err := e.ParticipationRepo.Delete(row); err != nil {
			log.Errorf("failed to delete participation (%d, %d): %v", row.EventID, row.UserID, err)
		}
	}
	if !notifiedCreator {
		e.retireParticipant(event, event.CreatedBy, canceled)
	}

	if event.BookingID != nil {
		if _, err := e.Bookings.Release(*event.BookingID); err != nil {
			log.Errorf("failed to release booking %d for event %d: %v", *event.BookingID, event.ID, err)
		}
	}

	if err := e.EventRepo.Delete(event); err != nil {
		log.Errorf("failed to delete event %d: %v", event.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

// AttendEvent opts the caller in. A second request for the same event is
// rejected, not merged.
func (e *DefaultEventService) AttendEvent(eventID int, req *AttendRequest, sub string) (*ParticipantResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := e.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}
	status := req.Status
	if status == "" {
		status = entity.ParticipationAccepted
	}

	caller, apierr := e.fetchCaller(sub)
	if apierr != nil {
		return nil, apierr
	}

	event, apierr := e.fetchEvent(eventID)
	if apierr != nil {
		return nil, apierr
	}

	existing, err := e.ParticipationRepo.Find(eventID, caller.ID)
	if err != nil {
		log.Errorf("failed to check participation (%d, %d): %v", eventID, caller.ID, err)
		return nil, apierror.InternalServerError
	}
	if existing != nil {
		return nil, apierror.AlreadyParticipatingError
	}

	row := &entity.EventParticipation{
		EventID:   eventID,
		UserID:    caller.ID,
		Status:    status,
		CreatedAt: utils.NowUTC(),
	}
	if err := e.ParticipationRepo.Save(row); err != nil {
		log.Errorf("failed to save participation (%d, %d): %v", eventID, caller.ID, err)
		return nil, apierror.InternalServerError
	}

	e.post(caller.ID, entity.ReminderEventConfirmed, &event.ID, nil, event.EventDate,
		"Participation confirmed", fmt.Sprintf("You are attending %q on %s", event.Title, utils.FormatMinute(event.EventDate)))

	return &ParticipantResponse{UserID: caller.ID, Username: caller.Username, Status: status}, nil
}

// UnattendEvent opts the caller out. The order below is a contract, not an
// accident: the cancellation notice is posted before standing reminders are
// retracted, so the retraction can never sweep up a notice that has not been
// written yet.
func (e *DefaultEventService) UnattendEvent(eventID int, sub string) apierror.ErrorResponse {
	caller, apierr := e.fetchCaller(sub)
	if apierr != nil {
		return apierr
	}

	event, apierr := e.fetchEvent(eventID)
	if apierr != nil {
		return apierr
	}

	row, err := e.ParticipationRepo.Find(eventID, caller.ID)
	if err != nil {
		log.Errorf("failed to check participation (%d, %d): %v", eventID, caller.ID, err)
		return apierror.InternalServerError
	}
	if row == nil {
		return apierror.NotFoundError
	}

	// 1. Tell the user it happened.
	e.post(caller.ID, entity.ReminderEventCanceled, &event.ID, nil, event.EventDate,
		"Participation canceled", fmt.Sprintf("You are no longer attending %q", event.Title))

	// 2. Retract the confirmed/changed reminders for this event.
	if _, err := e.Reminders.DeleteByEventParticipation(caller.ID, eventID); err != nil {
		log.Errorf("failed to retract reminders for (%d, %d): %v", caller.ID, eventID, err)
	}

	// 3. Remove the row.
	if err := e.ParticipationRepo.Delete(row); err != nil {
		log.Errorf("failed to delete participation (%d, %d): %v", eventID, caller.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

// notifyParticipants fans a "changed" reminder out to every current
// participant. Each edit appends a fresh notice; earlier ones are never
// superseded.
func (e *DefaultEventService) notifyParticipants(event *entity.Event, changeLines []string) {
	rows, err := e.ParticipationRepo.FindByEvent(event.ID)
	if err != nil {
		log.Errorf("failed to fetch participants for event %d: %v", event.ID, err)
		return
	}

	message := fmt.Sprintf("%q was updated", event.Title)
	if len(changeLines) > 0 {
		message = fmt.Sprintf("%q was updated:\n%s", event.Title, strings.Join(changeLines, "\n"))
	}

	for _, row := range rows {
		e.post(row.UserID, entity.ReminderEventChanged, &event.ID, nil, event.EventDate,
			"Event changed", message)
	}
}

func (e *DefaultEventService) retireParticipant(event *entity.Event, userID int, message string) {
	// Same post-then-retract order as UnattendEvent.
	e.post(userID, entity.ReminderEventCanceled, &event.ID, nil, event.EventDate, "Event canceled", message)
	if _, err := e.Reminders.DeleteByEventParticipation(userID, event.ID); err != nil {
		log.Errorf("failed to retract reminders for (%d, %d): %v", userID, event.ID, err)
	}
}

func (e *DefaultEventService) reserveForEvent(room *entity.Room, userID int, begin, end int64, purpose string) (*entity.RoomBooking, apierror.ErrorResponse) {
	date, start, endClock, err := utils.SameDayInterval(begin, end)
	if err != nil {
		return nil, apierror.MultiDayBookingError
	}
	return e.Bookings.Reserve(room.ID, userID, date, start, endClock, purpose)
}

func (e *DefaultEventService) restoreBooking(released *entity.RoomBooking) {
	if released == nil {
		return
	}
	_, apierr := e.Bookings.Reserve(released.RoomID, released.UserID,
		released.BookingDate, released.StartTime, released.EndTime, released.Purpose)
	if apierr != nil {
		// Someone grabbed the slot between release and restore. Nothing left
		// to roll back to; surface it in the log.
		log.Errorf("failed to restore booking for room %d on %s: %v", released.RoomID, released.BookingDate, apierr)
	}
}

// post wraps ReminderLedger.Post with the log-and-continue policy: a reminder
// failure never rolls back the entity change it describes.
func (e *DefaultEventService) post(userID, reminderType int, relatedEventID, relatedRoomID *int, when int64, title, message string) {
	if _, err := e.Reminders.Post(userID, reminderType, relatedEventID, relatedRoomID, when, title, message); err != nil {
		log.Errorf("failed to post reminder (type %d) for user %d: %v", reminderType, userID, err)
	}
}

func (e *DefaultEventService) resolveRoom(location string) (*entity.Room, apierror.ErrorResponse) {
	if location == "" {
		return nil, nil
	}
	room, err := e.RoomRepo.FindByName(location)
	if err != nil {
		log.Errorf("failed to resolve room %q: %v", location, err)
		return nil, apierror.InternalServerError
	}
	return room, nil
}

func (e *DefaultEventService) fetchEvent(id int) (*entity.Event, apierror.ErrorResponse) {
	event, err := e.EventRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch event %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if event == nil {
		return nil, apierror.NotFoundError
	}
	return event, nil
}

func (e *DefaultEventService) fetchCaller(sub string) (*entity.User, apierror.ErrorResponse) {
	caller, err := e.UserRepo.FindBySub(sub)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", sub, err)
		return nil, apierror.InternalServerError
	}
	if caller == nil {
		return nil, apierror.NotFoundError
	}
	return caller, nil
}

func parseEventInterval(startsAt, endsAt string) (begin, end int64, apierr apierror.ErrorResponse) {
	begin, err := utils.FromEpoch(startsAt)
	if err != nil {
		return 0, 0, apierror.NewInvalidParamTypeError("starts_at", "RFC3339 timestamp")
	}
	end, err = utils.FromEpoch(endsAt)
	if err != nil {
		return 0, 0, apierror.NewInvalidParamTypeError("ends_at", "RFC3339 timestamp")
	}
	if end <= begin {
		return 0, 0, apierror.InvalidIntervalError
	}
	return begin, end, nil
}

func roomID(room *entity.Room) int {
	if room == nil {
		return 0
	}
	return room.ID
}

func roomName(room *entity.Room) string {
	if room == nil {
		return ""
	}
	return room.Name
}

func roomIDPtr(room *entity.Room) *int {
	if room == nil {
		return nil
	}
	return &room.ID
}

func toEventResponse(event *entity.Event) *EventResponse {
	return &EventResponse{
		ID:                event.ID,
		Title:             event.Title,
		Description:       event.Description,
		StartsAt:          utils.FormatEpoch(event.EventDate),
		EndsAt:            utils.FormatEpoch(event.EndTime),
		Location:          event.Location,
		BookingID:         event.BookingID,
		CreatedBy:         event.CreatedBy,
		ExpectedAttendees: event.ExpectedAttendees,
		CreatedAt:         utils.FormatEpoch(event.CreatedAt),
		UpdatedAt:         utils.FormatEpoch(event.UpdatedAt),
	}
}
