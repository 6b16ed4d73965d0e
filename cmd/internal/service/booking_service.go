package service

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"roomcal/cmd/internal/domain/entity"
	"roomcal/cmd/internal/utils"
	"roomcal/cmd/internal/utils/apierror"
)

type BookingRepository interface {
	FindOverlapping(roomID int, date, start, end string) (*entity.RoomBooking, error)
	FindByNaturalKey(roomID, userID int, date, start, end string) (*entity.RoomBooking, error)
	FindByID(id int) (*entity.RoomBooking, error)
	FindByUserID(userID int) ([]*entity.RoomBooking, error)
	FindBookedRoomIDs(begin, end int64) ([]int, error)
	Save(booking *entity.RoomBooking) error
	Delete(booking *entity.RoomBooking) error
}

type BookingRequest struct {
	RoomID      int    `json:"room_id" validate:"required"`
	BookingDate string `json:"booking_date" validate:"required,dateonly"`
	StartTime   string `json:"start_time" validate:"required,clock"`
	EndTime     string `json:"end_time" validate:"required,clock"`
	Purpose     string `json:"purpose" validate:"max=256"`
}

type DeleteBookingRequest struct {
	RoomID      int    `json:"room_id" validate:"required"`
	BookingDate string `json:"booking_date" validate:"required,dateonly"`
	StartTime   string `json:"start_time" validate:"required,clock"`
	EndTime     string `json:"end_time" validate:"required,clock"`
}

type BookingResponse struct {
	ID          int    `json:"id"`
	RoomID      int    `json:"room_id"`
	UserID      int    `json:"user_id"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Purpose     string `json:"purpose,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type DefaultBookingService struct {
	BookingRepo BookingRepository
	RoomRepo    RoomRepository
	UserRepo    UserRepository
	Reminders   ReminderLedger
	Validate    *validator.Validate

	// One mutex per (room, day); the overlap check and the insert must be a
	// single critical section or two concurrent callers can both observe
	// "available" and both commit. A unique constraint cannot enforce this:
	// overlap is a range predicate, not an equality one.
	locks utils.KeyedMutex
}

func NewBookingService(bookingRepo BookingRepository, roomRepo RoomRepository, userRepo UserRepository, reminders ReminderLedger, validate *validator.Validate) *DefaultBookingService {
	return &DefaultBookingService{
		BookingRepo: bookingRepo,
		RoomRepo:    roomRepo,
		UserRepo:    userRepo,
		Reminders:   reminders,
		Validate:    validate,
	}
}

func (b *DefaultBookingService) GetBookings(sub string) ([]*BookingResponse, apierror.ErrorResponse) {
	caller, apierr := b.fetchCaller(sub)
	if apierr != nil {
		return nil, apierr
	}

	bookings, err := b.BookingRepo.FindByUserID(caller.ID)
	if err != nil {
		log.Errorf("failed to fetch bookings for user %d: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*BookingResponse, len(bookings))
	for i, booking := range bookings {
		resp[i] = toBookingResponse(booking)
	}
	return resp, nil
}

func (b *DefaultBookingService) CreateBooking(req *BookingRequest, sub string) (*BookingResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := b.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	// Interval sanity comes before any storage access.
	if req.EndTime <= req.StartTime {
		return nil, apierror.InvalidIntervalError
	}

	caller, apierr := b.fetchCaller(sub)
	if apierr != nil {
		return nil, apierr
	}

	room, err := b.RoomRepo.FindByID(req.RoomID)
	if err != nil {
		log.Errorf("failed to fetch room %d: %v", req.RoomID, err)
		return nil, apierror.InternalServerError
	}
	if room == nil {
		return nil, apierror.NotFoundError
	}

	booking, apierr := b.Reserve(room.ID, caller.ID, req.BookingDate, req.StartTime, req.EndTime, req.Purpose)
	if apierr != nil {
		return nil, apierr
	}

	// The booking is committed; the reminder is best effort from here on.
	b.postBookingReminder(booking, room, entity.ReminderBookingConfirmed,
		"Room booked",
		fmt.Sprintf("%s is booked for you %s-%s on %s", room.Name, booking.StartTime, booking.EndTime, booking.BookingDate))

	return toBookingResponse(booking), nil
}

// Reserve is the only path that creates a room booking. It holds the
// per-(room, day) lock across the overlap check and the insert, so at most
// one of any set of concurrent overlapping requests can commit.
func (b *DefaultBookingService) Reserve(roomID, userID int, date, start, end, purpose string) (*entity.RoomBooking, apierror.ErrorResponse) {
	if end <= start {
		return nil, apierror.InvalidIntervalError
	}

	begins, err := utils.CombineDateClock(date, start)
	if err != nil {
		return nil, apierror.MalformedBodyError
	}
	ends, err := utils.CombineDateClock(date, end)
	if err != nil {
		return nil, apierror.MalformedBodyError
	}

	key := lockKey(roomID, date)
	b.locks.Lock(key)
	defer b.locks.Unlock(key)

	existing, err := b.BookingRepo.FindOverlapping(roomID, date, start, end)
	if err != nil {
		log.Errorf("failed to check availability for room %d on %s: %v", roomID, date, err)
		return nil, apierror.InternalServerError
	}
	if existing != nil {
		return nil, apierror.NewBookingConflictError(date, existing.StartTime, existing.EndTime)
	}

	now := utils.NowUTC()
	booking := &entity.RoomBooking{
		RoomID:      roomID,
		UserID:      userID,
		BookingDate: date,
		StartTime:   start,
		EndTime:     end,
		BeginsAt:    begins,
		EndsAt:      ends,
		Purpose:     purpose,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.BookingRepo.Save(booking); err != nil {
		log.Errorf("failed to save booking for room %d on %s: %v", roomID, date, err)
		return nil, apierror.InternalServerError
	}
	return booking, nil
}

// Release removes a booking by surrogate ID and returns the removed row so
// callers replacing an interval can restore it if the replacement fails. Used
// by the event side; user-facing deletion goes through DeleteBooking's
// natural key.
func (b *DefaultBookingService) Release(bookingID int) (*entity.RoomBooking, error) {
	booking, err := b.BookingRepo.FindByID(bookingID)
	if err != nil || booking == nil {
		return nil, err
	}
	if err := b.BookingRepo.Delete(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// DeleteBooking identifies the booking by its full natural key, matching the
// client contract. Two bookings identical in every field but the surrogate ID
// are indistinguishable here.
func (b *DefaultBookingService) DeleteBooking(req *DeleteBookingRequest, sub string) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := b.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	caller, apierr := b.fetchCaller(sub)
	if apierr != nil {
		return apierr
	}

	booking, err := b.BookingRepo.FindByNaturalKey(req.RoomID, caller.ID, req.BookingDate, req.StartTime, req.EndTime)
	if err != nil {
		log.Errorf("failed to look up booking for room %d on %s: %v", req.RoomID, req.BookingDate, err)
		return apierror.InternalServerError
	}
	if booking == nil {
		return apierror.NotFoundError
	}

	if err := b.BookingRepo.Delete(booking); err != nil {
		log.Errorf("failed to delete booking %d: %v", booking.ID, err)
		return apierror.InternalServerError
	}

	room, err := b.RoomRepo.FindByID(booking.RoomID)
	if err != nil || room == nil {
		room = &entity.Room{ID: booking.RoomID, Name: fmt.Sprintf("room %d", booking.RoomID)}
	}

	// Cancellation notice first, retraction second: the notice keys on the
	// canceled type, so the retraction that follows cannot sweep it up.
	b.postBookingReminder(booking, room, entity.ReminderBookingCanceled,
		"Booking canceled",
		fmt.Sprintf("Your booking of %s %s-%s on %s was canceled", room.Name, booking.StartTime, booking.EndTime, booking.BookingDate))

	if _, err := b.Reminders.DeleteByRoomBookingSlot(caller.ID, booking.RoomID, booking.BookingDate, booking.StartTime); err != nil {
		log.Errorf("failed to retract reminders for booking %d: %v", booking.ID, err)
	}
	return nil
}

// GetAvailableRooms lists catalog rooms with no booking intersecting
// [begin, end), optionally filtered by minimum capacity.
func (b *DefaultBookingService) GetAvailableRooms(begin, end int64, capacity int) ([]*RoomResponse, apierror.ErrorResponse) {
	if end <= begin {
		return nil, apierror.InvalidIntervalError
	}

	rooms, err := b.RoomRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch rooms: %v", err)
		return nil, apierror.InternalServerError
	}

	bookedIDs, err := b.BookingRepo.FindBookedRoomIDs(begin, end)
	if err != nil {
		log.Errorf("failed to fetch booked rooms [%d - %d]: %v", begin, end, err)
		return nil, apierror.InternalServerError
	}

	booked := make(map[int]bool, len(bookedIDs))
	for _, id := range bookedIDs {
		booked[id] = true
	}

	available := make([]*RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		if booked[room.ID] {
			continue
		}
		if capacity > 0 && room.Capacity < capacity {
			continue
		}
		available = append(available, toRoomResponse(room))
	}
	return available, nil
}

func (b *DefaultBookingService) postBookingReminder(booking *entity.RoomBooking, room *entity.Room, reminderType int, title, message string) {
	_, err := b.Reminders.Post(booking.UserID, reminderType, nil, &booking.RoomID, booking.BeginsAt, title, message)
	if err != nil {
		log.Errorf("failed to post booking reminder for user %d, room %d: %v", booking.UserID, room.ID, err)
	}
}

func (b *DefaultBookingService) fetchCaller(sub string) (*entity.User, apierror.ErrorResponse) {
	caller, err := b.UserRepo.FindBySub(sub)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", sub, err)
		return nil, apierror.InternalServerError
	}
	if caller == nil {
		return nil, apierror.NotFoundError
	}
	return caller, nil
}

func lockKey(roomID int, date string) string {
	return fmt.Sprintf("%d:%s", roomID, date)
}

func toBookingResponse(booking *entity.RoomBooking) *BookingResponse {
	return &BookingResponse{
		ID:          booking.ID,
		RoomID:      booking.RoomID,
		UserID:      booking.UserID,
		BookingDate: booking.BookingDate,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		Purpose:     booking.Purpose,
		CreatedAt:   utils.FormatEpoch(booking.CreatedAt),
		UpdatedAt:   utils.FormatEpoch(booking.UpdatedAt),
	}
}
