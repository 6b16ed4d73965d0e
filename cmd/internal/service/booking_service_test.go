package service

import (
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roomcal/cmd/internal/domain/entity"
	"roomcal/cmd/internal/utils"
)

type bookingHarness struct {
	svc       *DefaultBookingService
	bookings  *fakeBookingRepo
	rooms     *fakeRoomRepo
	users     *fakeUserRepo
	reminders *fakeReminderRepo
	user      *entity.User
	room      *entity.Room
}

func newBookingHarness(t *testing.T) *bookingHarness {
	t.Helper()
	bookings := &fakeBookingRepo{}
	rooms := &fakeRoomRepo{}
	users := &fakeUserRepo{}
	reminders := &fakeReminderRepo{}

	user := users.add(&entity.User{SubUUID: "sub-1", Username: "alice", Email: "alice@example.com"})
	room := rooms.add(&entity.Room{Name: "Aurora", Capacity: 8})

	reminderSvc := NewReminderService(reminders, newFakePrefsRepo(), users, newTestValidator())
	svc := NewBookingService(bookings, rooms, users, reminderSvc, newTestValidator())

	return &bookingHarness{
		svc:       svc,
		bookings:  bookings,
		rooms:     rooms,
		users:     users,
		reminders: reminders,
		user:      user,
		room:      room,
	}
}

func TestCreateBookingAdjacentSlots(t *testing.T) {
	h := newBookingHarness(t)

	first, apierr := h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)
	assert.Equal(t, "10:00", first.StartTime)

	// [10:00, 11:00) and [11:00, 12:00) share only the boundary instant.
	second, apierr := h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "11:00", EndTime: "12:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)
	assert.Equal(t, "11:00", second.StartTime)
	assert.Equal(t, 2, h.bookings.count())
}

func TestCreateBookingConflictNamesTheBlockingInterval(t *testing.T) {
	h := newBookingHarness(t)

	_, apierr := h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)

	_, apierr = h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "10:30", EndTime: "11:30",
	}, h.user.SubUUID)
	assert.NotNil(t, apierr)
	assert.Equal(t, http.StatusConflict, apierr.Code())
	assert.Contains(t, apierr.Error(), "10:00-11:00")
	assert.Contains(t, apierr.Error(), "2025-10-14")
	assert.Equal(t, 1, h.bookings.count())
}

func TestCreateBookingSameSlotDifferentDayOrRoom(t *testing.T) {
	h := newBookingHarness(t)
	other := h.rooms.add(&entity.Room{Name: "Borealis", Capacity: 4})

	_, apierr := h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)

	_, apierr = h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-15", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)

	_, apierr = h.svc.CreateBooking(&BookingRequest{
		RoomID: other.ID, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)
}

func TestCreateBookingInvalidIntervalRejectedBeforeStorage(t *testing.T) {
	h := newBookingHarness(t)

	for _, tc := range []struct{ start, end string }{
		{"11:00", "10:00"},
		{"10:00", "10:00"},
	} {
		_, apierr := h.svc.CreateBooking(&BookingRequest{
			RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: tc.start, EndTime: tc.end,
		}, h.user.SubUUID)
		assert.NotNil(t, apierr)
		assert.Equal(t, http.StatusBadRequest, apierr.Code())
	}

	assert.Equal(t, 0, h.bookings.calls, "storage must not be touched for an invalid interval")
	assert.Equal(t, 0, h.users.calls, "no caller lookup either")
}

func TestCreateBookingUnpaddedClockRejected(t *testing.T) {
	h := newBookingHarness(t)

	_, apierr := h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "09:00", EndTime: "10:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)

	// "9:30" would sort after "10:00" lexically and slip past the overlap
	// predicate; the boundary must reject it outright.
	_, apierr = h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "9:30", EndTime: "9:45",
	}, h.user.SubUUID)
	assert.NotNil(t, apierr)
	assert.Equal(t, http.StatusBadRequest, apierr.Code())
	assert.Equal(t, 1, h.bookings.count())
}

// Random interval sets: whatever subset the resolver admits, no two admitted
// intervals on the same room-day may intersect.
func TestReserveRandomIntervalsNeverOverlap(t *testing.T) {
	h := newBookingHarness(t)
	rng := rand.New(rand.NewSource(42))

	type interval struct{ start, end string }
	var admitted []interval

	for i := 0; i < 200; i++ {
		startMin := rng.Intn(23 * 60)
		endMin := startMin + 5 + rng.Intn(120)
		if endMin > 23*60+59 {
			endMin = 23*60 + 59
		}
		start := fmt.Sprintf("%02d:%02d", startMin/60, startMin%60)
		end := fmt.Sprintf("%02d:%02d", endMin/60, endMin%60)

		_, apierr := h.svc.Reserve(h.room.ID, h.user.ID, "2025-10-14", start, end, "")
		if apierr == nil {
			admitted = append(admitted, interval{start, end})
		} else {
			assert.Equal(t, http.StatusConflict, apierr.Code(), "%s-%s", start, end)
		}
	}

	assert.Equal(t, len(admitted), h.bookings.count())
	for i := 0; i < len(admitted); i++ {
		for j := i + 1; j < len(admitted); j++ {
			a, b := admitted[i], admitted[j]
			assert.False(t, a.start < b.end && a.end > b.start,
				"admitted intervals %s-%s and %s-%s overlap", a.start, a.end, b.start, b.end)
		}
	}
}

func TestCreateBookingUnknownRoom(t *testing.T) {
	h := newBookingHarness(t)

	_, apierr := h.svc.CreateBooking(&BookingRequest{
		RoomID: 99, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.NotNil(t, apierr)
	assert.Equal(t, http.StatusNotFound, apierr.Code())
}

func TestCreateBookingPostsConfirmedReminder(t *testing.T) {
	h := newBookingHarness(t)

	_, apierr := h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)

	confirmed := h.reminders.byType(h.user.ID, entity.ReminderBookingConfirmed)
	if assert.Len(t, confirmed, 1) {
		slotStart, _ := utils.CombineDateClock("2025-10-14", "10:00")
		assert.Equal(t, slotStart, confirmed[0].ReminderTime)
		assert.Equal(t, h.room.ID, *confirmed[0].RelatedRoomID)
		assert.Nil(t, confirmed[0].RelatedEventID)
	}
}

func TestReserveConcurrentRequestsExactlyOneWins(t *testing.T) {
	h := newBookingHarness(t)
	h.bookings.checkDelay = time.Millisecond

	const attempts = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, conflicts := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, apierr := h.svc.Reserve(h.room.ID, h.user.ID, "2025-10-14", "10:00", "11:00", "")
			mu.Lock()
			defer mu.Unlock()
			if apierr == nil {
				successes++
			} else if apierr.Code() == http.StatusConflict {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, 1, h.bookings.count())
}

func TestDeleteBookingByNaturalKey(t *testing.T) {
	h := newBookingHarness(t)

	_, apierr := h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)

	apierr = h.svc.DeleteBooking(&DeleteBookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)
	assert.Equal(t, 0, h.bookings.count())
}

func TestDeleteBookingUnknownKeyIsNotFound(t *testing.T) {
	h := newBookingHarness(t)

	apierr := h.svc.DeleteBooking(&DeleteBookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.NotNil(t, apierr)
	assert.Equal(t, http.StatusNotFound, apierr.Code())
}

func TestDeleteBookingCancellationNoticeSurvivesRetraction(t *testing.T) {
	h := newBookingHarness(t)

	_, apierr := h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)
	assert.Len(t, h.reminders.byType(h.user.ID, entity.ReminderBookingConfirmed), 1)

	apierr = h.svc.DeleteBooking(&DeleteBookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)

	// Confirmed reminder retracted, cancellation notice kept.
	assert.Empty(t, h.reminders.byType(h.user.ID, entity.ReminderBookingConfirmed))
	assert.Len(t, h.reminders.byType(h.user.ID, entity.ReminderBookingCanceled), 1)
}

func TestGetAvailableRooms(t *testing.T) {
	h := newBookingHarness(t)
	small := h.rooms.add(&entity.Room{Name: "Cirrus", Capacity: 2})
	free := h.rooms.add(&entity.Room{Name: "Drift", Capacity: 12})

	_, apierr := h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)

	begin, _ := utils.CombineDateClock("2025-10-14", "10:30")
	end, _ := utils.CombineDateClock("2025-10-14", "11:30")

	rooms, apierr := h.svc.GetAvailableRooms(begin, end, 0)
	assert.Nil(t, apierr)
	names := roomNames(rooms)
	assert.NotContains(t, names, h.room.Name)
	assert.Contains(t, names, small.Name)
	assert.Contains(t, names, free.Name)

	rooms, apierr = h.svc.GetAvailableRooms(begin, end, 10)
	assert.Nil(t, apierr)
	assert.Equal(t, []string{free.Name}, roomNames(rooms))

	// The booked slot itself frees up once the interval no longer intersects.
	laterBegin, _ := utils.CombineDateClock("2025-10-14", "11:00")
	laterEnd, _ := utils.CombineDateClock("2025-10-14", "12:00")
	rooms, apierr = h.svc.GetAvailableRooms(laterBegin, laterEnd, 0)
	assert.Nil(t, apierr)
	assert.Contains(t, roomNames(rooms), h.room.Name)
}

func TestGetAvailableRoomsInvalidRange(t *testing.T) {
	h := newBookingHarness(t)

	begin, _ := utils.CombineDateClock("2025-10-14", "11:00")
	_, apierr := h.svc.GetAvailableRooms(begin, begin, 0)
	assert.NotNil(t, apierr)
	assert.Equal(t, http.StatusBadRequest, apierr.Code())
}

func TestGetBookingsReturnsOnlyCallers(t *testing.T) {
	h := newBookingHarness(t)
	other := h.users.add(&entity.User{SubUUID: "sub-2", Username: "bob", Email: "bob@example.com"})

	_, apierr := h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "10:00", EndTime: "11:00",
	}, h.user.SubUUID)
	assert.Nil(t, apierr)
	_, apierr = h.svc.CreateBooking(&BookingRequest{
		RoomID: h.room.ID, BookingDate: "2025-10-14", StartTime: "11:00", EndTime: "12:00",
	}, other.SubUUID)
	assert.Nil(t, apierr)

	bookings, apierr := h.svc.GetBookings(h.user.SubUUID)
	assert.Nil(t, apierr)
	if assert.Len(t, bookings, 1) {
		assert.Equal(t, h.user.ID, bookings[0].UserID)
	}
}

func roomNames(rooms []*RoomResponse) []string {
	names := make([]string, len(rooms))
	for i, r := range rooms {
		names[i] = r.Name
	}
	return names
}
