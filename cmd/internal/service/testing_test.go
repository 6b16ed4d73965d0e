package service

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"roomcal/cmd/internal/domain/entity"
	"roomcal/cmd/internal/utils/validators"
)

func newTestValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("iso8601", validators.IsIso8601)
	_ = v.RegisterValidation("dateonly", validators.IsDateOnly)
	_ = v.RegisterValidation("clock", validators.IsClock)
	return v
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users []*entity.User
	calls int
}

func (f *fakeUserRepo) add(user *entity.User) *entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == 0 {
		user.ID = len(f.users) + 1
	}
	f.users = append(f.users, user)
	return user
}

func (f *fakeUserRepo) FindByID(id int) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindBySub(sub string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, u := range f.users {
		if u.SubUUID == sub {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindAll() ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.User(nil), f.users...), nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) ExistsByEmail(email string) (bool, error) {
	u, err := f.FindByEmail(email)
	return u != nil, err
}

func (f *fakeUserRepo) Save(user *entity.User) error {
	if user.ID != 0 {
		return nil
	}
	f.add(user)
	return nil
}

func (f *fakeUserRepo) Delete(user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID == user.ID {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms []*entity.Room
}

func (f *fakeRoomRepo) add(room *entity.Room) *entity.Room {
	f.mu.Lock()
	defer f.mu.Unlock()
	if room.ID == 0 {
		room.ID = len(f.rooms) + 1
	}
	f.rooms = append(f.rooms, room)
	return room
}

func (f *fakeRoomRepo) FindByID(id int) (*entity.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRoomRepo) FindByName(name string) (*entity.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rooms {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRoomRepo) FindAll() ([]*entity.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.Room(nil), f.rooms...), nil
}

func (f *fakeRoomRepo) Save(room *entity.Room) error {
	f.add(room)
	return nil
}

// fakeBookingRepo keeps rows in memory. checkDelay widens the window between
// the availability check and the insert so the concurrency test can catch a
// service that forgets to hold the per-slot lock across both.
type fakeBookingRepo struct {
	mu         sync.Mutex
	rows       []*entity.RoomBooking
	nextID     int
	calls      int
	checkDelay time.Duration
}

func (f *fakeBookingRepo) FindOverlapping(roomID int, date, start, end string) (*entity.RoomBooking, error) {
	f.mu.Lock()
	f.calls++
	var found *entity.RoomBooking
	for _, b := range f.rows {
		if b.RoomID == roomID && b.BookingDate == date && b.StartTime < end && b.EndTime > start {
			found = b
			break
		}
	}
	f.mu.Unlock()
	if f.checkDelay > 0 {
		time.Sleep(f.checkDelay)
	}
	return found, nil
}

func (f *fakeBookingRepo) FindByNaturalKey(roomID, userID int, date, start, end string) (*entity.RoomBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, b := range f.rows {
		if b.RoomID == roomID && b.UserID == userID && b.BookingDate == date && b.StartTime == start && b.EndTime == end {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) FindByID(id int) (*entity.RoomBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, b := range f.rows {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) FindByUserID(userID int) ([]*entity.RoomBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.RoomBooking
	for _, b := range f.rows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindBookedRoomIDs(begin, end int64) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[int]bool{}
	var ids []int
	for _, b := range f.rows {
		if b.BeginsAt < end && b.EndsAt > begin && !seen[b.RoomID] {
			seen[b.RoomID] = true
			ids = append(ids, b.RoomID)
		}
	}
	return ids, nil
}

func (f *fakeBookingRepo) Save(booking *entity.RoomBooking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if booking.ID == 0 {
		f.nextID++
		booking.ID = f.nextID
	}
	f.rows = append(f.rows, booking)
	return nil
}

func (f *fakeBookingRepo) Delete(booking *entity.RoomBooking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.rows {
		if b.ID == booking.ID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeBookingRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeEventRepo struct {
	mu     sync.Mutex
	rows   []*entity.Event
	nextID int
}

func (f *fakeEventRepo) FindByID(id int) (*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.rows {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeEventRepo) FindAll() ([]*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.Event(nil), f.rows...), nil
}

func (f *fakeEventRepo) Save(event *entity.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.ID == 0 {
		f.nextID++
		event.ID = f.nextID
		f.rows = append(f.rows, event)
	}
	return nil
}

func (f *fakeEventRepo) Delete(event *entity.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.rows {
		if e.ID == event.ID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeParticipationRepo struct {
	mu   sync.Mutex
	rows []*entity.EventParticipation
}

func (f *fakeParticipationRepo) Find(eventID, userID int) (*entity.EventParticipation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.EventID == eventID && p.UserID == userID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeParticipationRepo) FindByEvent(eventID int) ([]*entity.EventParticipation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.EventParticipation
	for _, p := range f.rows {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipationRepo) Save(row *entity.EventParticipation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row.ID == 0 {
		row.ID = len(f.rows) + 1
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeParticipationRepo) Delete(row *entity.EventParticipation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.rows {
		if p.ID == row.ID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeReminderRepo struct {
	mu     sync.Mutex
	rows   []*entity.Reminder
	nextID int
}

func (f *fakeReminderRepo) Save(reminder *entity.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if reminder.ID == 0 {
		f.nextID++
		reminder.ID = f.nextID
	}
	f.rows = append(f.rows, reminder)
	return nil
}

func (f *fakeReminderRepo) FindByUserID(userID int) ([]*entity.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Reminder
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) DeleteByEventReminders(userID, eventID int) ([]*entity.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed []*entity.Reminder
	var kept []*entity.Reminder
	for _, r := range f.rows {
		match := r.UserID == userID &&
			r.RelatedEventID != nil && *r.RelatedEventID == eventID &&
			(r.ReminderType == entity.ReminderEventConfirmed || r.ReminderType == entity.ReminderEventChanged)
		if match {
			removed = append(removed, r)
		} else {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return removed, nil
}

func (f *fakeReminderRepo) DeleteByRoomSlotReminders(userID, roomID int, slotStart int64) ([]*entity.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed []*entity.Reminder
	var kept []*entity.Reminder
	for _, r := range f.rows {
		match := r.UserID == userID &&
			r.RelatedRoomID != nil && *r.RelatedRoomID == roomID &&
			r.ReminderTime == slotStart &&
			(r.ReminderType == entity.ReminderBookingConfirmed || r.ReminderType == entity.ReminderBookingChanged)
		if match {
			removed = append(removed, r)
		} else {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return removed, nil
}

func (f *fakeReminderRepo) MarkRead(id, userID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id && r.UserID == userID {
			r.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReminderRepo) MarkAllRead(userID int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.UserID == userID && !r.IsRead {
			r.IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeReminderRepo) byType(userID, reminderType int) []*entity.Reminder {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Reminder
	for _, r := range f.rows {
		if r.UserID == userID && r.ReminderType == reminderType {
			out = append(out, r)
		}
	}
	return out
}

type fakePrefsRepo struct {
	mu   sync.Mutex
	rows map[int]*entity.ReminderPreferences
}

func newFakePrefsRepo() *fakePrefsRepo {
	return &fakePrefsRepo{rows: map[int]*entity.ReminderPreferences{}}
}

func (f *fakePrefsRepo) FindByUserID(userID int) (*entity.ReminderPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[userID], nil
}

func (f *fakePrefsRepo) Save(prefs *entity.ReminderPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[prefs.UserID] = prefs
	return nil
}

func (f *fakePrefsRepo) DeleteByUserID(userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, userID)
	return nil
}
