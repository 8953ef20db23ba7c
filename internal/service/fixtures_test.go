package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roomsched-api/internal/availability"
	"github.com/noah-isme/roomsched-api/internal/models"
	appErrors "github.com/noah-isme/roomsched-api/pkg/errors"
)

var (
	adminClaims     = &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	professorClaims = &models.JWTClaims{UserID: "prof-1", Role: models.RoleProfessor}
)

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := models.ParseDate(raw)
	require.NoError(t, err)
	return d
}

func mustSlots(t *testing.T, raw string) models.DayBlockSet {
	t.Helper()
	set, err := models.ParseDayBlocks(raw)
	require.NoError(t, err)
	return set
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func intPtr(v int) *int { return &v }

type roomStoreStub struct {
	rooms     map[int64]models.Room
	err       error
	listCalls int
}

func newRoomStoreStub(rooms ...models.Room) *roomStoreStub {
	s := &roomStoreStub{rooms: make(map[int64]models.Room)}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *roomStoreStub) sorted() []models.Room {
	out := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *roomStoreStub) ListAll(ctx context.Context) ([]models.Room, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sorted(), nil
}

func (s *roomStoreStub) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	s.listCalls++
	if s.err != nil {
		return nil, 0, s.err
	}
	all := s.sorted()
	return all, len(all), nil
}

func (s *roomStoreStub) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.rooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (s *roomStoreStub) Create(ctx context.Context, room *models.Room) error {
	s.rooms[room.ID] = *room
	return nil
}

func (s *roomStoreStub) Update(ctx context.Context, room *models.Room) error {
	if _, ok := s.rooms[room.ID]; !ok {
		return sql.ErrNoRows
	}
	s.rooms[room.ID] = *room
	return nil
}

func (s *roomStoreStub) Delete(ctx context.Context, id int64) error {
	if _, ok := s.rooms[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.rooms, id)
	return nil
}

type bookingStoreStub struct {
	bookings      []models.Booking
	details       []models.BookingDetail
	lastFilter    models.BookingFilter
	overlapCalls  int
	nextID        int
	createErr     error
	overlapErr    error
	deletedIDs    []string
	updatedIDs    []string
	filtersByPage []int
}

func (s *bookingStoreStub) ListOverlapping(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	s.overlapCalls++
	if s.overlapErr != nil {
		return nil, s.overlapErr
	}
	var out []models.Booking
	for _, b := range s.bookings {
		if availability.DateRangesOverlap(b.StartDate, b.EndDate, start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *bookingStoreStub) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	s.lastFilter = filter
	s.filtersByPage = append(s.filtersByPage, filter.Page)
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	from := (page - 1) * size
	if from > len(s.details) {
		from = len(s.details)
	}
	to := from + size
	if to > len(s.details) {
		to = len(s.details)
	}
	return s.details[from:to], len(s.details), nil
}

func (s *bookingStoreStub) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	for _, b := range s.bookings {
		if b.ID == id {
			found := b
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *bookingStoreStub) CountByRoom(ctx context.Context, roomID int64) (int, error) {
	n := 0
	for _, b := range s.bookings {
		if b.RoomID == roomID {
			n++
		}
	}
	return n, nil
}

func (s *bookingStoreStub) Create(ctx context.Context, booking *models.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	if booking.ID == "" {
		s.nextID++
		booking.ID = fmt.Sprintf("b-new-%d", s.nextID)
	}
	s.bookings = append(s.bookings, *booking)
	return nil
}

func (s *bookingStoreStub) Update(ctx context.Context, booking *models.Booking) error {
	for i, b := range s.bookings {
		if b.ID == booking.ID {
			s.bookings[i] = *booking
			s.updatedIDs = append(s.updatedIDs, booking.ID)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *bookingStoreStub) Delete(ctx context.Context, id string) error {
	for i, b := range s.bookings {
		if b.ID == id {
			s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
			s.deletedIDs = append(s.deletedIDs, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

type enrollmentStoreStub struct {
	items map[string]models.EnrollmentDetail
}

func (s *enrollmentStoreStub) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	e, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

type requestStoreStub struct {
	requests []models.ChangeRequest
}

func (s *requestStoreStub) ListPendingForRoom(ctx context.Context, roomID int64, start, end time.Time) ([]models.ChangeRequest, error) {
	var out []models.ChangeRequest
	for _, cr := range s.requests {
		if cr.TargetRoomID == roomID && cr.IsPending() && availability.DateRangesOverlap(cr.StartDate, cr.EndDate, start, end) {
			out = append(out, cr)
		}
	}
	return out, nil
}

type auditStub struct {
	logs []*models.AuditLog
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func (a *auditStub) actions() []string {
	out := make([]string, len(a.logs))
	for i, l := range a.logs {
		out[i] = l.Action
	}
	return out
}

type invalidatorStub struct {
	calls int
}

func (i *invalidatorStub) Invalidate(ctx context.Context) { i.calls++ }

// scheduleFixture is a small campus: two classrooms and one lab, one
// standing booking on room 101 and two course sections.
type scheduleFixture struct {
	rooms       *roomStoreStub
	bookings    *bookingStoreStub
	enrollments *enrollmentStoreStub
	requests    *requestStoreStub
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()
	return &scheduleFixture{
		rooms: newRoomStoreStub(
			models.Room{ID: 101, Name: "Room 101", Building: "A", Capacity: 40, HasProjector: true, Kind: models.RoomKindClassroom},
			models.Room{ID: 102, Name: "Room 102", Building: "A", Capacity: 20, Kind: models.RoomKindClassroom},
			models.Room{ID: 301, Name: "Lab 1", Building: "C", Capacity: 40, HasProjector: true, HasTV: true, Kind: models.RoomKindLab, ComputerCount: intPtr(30)},
		),
		bookings: &bookingStoreStub{bookings: []models.Booking{{
			ID:           "b-1",
			RoomID:       101,
			EnrollmentID: "enr-1",
			StartDate:    mustDate(t, "2024-03-04"),
			EndDate:      mustDate(t, "2024-06-28"),
			DayBlocks:    mustSlots(t, "MONDAY:MORNING_1,WEDNESDAY:MORNING_1"),
		}}},
		enrollments: &enrollmentStoreStub{items: map[string]models.EnrollmentDetail{
			"enr-1": {
				Enrollment: models.Enrollment{ID: "enr-1", CourseID: "c-1", ProfessorID: "prof-1", Section: "01",
					Headcount: 30, Margin: 5, RegistrationDeadline: mustDate(t, "2024-03-01")},
				CourseCode: "CS101", CourseName: "Programming",
			},
			"enr-small": {
				Enrollment: models.Enrollment{ID: "enr-small", CourseID: "c-2", ProfessorID: "prof-2", Section: "02",
					Headcount: 18, Margin: 5, RegistrationDeadline: mustDate(t, "2024-03-01")},
				CourseCode: "MA201", CourseName: "Statistics",
			},
			"enr-lab": {
				Enrollment: models.Enrollment{ID: "enr-lab", CourseID: "c-3", ProfessorID: "prof-1", Section: "01",
					Headcount: 25, RegistrationDeadline: mustDate(t, "2024-03-01")},
				CourseCode: "CS205", CourseName: "Databases", RequiresLab: true,
			},
		}},
		requests: &requestStoreStub{},
	}
}

func (f *scheduleFixture) guard(now time.Time, metrics *MetricsService) *BookingGuard {
	g := NewBookingGuard(f.rooms, f.enrollments, f.bookings, f.requests, time.UTC, metrics, nil)
	g.now = fixedClock(now)
	return g
}

// memoryCache is a CacheRepository backed by a map of JSON payloads.
type memoryCache struct {
	entries map[string][]byte
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	removed := 0
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}
