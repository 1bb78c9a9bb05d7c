package service

import (
	"fmt"
	"strings"
	"time"

	"zencontrol/internal/access"
	"zencontrol/internal/models"
	"zencontrol/internal/scheduling"
)

// DayBookings is one calendar cell.
type DayBookings struct {
	Date     string           `json:"date"`
	Bookings []models.Booking `json:"bookings"`
}

// TaskList is the masseur's own agenda.
type TaskList struct {
	Bookings []models.Booking `json:"bookings"`
	Pending  int              `json:"pending"`
}

// Dashboard holds the counters shown on the landing view.
type Dashboard struct {
	Today    int `json:"today"`
	Past     int `json:"past"`
	Upcoming int `json:"upcoming"`
	Done     int `json:"done"`
	Pending  int `json:"pending"`
}

// Calendar groups the month's bookings by date, sorted by time.
// Masseur sessions always see their own column.
func (s *BookingService) Calendar(session models.Session, month, providerID string) ([]DayBookings, error) {
	if _, err := time.Parse(models.MonthLayout, month); err != nil {
		return nil, fmt.Errorf("%w: month '%s'", scheduling.ErrInvalidField, month)
	}
	if session.IsMasseur() {
		providerID = session.ProviderID
	}

	var selected []models.Booking
	for _, b := range s.bookings.List() {
		if !strings.HasPrefix(b.Date, month+"-") {
			continue
		}
		if providerID != "" && b.ProviderID != providerID {
			continue
		}
		selected = append(selected, b)
	}
	sortByStart(selected)

	var days []DayBookings
	for _, b := range selected {
		if n := len(days); n > 0 && days[n-1].Date == b.Date {
			days[n-1].Bookings = append(days[n-1].Bookings, b)
			continue
		}
		days = append(days, DayBookings{Date: b.Date, Bookings: []models.Booking{b}})
	}
	return days, nil
}

// Tasks returns the masseur's bookings in start order with the pending count.
func (s *BookingService) Tasks(session models.Session) (*TaskList, error) {
	if !session.IsMasseur() {
		return nil, access.ErrForbidden
	}

	own := ownedBy(s.bookings.List(), session.ProviderID)
	sortByStart(own)

	list := &TaskList{Bookings: own}
	for _, b := range own {
		if !b.IsDone() {
			list.Pending++
		}
	}
	return list, nil
}

// Dashboard counts the session's visible bookings against the current time.
func (s *BookingService) Dashboard(session models.Session) Dashboard {
	now := s.now()
	today := now.Format(models.DateLayout)

	var d Dashboard
	for _, b := range s.List(session) {
		if b.IsDone() {
			d.Done++
		} else {
			d.Pending++
		}
		if b.Date == today {
			d.Today++
		}
		start, err := b.StartsAt(now.Location())
		if err != nil {
			continue
		}
		if start.Before(now) {
			d.Past++
		} else {
			d.Upcoming++
		}
	}
	return d
}
