package models

import "time"

// ServiceType is one entry of the service catalog.
type ServiceType struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Price    float64 `json:"price" yaml:"price"`
	Duration int     `json:"duration" yaml:"duration"` // minutes
}

// Provider is a masseur with a weekly availability pattern.
type Provider struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ShiftStart       string `json:"start_time"` // "08:00"
	ShiftEnd         string `json:"end_time"`   // "18:00"
	ExcludedWeekdays []int  `json:"excluded_days"`
}

// Excludes reports whether the weekday (0=Sunday) is one of the provider's days off.
func (p *Provider) Excludes(weekday time.Weekday) bool {
	for _, d := range p.ExcludedWeekdays {
		if d == int(weekday) {
			return true
		}
	}
	return false
}

// Booking is a scheduled appointment.
type Booking struct {
	ID          string      `json:"id"`
	ClientName  string      `json:"client_name"`
	Unit        string      `json:"unit"`
	Hotel       Hotel       `json:"hotel"`
	Phone       string      `json:"phone,omitempty"`
	ServiceID   string      `json:"service_id"`
	Date        string      `json:"date"` // "2006-01-02"
	Time        string      `json:"time"` // "15:04"
	ProviderID  string      `json:"provider_id"`
	PointOfSale PointOfSale `json:"point_of_sale"`
	Status      Status      `json:"status"`
	PhotoRef    string      `json:"photo_ref,omitempty"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Day returns the booking's calendar date.
func (b *Booking) Day() (time.Time, error) {
	return ParseDate(b.Date)
}

// StartMinute returns the booking's start as minutes since midnight.
func (b *Booking) StartMinute() (int, error) {
	return MinutesOfDay(b.Time)
}

// StartsAt combines date and time into a naive local instant.
func (b *Booking) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+ClockLayout, b.Date+" "+b.Time, loc)
}

// IsDone reports whether the booking was marked as completed.
func (b *Booking) IsDone() bool {
	return b.Status == StatusDone
}
