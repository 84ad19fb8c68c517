package models

import (
	"time"

	"gorm.io/datatypes"
)

// DayHours is the operating window for one weekday. Open and Close are local
// times in "HH:MM" form. A disabled day keeps the queue closed no matter the
// clock.
type DayHours struct {
	Open    string `json:"open" yaml:"open"`
	Close   string `json:"close" yaml:"close"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// WeekHours maps lowercase weekday names ("monday" .. "sunday") to their
// operating windows. Updates replace the whole week at once.
type WeekHours map[string]DayHours

// WeekdayKeys lists the recognized WeekHours keys in calendar order.
var WeekdayKeys = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// QueueStatus is the workshop-wide queue configuration singleton.
type QueueStatus struct {
	ID             uint                             `gorm:"primaryKey" json:"-"`
	IsOpen         bool                             `json:"isOpen"`
	CurrentCount   int                              `json:"currentCount"`
	OperatingHours datatypes.JSONType[WeekHours]    `json:"operatingHours"`
	LastUpdated    time.Time                        `json:"lastUpdated"`
}

// Hours unwraps the stored weekly schedule.
func (s *QueueStatus) Hours() WeekHours {
	return s.OperatingHours.Data()
}

// SetHours replaces the stored weekly schedule.
func (s *QueueStatus) SetHours(h WeekHours) {
	s.OperatingHours = datatypes.NewJSONType(h)
}
