package domain

import "time"

type ClassStatus string

const (
	ClassAvailable ClassStatus = "AVAILABLE"
	ClassClosed    ClassStatus = "CLOSED"
)

type Class struct {
	ID          string
	CourseID    string
	Title       string
	Description string
	Capacity    int // positive
	Status      ClassStatus
	StartDate   time.Time // expected before EndDate, not guaranteed
	EndDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
