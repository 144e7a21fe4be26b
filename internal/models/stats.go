package models

import "time"

// CollegeStats summarizes how much material a college has shared.
type CollegeStats struct {
	College        string    `json:"college"`
	Notes          int       `json:"notes"`
	PYQs           int       `json:"pyqs"`
	Timetables     int       `json:"timetables"`
	Announcements  int       `json:"announcements"`
	ActiveThoughts int       `json:"active_thoughts"`
	TotalResources int       `json:"total_resources"`
	GeneratedAt    time.Time `json:"generated_at"`
}
