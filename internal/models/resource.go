package models

// ResourceKind distinguishes the catalogued resource collections.
type ResourceKind string

const (
	ResourceKindNote      ResourceKind = "notes"
	ResourceKindPYQ       ResourceKind = "pyqs"
	ResourceKindTimetable ResourceKind = "timetables"
)
