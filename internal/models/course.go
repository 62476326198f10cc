package models

import "time"

// CourseCategory is the fixed pedagogical type of a course.
type CourseCategory string

const (
	CourseCategoryLecture  CourseCategory = "LECTURE"
	CourseCategoryLab      CourseCategory = "LAB"
	CourseCategorySeminar  CourseCategory = "SEMINAR"
	CourseCategoryWorkshop CourseCategory = "WORKSHOP"
)

// Course represents an offered course and its weekly teaching demand.
type Course struct {
	ID             string         `db:"id" json:"id"`
	Code           string         `db:"code" json:"code"`
	Title          string         `db:"title" json:"title"`
	Credits        int            `db:"credits" json:"credits"`
	Category       CourseCategory `db:"category" json:"category"`
	TheoryHours    int            `db:"theory_hours" json:"theory_hours"`
	PracticalHours int            `db:"practical_hours" json:"practical_hours"`
	ExpectedSize   int            `db:"expected_size" json:"expected_size"`
	RequiredTag    *string        `db:"required_tag" json:"required_tag,omitempty"`
	GroupLabel     *string        `db:"group_label" json:"group_label,omitempty"`
	Active         bool           `db:"active" json:"active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures filtering options for listing courses.
type CourseFilter struct {
	Search    string
	Category  *CourseCategory
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
