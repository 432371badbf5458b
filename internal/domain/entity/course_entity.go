package entity

import "time"

// Course metadata; lectures are loaded separately so the public listing never
// carries them.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedBy   string    `json:"created_by"`
	PosterID    string    `json:"-"`
	PosterURL   string    `json:"poster_url"`
	Views       int64     `json:"views"`
	NumVideos   int64     `json:"num_videos"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Lecture is a single video belonging to a course.
type Lecture struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoID     string    `json:"-"`
	VideoURL    string    `json:"video_url"`
	CreatedAt   time.Time `json:"created_at"`
}
