package models

type Course struct {
	Base
	Title       string    `gorm:"not null" json:"title"`
	ShortDesc   string    `json:"short_desc"`
	Description string    `json:"description"`
	Difficulty  string    `json:"difficulty"` // beginner, intermediate, advanced
	Topic       string    `json:"topic"`
	AuthorID    string    `gorm:"index" json:"author_id"`
	LogoURL     string    `json:"logo_url"`
	AccessLevel string    `gorm:"default:public" json:"access_level"` // public, private
	Price       int64     `gorm:"default:0" json:"price"`             // 0 means free
	Chapters    []Chapter `json:"chapters,omitempty"`
}

type Chapter struct {
	Base
	CourseID     string   `gorm:"index" json:"course_id"`
	Title        string   `gorm:"not null" json:"title"`
	Description  string   `json:"description"`
	ChapterOrder int      `json:"chapter_order"` // unique within a course by convention
	Lessons      []Lesson `json:"lessons,omitempty"`
}

type Lesson struct {
	Base
	ChapterID   string `gorm:"index" json:"chapter_id"`
	Title       string `gorm:"not null" json:"title"`
	Content     string `json:"content"`
	LessonOrder int    `json:"lesson_order"`
}
