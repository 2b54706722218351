package repositories

import (
	"errors"
	"time"

	"learnspace/backend/cache"
	"learnspace/backend/config"
	"learnspace/backend/models"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB         *gorm.DB
	Cache      cache.Store
	defaultTTL time.Duration
	longTTL    time.Duration
}

func NewCourseRepository(db *gorm.DB, store cache.Store, cfg *config.Config) *CourseRepository {
	return &CourseRepository{
		DB:         db,
		Cache:      store,
		defaultTTL: time.Duration(cfg.CacheDefaultTTLMinutes) * time.Minute,
		longTTL:    time.Duration(cfg.CacheLongTTLMinutes) * time.Minute,
	}
}

// GetByID hands out a copy of the cached entry. Callers mutate the
// result before saving, and the cache must keep serving persisted
// state if that save never happens.
func (r *CourseRepository) GetByID(courseID string) (*models.Course, error) {
	key := cache.CourseKey(courseID)
	if cached, ok := r.Cache.Get(key); ok {
		course := *cached.(*models.Course)
		return &course, nil
	}

	var course models.Course
	err := r.DB.
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("chapter_order")
		}).
		Preload("Chapters.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lesson_order")
		}).
		First(&course, "id = ?", courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	stored := course
	r.Cache.Set(key, &stored, r.longTTL)
	return &course, nil
}

// List results are cached under search/pagination keys and accepted to
// go stale until TTL expiry.
func (r *CourseRepository) List(search, topic string, page, pageSize int) ([]models.Course, int64, error) {
	key := cache.CourseListKey(search, topic, page, pageSize)
	if cached, ok := r.Cache.Get(key); ok {
		result := cached.(courseListResult)
		return result.Courses, result.Total, nil
	}

	query := r.DB.Model(&models.Course{}).Where("access_level = ?", "public")
	if search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []models.Course
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&courses).Error
	if err != nil {
		return nil, 0, err
	}

	if len(courses) > 0 {
		r.Cache.Set(key, courseListResult{Courses: courses, Total: total}, r.defaultTTL)
	}
	return courses, total, nil
}

type courseListResult struct {
	Courses []models.Course
	Total   int64
}

func (r *CourseRepository) Create(course *models.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *models.Course) error {
	if err := r.DB.Save(course).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.CourseKey(course.ID))
	return nil
}

func (r *CourseRepository) Delete(courseID string) error {
	if err := r.DB.Delete(&models.Course{}, "id = ?", courseID).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.CourseKey(courseID))
	return nil
}

func (r *CourseRepository) AddChapter(chapter *models.Chapter) error {
	if err := r.DB.Create(chapter).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.CourseKey(chapter.CourseID))
	return nil
}

func (r *CourseRepository) UpdateChapter(chapter *models.Chapter) error {
	if err := r.DB.Save(chapter).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.CourseKey(chapter.CourseID))
	return nil
}

func (r *CourseRepository) GetChapter(chapterID string) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := r.DB.First(&chapter, "id = ?", chapterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chapter, nil
}

func (r *CourseRepository) NextChapterOrder(courseID string) (int, error) {
	var count int64
	err := r.DB.Model(&models.Chapter{}).Where("course_id = ?", courseID).Count(&count).Error
	return int(count) + 1, err
}

func (r *CourseRepository) AddLesson(courseID string, lesson *models.Lesson) error {
	if err := r.DB.Create(lesson).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.CourseKey(courseID))
	return nil
}

func (r *CourseRepository) UpdateLesson(courseID string, lesson *models.Lesson) error {
	if err := r.DB.Save(lesson).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.CourseKey(courseID))
	return nil
}

func (r *CourseRepository) GetLesson(lessonID string) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.DB.First(&lesson, "id = ?", lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lesson, nil
}

func (r *CourseRepository) NextLessonOrder(chapterID string) (int, error) {
	var count int64
	err := r.DB.Model(&models.Lesson{}).Where("chapter_id = ?", chapterID).Count(&count).Error
	return int(count) + 1, err
}

func (r *CourseRepository) CountLessons(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Lesson{}).
		Joins("JOIN chapters ON chapters.id = lessons.chapter_id").
		Where("chapters.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *CourseRepository) CountAll() (int64, error) {
	var count int64
	err := r.DB.Model(&models.Course{}).Count(&count).Error
	return count, err
}
