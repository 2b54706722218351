package controllers

import (
	"learnspace/backend/models"
	"learnspace/backend/repositories"
	"learnspace/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Courses *repositories.CourseRepository
	Users   *repositories.UserRepository
}

func NewCoursesController(courses *repositories.CourseRepository, users *repositories.UserRepository) *CoursesController {
	return &CoursesController{Courses: courses, Users: users}
}

// ListCourses serves the public catalogue. Results come from the
// search/pagination cache and may lag writes until the TTL expires.
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	search := c.Query("search")
	topic := c.Query("topic")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	courses, total, err := cc.Courses.List(search, topic, page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return utils.Paginate(c, courses, total, page, pageSize)
}

func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	course, err := cc.Courses.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if course == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}
	return utils.Success(c, fiber.StatusOK, course)
}

type CourseInput struct {
	Title       string `json:"title" validate:"required"`
	ShortDesc   string `json:"short_desc"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Topic       string `json:"topic"`
	LogoURL     string `json:"logo_url"`
	AccessLevel string `json:"access_level"`
	Price       int64  `json:"price"`
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var input CourseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	course := models.Course{
		Title:       input.Title,
		ShortDesc:   input.ShortDesc,
		Description: input.Description,
		Difficulty:  input.Difficulty,
		Topic:       input.Topic,
		AuthorID:    userID,
		LogoURL:     input.LogoURL,
		AccessLevel: input.AccessLevel,
		Price:       input.Price,
	}
	if course.AccessLevel == "" {
		course.AccessLevel = "public"
	}

	if err := cc.Courses.Create(&course); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create course",
		})
	}
	return utils.Success(c, fiber.StatusCreated, course)
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	course, ok := cc.authorizedCourse(c)
	if !ok {
		return nil
	}

	var input CourseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Title != "" {
		course.Title = input.Title
	}
	if input.ShortDesc != "" {
		course.ShortDesc = input.ShortDesc
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.Difficulty != "" {
		course.Difficulty = input.Difficulty
	}
	if input.Topic != "" {
		course.Topic = input.Topic
	}
	if input.LogoURL != "" {
		course.LogoURL = input.LogoURL
	}
	if input.AccessLevel != "" {
		course.AccessLevel = input.AccessLevel
	}
	if input.Price > 0 {
		course.Price = input.Price
	}

	if err := cc.Courses.Update(course); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update course",
		})
	}
	return utils.Success(c, fiber.StatusOK, course)
}

type ChapterInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

func (cc *CoursesController) AddChapter(c *fiber.Ctx) error {
	course, ok := cc.authorizedCourse(c)
	if !ok {
		return nil
	}

	var input ChapterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	order, err := cc.Courses.NextChapterOrder(course.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	chapter := models.Chapter{
		CourseID:     course.ID,
		Title:        input.Title,
		Description:  input.Description,
		ChapterOrder: order,
	}
	if err := cc.Courses.AddChapter(&chapter); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create chapter",
		})
	}
	return utils.Success(c, fiber.StatusCreated, chapter)
}

func (cc *CoursesController) UpdateChapter(c *fiber.Ctx) error {
	course, ok := cc.authorizedCourse(c)
	if !ok {
		return nil
	}

	chapter, err := cc.Courses.GetChapter(c.Params("chapterId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if chapter == nil || chapter.CourseID != course.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Chapter not found",
		})
	}

	var input ChapterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Title != "" {
		chapter.Title = input.Title
	}
	if input.Description != "" {
		chapter.Description = input.Description
	}

	if err := cc.Courses.UpdateChapter(chapter); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update chapter",
		})
	}
	return utils.Success(c, fiber.StatusOK, chapter)
}

type LessonInput struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	course, ok := cc.authorizedCourse(c)
	if !ok {
		return nil
	}

	chapter, err := cc.Courses.GetChapter(c.Params("chapterId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if chapter == nil || chapter.CourseID != course.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Chapter not found",
		})
	}

	var input LessonInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	order, err := cc.Courses.NextLessonOrder(chapter.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	lesson := models.Lesson{
		ChapterID:   chapter.ID,
		Title:       input.Title,
		Content:     input.Content,
		LessonOrder: order,
	}
	if err := cc.Courses.AddLesson(course.ID, &lesson); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create lesson",
		})
	}
	return utils.Success(c, fiber.StatusCreated, lesson)
}

func (cc *CoursesController) UpdateLesson(c *fiber.Ctx) error {
	course, ok := cc.authorizedCourse(c)
	if !ok {
		return nil
	}

	lesson, err := cc.Courses.GetLesson(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if lesson == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lesson not found",
		})
	}

	var input LessonInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Title != "" {
		lesson.Title = input.Title
	}
	if input.Content != "" {
		lesson.Content = input.Content
	}

	if err := cc.Courses.UpdateLesson(course.ID, lesson); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update lesson",
		})
	}
	return utils.Success(c, fiber.StatusOK, lesson)
}

// authorizedCourse loads the course from the :id parameter and checks
// the caller is its author or an admin. On failure it writes the
// response itself and reports ok=false.
func (cc *CoursesController) authorizedCourse(c *fiber.Ctx) (*models.Course, bool) {
	userID, _ := c.Locals("userID").(string)

	course, err := cc.Courses.GetByID(c.Params("id"))
	if err != nil {
		c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
		return nil, false
	}
	if course == nil {
		c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
		return nil, false
	}

	if course.AuthorID == userID {
		return course, true
	}

	account, err := cc.Users.GetByID(userID)
	if err == nil && account != nil && account.Role == "admin" {
		return course, true
	}

	c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "Forbidden - not the course author",
	})
	return nil, false
}
