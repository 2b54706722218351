package controllers

import (
	"learnspace/backend/models"
	"learnspace/backend/repositories"
	"learnspace/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type QuizzesController struct {
	Quizzes *repositories.QuizRepository
	Courses *repositories.CourseRepository
	Users   *repositories.UserRepository
}

func NewQuizzesController(
	quizzes *repositories.QuizRepository,
	courses *repositories.CourseRepository,
	users *repositories.UserRepository,
) *QuizzesController {
	return &QuizzesController{Quizzes: quizzes, Courses: courses, Users: users}
}

func (qc *QuizzesController) ListByCourse(c *fiber.Ctx) error {
	quizzes, err := qc.Quizzes.ListByCourse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return utils.Success(c, fiber.StatusOK, quizzes)
}

// GetQuiz returns the quiz with questions and options. Correct-answer
// flags are stripped, takers only see the choices.
func (qc *QuizzesController) GetQuiz(c *fiber.Ctx) error {
	quiz, err := qc.Quizzes.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if quiz == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Quiz not found",
		})
	}

	return utils.Success(c, fiber.StatusOK, sanitizeQuiz(quiz))
}

// sanitizeQuiz copies the quiz without the is_correct flags. The cached
// entity is shared and must not be mutated in place.
func sanitizeQuiz(quiz *models.Quiz) *models.Quiz {
	clean := *quiz
	clean.Questions = make([]models.Question, len(quiz.Questions))
	for i, question := range quiz.Questions {
		cleanQuestion := question
		cleanQuestion.Options = make([]models.AnswerOption, len(question.Options))
		for j, option := range question.Options {
			cleanOption := option
			cleanOption.IsCorrect = false
			cleanQuestion.Options[j] = cleanOption
		}
		clean.Questions[i] = cleanQuestion
	}
	return &clean
}

type QuizInput struct {
	CourseID     string  `json:"course_id" validate:"required"`
	Title        string  `json:"title" validate:"required"`
	Description  string  `json:"description"`
	TimeLimitMin int     `json:"time_limit_min"`
	PassingScore float64 `json:"passing_score"`
}

func (qc *QuizzesController) CreateQuiz(c *fiber.Ctx) error {
	var input QuizInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	if !qc.canManageCourse(c, input.CourseID) {
		return nil
	}

	quizzes, err := qc.Quizzes.ListByCourse(input.CourseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	quiz := models.Quiz{
		CourseID:     input.CourseID,
		Title:        input.Title,
		Description:  input.Description,
		TimeLimitMin: input.TimeLimitMin,
		PassingScore: input.PassingScore,
		QuizOrder:    len(quizzes) + 1,
	}
	if quiz.PassingScore <= 0 {
		quiz.PassingScore = 50
	}

	if err := qc.Quizzes.Create(&quiz); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create quiz",
		})
	}
	return utils.Success(c, fiber.StatusCreated, quiz)
}

type QuestionInput struct {
	Text    string  `json:"text" validate:"required"`
	Points  float64 `json:"points"`
	Options []struct {
		Text      string `json:"text" validate:"required"`
		IsCorrect bool   `json:"is_correct"`
	} `json:"options" validate:"required,min=2"`
}

func (qc *QuizzesController) AddQuestion(c *fiber.Ctx) error {
	quiz, err := qc.Quizzes.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if quiz == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Quiz not found",
		})
	}
	if !qc.canManageCourse(c, quiz.CourseID) {
		return nil
	}

	var input QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	order, err := qc.Quizzes.NextQuestionOrder(quiz.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	question := models.Question{
		QuizID:        quiz.ID,
		Text:          input.Text,
		Points:        input.Points,
		QuestionOrder: order,
	}
	if question.Points <= 0 {
		question.Points = 1
	}
	for i, option := range input.Options {
		question.Options = append(question.Options, models.AnswerOption{
			Text:        option.Text,
			IsCorrect:   option.IsCorrect,
			OptionOrder: i + 1,
		})
	}

	if err := qc.Quizzes.AddQuestion(&question); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create question",
		})
	}
	return utils.Success(c, fiber.StatusCreated, question)
}

type SubmitInput struct {
	// question id -> selected option ids
	Answers map[string][]string `json:"answers" validate:"required"`
}

// SubmitAttempt grades the submission server-side. A question counts
// only when the selected option set matches the correct set exactly.
func (qc *QuizzesController) SubmitAttempt(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	quiz, err := qc.Quizzes.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if quiz == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Quiz not found",
		})
	}

	var input SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var score, maxScore float64
	for _, question := range quiz.Questions {
		maxScore += question.Points
		if answeredCorrectly(question, input.Answers[question.ID]) {
			score += question.Points
		}
	}

	passed := maxScore > 0 && score/maxScore*100 >= quiz.PassingScore

	attemptCount, err := qc.Quizzes.CountAttempts(quiz.ID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	attempt := models.QuizAttempt{
		QuizID:        quiz.ID,
		UserID:        userID,
		Score:         score,
		MaxScore:      maxScore,
		Passed:        passed,
		AttemptNumber: int(attemptCount) + 1,
	}
	if err := qc.Quizzes.CreateAttempt(&attempt); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save attempt",
		})
	}
	return utils.Success(c, fiber.StatusCreated, attempt)
}

func (qc *QuizzesController) ListAttempts(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	attempts, err := qc.Quizzes.AttemptsByUser(c.Params("id"), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return utils.Success(c, fiber.StatusOK, attempts)
}

func answeredCorrectly(question models.Question, selected []string) bool {
	selectedSet := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		selectedSet[id] = struct{}{}
	}

	correct := 0
	for _, option := range question.Options {
		_, picked := selectedSet[option.ID]
		if option.IsCorrect {
			if !picked {
				return false
			}
			correct++
		} else if picked {
			return false
		}
	}
	return correct > 0 && len(selectedSet) == correct
}

func (qc *QuizzesController) canManageCourse(c *fiber.Ctx, courseID string) bool {
	userID, _ := c.Locals("userID").(string)

	course, err := qc.Courses.GetByID(courseID)
	if err != nil {
		c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
		return false
	}
	if course == nil {
		c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
		return false
	}
	if course.AuthorID == userID {
		return true
	}

	account, err := qc.Users.GetByID(userID)
	if err == nil && account != nil && account.Role == "admin" {
		return true
	}

	c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "Forbidden - not the course author",
	})
	return false
}
