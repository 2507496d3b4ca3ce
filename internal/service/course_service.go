package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
)

type CourseService struct {
	Repo         *repository.CourseRepository
	ResourceRepo *repository.ResourceRepository
}

func NewCourseService(repo *repository.CourseRepository, resourceRepo *repository.ResourceRepository) *CourseService {
	return &CourseService{Repo: repo, ResourceRepo: resourceRepo}
}

type CourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	IsPublished *bool  `json:"isPublished"`
}

func (s *CourseService) CreateCourse(teacherID uint, req CourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		TeacherID:   teacherID,
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
	if err := s.Repo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(teacherID, courseID uint, req CourseRequest) (*model.Course, error) {
	course, err := s.Repo.FindByID(courseID)
	if err != nil {
		return nil, err
	}
	if course.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}

	course.Title = req.Title
	course.Description = req.Description
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
	if err := s.Repo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(teacherID, courseID uint) error {
	course, err := s.Repo.FindByID(courseID)
	if err != nil {
		return err
	}
	if course.TeacherID != teacherID {
		return util.ErrPermissionDenied
	}
	return s.Repo.Delete(courseID)
}

func (s *CourseService) GetCourse(id uint) (*model.Course, error) {
	return s.Repo.FindByID(id)
}

func (s *CourseService) ListCourses(page, limit int) ([]model.Course, int64, error) {
	return s.Repo.List(page, limit)
}

func (s *CourseService) ListTeacherCourses(teacherID uint) ([]model.Course, error) {
	return s.Repo.ListByTeacher(teacherID)
}

func (s *CourseService) Enroll(studentID, courseID uint) error {
	course, err := s.Repo.FindByID(courseID)
	if err != nil {
		return util.ErrContentNotFound
	}
	if !course.IsPublished {
		return util.ErrPermissionDenied
	}
	return s.Repo.Enroll(courseID, studentID)
}

func (s *CourseService) ListEnrolledCourses(studentID uint) ([]model.Course, error) {
	return s.Repo.ListEnrolledCourses(studentID)
}

func (s *CourseService) IsStudentEnrolled(studentID, courseID uint) (bool, error) {
	return s.Repo.IsStudentEnrolled(studentID, courseID)
}

// Course resources

func (s *CourseService) AddResource(res *model.CourseResource) error {
	return s.ResourceRepo.Create(res)
}

func (s *CourseService) ListResources(courseID uint) ([]model.CourseResource, error) {
	return s.ResourceRepo.ListByCourse(courseID)
}

func (s *CourseService) DeleteResource(id uint) error {
	return s.ResourceRepo.Delete(id)
}
