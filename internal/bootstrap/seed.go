package bootstrap

import (
	"anoa.com/campushub/internal/entity"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Account{},
		&entity.Event{},
		&entity.Course{},
		&entity.CourseResource{},
	)
}

const department = "Computer Science and Engineering"

var defaultCourses = []entity.Course{
	{
		CourseCode:  "CSE110",
		CourseName:  "Programming Language I",
		Description: "Introduction to programming concepts using Python. Covers basic syntax, data types, control structures, functions, and object-oriented programming fundamentals.",
		Department:  department,
	},
	{
		CourseCode:  "CSE111",
		CourseName:  "Programming Language II",
		Description: "Advanced programming concepts including data structures, algorithms, and software development practices.",
		Department:  department,
	},
	{
		CourseCode:  "CSE220",
		CourseName:  "Data Structures",
		Description: "Study of fundamental data structures including arrays, linked lists, stacks, queues, trees, and graphs.",
		Department:  department,
	},
	{
		CourseCode:  "CSE221",
		CourseName:  "Algorithms",
		Description: "Analysis and design of algorithms, complexity analysis, and algorithm optimization techniques.",
		Department:  department,
	},
	{
		CourseCode:  "CSE310",
		CourseName:  "Database Management Systems",
		Description: "Introduction to database concepts, SQL, database design, and database management systems.",
		Department:  department,
	},
}

func strPtr(s string) *string { return &s }

func defaultResources(courseID uint) []entity.CourseResource {
	return []entity.CourseResource{
		{
			Title:        "Week 1 Lecture Notes",
			Description:  strPtr("Introduction to Python programming basics, variables, and data types."),
			ResourceType: entity.ResourceTypeDocument,
			CourseID:     courseID,
		},
		{
			Title:        "Python Installation Guide",
			Description:  strPtr("Step-by-step guide for installing Python and setting up the development environment."),
			ResourceType: entity.ResourceTypeLink,
			ExternalLink: strPtr("https://www.python.org/downloads/"),
			CourseID:     courseID,
		},
		{
			Title:        "Assignment 1: Hello World",
			Description:  strPtr("First programming assignment to create a simple Hello World program."),
			ResourceType: entity.ResourceTypeAssignment,
			CourseID:     courseID,
		},
		{
			Title:        "Course Syllabus",
			Description:  strPtr("Complete course syllabus with topics, schedule, and grading policy."),
			ResourceType: entity.ResourceTypeSyllabus,
			CourseID:     courseID,
		},
	}
}

// SeedCourses fills an empty catalog with the sample courses and the CSE110
// resources. A catalog that already holds any course is left alone.
func SeedCourses(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Info().Int64("courses", count).Msg("course catalog already seeded, skipping")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		courses := make([]entity.Course, len(defaultCourses))
		copy(courses, defaultCourses)
		if err := tx.Create(&courses).Error; err != nil {
			return err
		}

		resources := defaultResources(courses[0].ID)
		if err := tx.Omit("Course").Create(&resources).Error; err != nil {
			return err
		}

		log.Info().Int("courses", len(courses)).Int("resources", len(resources)).Msg("sample courses and resources created")
		return nil
	})
}
