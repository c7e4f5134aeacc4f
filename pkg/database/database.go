package database

import (
	"fmt"
	"log"

	"lms_backend/internal/config"
	"lms_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}

// Migrate creates or updates the schema. The unique indexes declared on the
// models are what make enrollment, completion and attempt-number writes safe
// under concurrent submissions.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.ContentItem{},
		&model.LearningPlan{},
		&model.LearningPlanCourse{},
		&model.Enrollment{},
		&model.Completion{},
		&model.VideoProgress{},
		&model.Test{},
		&model.Question{},
		&model.QuestionOption{},
		&model.TestAttempt{},
		&model.TestAnswer{},
		&model.InstructorAssignment{},
		&model.Group{},
		&model.GroupMember{},
		&model.GroupAccess{},
		&model.LearningPlanGroupAccess{},
	)
}
