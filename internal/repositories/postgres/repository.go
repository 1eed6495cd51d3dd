package postgres

import (
	"errors"

	"github.com/campus-stack/testing-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the gorm-backed aggregate. It relies on the connection
// being opened with TranslateError so unique violations arrive as
// gorm.ErrDuplicatedKey regardless of driver.
type Repository struct {
	db           *gorm.DB
	user         *UserPostgreSQL
	course       *CoursePostgreSQL
	question     *QuestionPostgreSQL
	test         *TestPostgreSQL
	attempt      *AttemptPostgreSQL
	notification *NotificationPostgreSQL
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:           db,
		user:         NewUserPostgreSQL(db),
		course:       NewCoursePostgreSQL(db),
		question:     NewQuestionPostgreSQL(db),
		test:         NewTestPostgreSQL(db),
		attempt:      NewAttemptPostgreSQL(db),
		notification: NewNotificationPostgreSQL(db),
	}
}

func (r *Repository) User() repositories.UserRepository                 { return r.user }
func (r *Repository) Course() repositories.CourseRepository             { return r.course }
func (r *Repository) Question() repositories.QuestionRepository         { return r.question }
func (r *Repository) Test() repositories.TestRepository                 { return r.test }
func (r *Repository) Attempt() repositories.AttemptRepository           { return r.attempt }
func (r *Repository) Notification() repositories.NotificationRepository { return r.notification }

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicateKey
	default:
		return err
	}
}
