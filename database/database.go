package database

import (
	"context"

	"gorm.io/gorm"
)

// Database bundles every repository over one gorm handle. Inside WithTransaction
// the handle is the transaction, so repositories obtained from tx share it.
type Database struct {
	db               *gorm.DB
	userRepo         *UserRepo
	projectRepo      *ProjectRepo
	projectTagRepo   *ProjectTagRepo
	tagRepo          *TagRepo
	commentRepo      *CommentRepo
	likeRepo         *LikeRepo
	notificationRepo *NotificationRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:               db,
		userRepo:         NewUserRepo(db),
		projectRepo:      NewProjectRepo(db),
		projectTagRepo:   NewProjectTagRepo(db),
		tagRepo:          NewTagRepo(db),
		commentRepo:      NewCommentRepo(db),
		likeRepo:         NewLikeRepo(db),
		notificationRepo: NewNotificationRepo(db),
	}
}

// WithTransaction runs fn inside a database transaction. Returning an error rolls back.
func (d Database) WithTransaction(ctx context.Context, fn func(tx Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Ping checks that the database answers.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) ProjectTagRepo() *ProjectTagRepo {
	return d.projectTagRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

func (d Database) LikeRepo() *LikeRepo {
	return d.likeRepo
}

func (d Database) NotificationRepo() *NotificationRepo {
	return d.notificationRepo
}
