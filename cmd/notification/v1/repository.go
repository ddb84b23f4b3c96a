package notification

import (
	"context"
	"database/sql"

	"county-task-api/entity"
	"county-task-api/pkg/exception"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

type NotificationRepository interface {
	FindManyByUserId(ctx context.Context, userID int64, limit uint64) (bunchOfNotifications []entity.Notification, err error)
	FindOneById(ctx context.Context, id int64) (notification entity.Notification, err error)
	Save(ctx context.Context, notification entity.Notification) (id int64, err error)
	MarkReadById(ctx context.Context, id int64) (err error)
	MarkAllReadByUserId(ctx context.Context, userID int64) (err error)
	DeleteManyByTaskIds(ctx context.Context, taskIDs []int64) (err error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type notificationRepository struct {
	logger      *logrus.Logger
	dbReadOnly  *sql.DB
	dbReadWrite *sql.DB
	tableName   string
}

// NewNotificationRepository is a constructor
func NewNotificationRepository(logger *logrus.Logger, dbReadOnly *sql.DB, dbReadWrite *sql.DB, tableName string) NotificationRepository {
	return &notificationRepository{
		logger:      logger,
		dbReadOnly:  dbReadOnly,
		dbReadWrite: dbReadWrite,
		tableName:   tableName,
	}
}

func (r *notificationRepository) selectNotifications() sq.SelectBuilder {
	return sq.Select("n.id, n.user_id, n.type, n.title, n.message, n.task_id, n.is_read, n.created_at").
		From(r.tableName + " n")
}

func (r *notificationRepository) FindManyByUserId(ctx context.Context, userID int64, limit uint64) (bunchOfNotifications []entity.Notification, err error) {
	stmt, args, err := r.selectNotifications().
		Where(sq.Eq{"n.user_id": userID}).
		OrderBy("n.created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, wrapError(err)
	}

	bunchOfNotifications, err = r.query(ctx, r.dbReadOnly, stmt, args...)
	if err != nil {
		err = wrapError(err)
	}
	return
}

func (r *notificationRepository) FindOneById(ctx context.Context, id int64) (notification entity.Notification, err error) {
	stmt, args, err := r.selectNotifications().Where(sq.Eq{"n.id": id}).ToSql()
	if err != nil {
		err = wrapError(err)
		return
	}

	bunchOfNotifications, err := r.query(ctx, r.dbReadOnly, stmt, args...)
	if err != nil {
		err = wrapError(err)
		return
	}

	if len(bunchOfNotifications) < 1 {
		err = exception.ErrNotFound
		return
	}

	notification = bunchOfNotifications[0]
	return
}

func (r *notificationRepository) Save(ctx context.Context, notification entity.Notification) (id int64, err error) {
	stmt, args, err := sq.Insert(r.tableName).
		Columns("user_id", "type", "title", "message", "task_id", "is_read", "created_at").
		Values(notification.UserID, notification.Type, notification.Title, notification.Message, notification.TaskID, notification.Read, notification.CreatedAt).
		ToSql()
	if err != nil {
		err = wrapError(err)
		return
	}

	res, err := r.exec(ctx, r.dbReadWrite, stmt, args...)
	if err != nil {
		err = wrapError(err)
		return
	}

	id, err = res.LastInsertId()
	if err != nil {
		err = wrapError(err)
	}
	return
}

func (r *notificationRepository) MarkReadById(ctx context.Context, id int64) (err error) {
	stmt, args, err := sq.Update(r.tableName).Set("is_read", true).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return wrapError(err)
	}

	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *notificationRepository) MarkAllReadByUserId(ctx context.Context, userID int64) (err error) {
	stmt, args, err := sq.Update(r.tableName).Set("is_read", true).Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return wrapError(err)
	}

	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *notificationRepository) DeleteManyByTaskIds(ctx context.Context, taskIDs []int64) (err error) {
	if len(taskIDs) == 0 {
		return nil
	}

	stmt, args, err := sq.Delete(r.tableName).Where(sq.Eq{"task_id": taskIDs}).ToSql()
	if err != nil {
		return wrapError(err)
	}

	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *notificationRepository) query(ctx context.Context, cmd sqlCommand, query string, args ...interface{}) (bunchOfNotifications []entity.Notification, err error) {
	var rows *sql.Rows
	if rows, err = cmd.QueryContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).Error(query, err)
		return
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.WithContext(ctx).Error(query, err)
		}
	}()

	for rows.Next() {
		var notification entity.Notification
		var taskID sql.NullInt64

		err = rows.Scan(&notification.ID, &notification.UserID, &notification.Type, &notification.Title, &notification.Message, &taskID, &notification.Read, &notification.CreatedAt)
		if err != nil {
			r.logger.WithContext(ctx).Error(query, err)
			return
		}

		if taskID.Valid {
			notification.TaskID = &taskID.Int64
		}

		bunchOfNotifications = append(bunchOfNotifications, notification)
	}

	return
}

func (r *notificationRepository) exec(ctx context.Context, cmd sqlCommand, command string, args ...interface{}) (result sql.Result, err error) {
	var stmt *sql.Stmt
	if stmt, err = cmd.PrepareContext(ctx, command); err != nil {
		r.logger.WithContext(ctx).Error(command, err)
		return
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.WithContext(ctx).Error(command, err)
		}
	}()

	if result, err = stmt.ExecContext(ctx, args...); err != nil {
		r.logger.WithContext(ctx).Error(command, err)
	}

	return
}

func wrapError(e error) (err error) {
	if e == sql.ErrNoRows {
		return exception.ErrNotFound
	}
	if driverErr, ok := e.(*mysql.MySQLError); ok {
		if driverErr.Number == 1062 {
			return exception.ErrConflict
		}
	}
	return exception.ErrInternalServer
}
