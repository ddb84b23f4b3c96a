package task

import (
	"context"
	"database/sql"
	"time"

	"county-task-api/entity"
	"county-task-api/pkg/exception"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

type TaskRepository interface {
	FindMany(ctx context.Context, filter TaskFilter) (bunchOfTasks []entity.Task, err error)
	FindManyByCountyId(ctx context.Context, countyID int64) (bunchOfTasks []entity.Task, err error)
	FindOneById(ctx context.Context, id int64) (task entity.Task, err error)
	FindDue(ctx context.Context, from time.Time, to time.Time) (bunchOfTasks []entity.Task, err error)
	FindUpcoming(ctx context.Context, countyID *int64, from time.Time, to time.Time, limit uint64) (bunchOfTasks []entity.Task, err error)
	Save(ctx context.Context, task entity.Task) (id int64, err error)
	UpdateById(ctx context.Context, id int64, task entity.Task) (err error)
	DeleteById(ctx context.Context, id int64) (err error)
	DeleteManyByCountyId(ctx context.Context, countyID int64) (err error)
	AppendReminder(ctx context.Context, taskID int64, reminder entity.Reminder) (err error)
	UpdateFormFile(ctx context.Context, taskID int64, file entity.TaskFile) (err error)
	UpdateFilledFormFile(ctx context.Context, taskID int64, file entity.TaskFile) (err error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type taskRepository struct {
	logger            *logrus.Logger
	dbReadOnly        *sql.DB
	dbReadWrite       *sql.DB
	tableName         string
	reminderTableName string
}

// NewTaskRepository is a constructor
func NewTaskRepository(logger *logrus.Logger, dbReadOnly *sql.DB, dbReadWrite *sql.DB, tableName string, reminderTableName string) TaskRepository {
	return &taskRepository{
		logger:            logger,
		dbReadOnly:        dbReadOnly,
		dbReadWrite:       dbReadWrite,
		tableName:         tableName,
		reminderTableName: reminderTableName,
	}
}

func (r *taskRepository) selectTasks() sq.SelectBuilder {
	return sq.Select(`t.id, t.title, t.description, t.county_id, t.status, t.priority, t.deadline, t.assigned_by,
t.form_original_name, t.form_storage_key, t.form_uploaded_at,
t.filled_form_original_name, t.filled_form_storage_key, t.filled_form_uploaded_at, t.filled_form_uploaded_by,
t.created_at, t.updated_at`).
		From(r.tableName + " t")
}

func (r *taskRepository) FindMany(ctx context.Context, filter TaskFilter) (bunchOfTasks []entity.Task, err error) {
	stmt := r.selectTasks().OrderBy("t.deadline ASC", "t.created_at DESC")

	if filter.CountyID != nil {
		stmt = stmt.Where(sq.Eq{"t.county_id": *filter.CountyID})
	}
	if filter.Status != nil {
		stmt = stmt.Where(sq.Eq{"t.status": *filter.Status})
	}
	if filter.Priority != nil {
		stmt = stmt.Where(sq.Eq{"t.priority": *filter.Priority})
	}
	if filter.DeadlineFrom != nil {
		stmt = stmt.Where(sq.GtOrEq{"t.deadline": *filter.DeadlineFrom})
	}
	if filter.DeadlineTo != nil {
		stmt = stmt.Where(sq.LtOrEq{"t.deadline": *filter.DeadlineTo})
	}
	if filter.AssignedFrom != nil {
		stmt = stmt.Where(sq.GtOrEq{"t.created_at": *filter.AssignedFrom})
	}
	if filter.AssignedTo != nil {
		stmt = stmt.Where(sq.LtOrEq{"t.created_at": *filter.AssignedTo})
	}
	if filter.Search != nil {
		pattern := "%" + *filter.Search + "%"
		stmt = stmt.Where(sq.Or{sq.Like{"t.title": pattern}, sq.Like{"t.description": pattern}})
	}

	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, wrapError(err)
	}

	bunchOfTasks, err = r.query(ctx, r.dbReadOnly, query, args...)
	if err != nil {
		err = wrapError(err)
		return
	}

	if err = r.loadReminders(ctx, bunchOfTasks); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *taskRepository) FindManyByCountyId(ctx context.Context, countyID int64) (bunchOfTasks []entity.Task, err error) {
	return r.FindMany(ctx, TaskFilter{CountyID: &countyID})
}

func (r *taskRepository) FindOneById(ctx context.Context, id int64) (task entity.Task, err error) {
	query, args, err := r.selectTasks().Where(sq.Eq{"t.id": id}).ToSql()
	if err != nil {
		err = wrapError(err)
		return
	}

	bunchOfTasks, err := r.query(ctx, r.dbReadOnly, query, args...)
	if err != nil {
		err = wrapError(err)
		return
	}

	if len(bunchOfTasks) < 1 {
		err = exception.ErrNotFound
		return
	}

	if err = r.loadReminders(ctx, bunchOfTasks); err != nil {
		err = wrapError(err)
		return
	}

	task = bunchOfTasks[0]
	return
}

func (r *taskRepository) FindDue(ctx context.Context, from time.Time, to time.Time) (bunchOfTasks []entity.Task, err error) {
	query, args, err := r.selectTasks().
		Where(sq.NotEq{"t.status": entity.TaskStatusCompleted}).
		Where(sq.GtOrEq{"t.deadline": from}).
		Where(sq.LtOrEq{"t.deadline": to}).
		OrderBy("t.deadline ASC").
		ToSql()
	if err != nil {
		return nil, wrapError(err)
	}

	bunchOfTasks, err = r.query(ctx, r.dbReadOnly, query, args...)
	if err != nil {
		err = wrapError(err)
		return
	}

	if err = r.loadReminders(ctx, bunchOfTasks); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *taskRepository) FindUpcoming(ctx context.Context, countyID *int64, from time.Time, to time.Time, limit uint64) (bunchOfTasks []entity.Task, err error) {
	stmt := r.selectTasks().
		Where(sq.NotEq{"t.status": entity.TaskStatusCompleted}).
		Where(sq.GtOrEq{"t.deadline": from}).
		Where(sq.LtOrEq{"t.deadline": to}).
		OrderBy("t.deadline ASC").
		Limit(limit)

	if countyID != nil {
		stmt = stmt.Where(sq.Eq{"t.county_id": *countyID})
	}

	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, wrapError(err)
	}

	bunchOfTasks, err = r.query(ctx, r.dbReadOnly, query, args...)
	if err != nil {
		err = wrapError(err)
	}
	return
}

func (r *taskRepository) Save(ctx context.Context, task entity.Task) (id int64, err error) {
	stmt, args, err := sq.Insert(r.tableName).
		Columns("title", "description", "county_id", "status", "priority", "deadline", "assigned_by", "created_at").
		Values(task.Title, task.Description, task.CountyID, task.Status, task.Priority, task.Deadline, task.AssignedBy, task.CreatedAt).
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

func (r *taskRepository) UpdateById(ctx context.Context, id int64, task entity.Task) (err error) {
	stmt, args, err := sq.Update(r.tableName).
		Set("title", task.Title).
		Set("description", task.Description).
		Set("status", task.Status).
		Set("priority", task.Priority).
		Set("deadline", task.Deadline).
		Set("updated_at", task.UpdatedAt).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return wrapError(err)
	}

	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *taskRepository) DeleteById(ctx context.Context, id int64) (err error) {
	stmt, args, err := sq.Delete(r.reminderTableName).Where(sq.Eq{"task_id": id}).ToSql()
	if err != nil {
		return wrapError(err)
	}
	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		return wrapError(err)
	}

	stmt, args, err = sq.Delete(r.tableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return wrapError(err)
	}
	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *taskRepository) DeleteManyByCountyId(ctx context.Context, countyID int64) (err error) {
	sub := sq.Select("id").From(r.tableName).Where(sq.Eq{"county_id": countyID})
	subQuery, subArgs, err := sub.ToSql()
	if err != nil {
		return wrapError(err)
	}

	stmt, args, err := sq.Delete(r.reminderTableName).Where("task_id IN ("+subQuery+")", subArgs...).ToSql()
	if err != nil {
		return wrapError(err)
	}
	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		return wrapError(err)
	}

	stmt, args, err = sq.Delete(r.tableName).Where(sq.Eq{"county_id": countyID}).ToSql()
	if err != nil {
		return wrapError(err)
	}
	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

// AppendReminder inserts a reminder record. Records are never updated or
// removed afterwards.
func (r *taskRepository) AppendReminder(ctx context.Context, taskID int64, reminder entity.Reminder) (err error) {
	var sentBy *int64
	if id, ok := reminder.Origin.UserID(); ok {
		sentBy = &id
	}

	stmt, args, err := sq.Insert(r.reminderTableName).
		Columns("task_id", "sent_at", "sent_by").
		Values(taskID, reminder.SentAt, sentBy).
		ToSql()
	if err != nil {
		return wrapError(err)
	}

	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *taskRepository) UpdateFormFile(ctx context.Context, taskID int64, file entity.TaskFile) (err error) {
	stmt, args, err := sq.Update(r.tableName).
		Set("form_original_name", file.OriginalName).
		Set("form_storage_key", file.StorageKey).
		Set("form_uploaded_at", file.UploadedAt).
		Where(sq.Eq{"id": taskID}).ToSql()
	if err != nil {
		return wrapError(err)
	}

	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *taskRepository) UpdateFilledFormFile(ctx context.Context, taskID int64, file entity.TaskFile) (err error) {
	stmt, args, err := sq.Update(r.tableName).
		Set("filled_form_original_name", file.OriginalName).
		Set("filled_form_storage_key", file.StorageKey).
		Set("filled_form_uploaded_at", file.UploadedAt).
		Set("filled_form_uploaded_by", file.UploadedBy).
		Where(sq.Eq{"id": taskID}).ToSql()
	if err != nil {
		return wrapError(err)
	}

	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *taskRepository) loadReminders(ctx context.Context, bunchOfTasks []entity.Task) (err error) {
	if len(bunchOfTasks) == 0 {
		return nil
	}

	ids := make([]int64, len(bunchOfTasks))
	index := make(map[int64]*entity.Task, len(bunchOfTasks))
	for i := range bunchOfTasks {
		ids[i] = bunchOfTasks[i].ID
		index[bunchOfTasks[i].ID] = &bunchOfTasks[i]
	}

	query, args, err := sq.Select("r.task_id, r.sent_at, r.sent_by").
		From(r.reminderTableName + " r").
		Where(sq.Eq{"r.task_id": ids}).
		OrderBy("r.sent_at ASC").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.dbReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).Error(query, err)
		return err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.WithContext(ctx).Error(query, err)
		}
	}()

	for rows.Next() {
		var taskID int64
		var sentAt time.Time
		var sentBy sql.NullInt64

		if err = rows.Scan(&taskID, &sentAt, &sentBy); err != nil {
			r.logger.WithContext(ctx).Error(query, err)
			return err
		}

		origin := entity.SystemOrigin()
		if sentBy.Valid {
			origin = entity.UserOrigin(sentBy.Int64)
		}

		if t, ok := index[taskID]; ok {
			t.Reminders = append(t.Reminders, entity.Reminder{SentAt: sentAt, Origin: origin})
		}
	}

	return rows.Err()
}

func (r *taskRepository) query(ctx context.Context, cmd sqlCommand, query string, args ...interface{}) (bunchOfTasks []entity.Task, err error) {
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
		var task entity.Task
		var updatedAt sql.NullTime
		var formName, formKey sql.NullString
		var formUploadedAt sql.NullTime
		var filledName, filledKey sql.NullString
		var filledUploadedAt sql.NullTime
		var filledUploadedBy sql.NullInt64

		err = rows.Scan(&task.ID, &task.Title, &task.Description, &task.CountyID, &task.Status, &task.Priority,
			&task.Deadline, &task.AssignedBy,
			&formName, &formKey, &formUploadedAt,
			&filledName, &filledKey, &filledUploadedAt, &filledUploadedBy,
			&task.CreatedAt, &updatedAt)
		if err != nil {
			r.logger.WithContext(ctx).Error(query, err)
			return
		}

		if updatedAt.Valid {
			task.UpdatedAt = &updatedAt.Time
		}
		if formKey.Valid {
			task.FormFile = &entity.TaskFile{
				OriginalName: formName.String,
				StorageKey:   formKey.String,
				UploadedAt:   formUploadedAt.Time,
			}
		}
		if filledKey.Valid {
			file := &entity.TaskFile{
				OriginalName: filledName.String,
				StorageKey:   filledKey.String,
				UploadedAt:   filledUploadedAt.Time,
			}
			if filledUploadedBy.Valid {
				file.UploadedBy = &filledUploadedBy.Int64
			}
			task.FilledFormFile = file
		}

		bunchOfTasks = append(bunchOfTasks, task)
	}

	return
}

func (r *taskRepository) exec(ctx context.Context, cmd sqlCommand, command string, args ...interface{}) (result sql.Result, err error) {
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
