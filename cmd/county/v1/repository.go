package county

import (
	"context"
	"database/sql"
	"county-task-api/entity"
	"county-task-api/pkg/exception"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

type CountyRepository interface {
	FindMany(ctx context.Context) (bunchOfCounties []entity.County, err error)
	FindManyByIds(ctx context.Context, ids []int64) (bunchOfCounties []entity.County, err error)
	FindOneById(ctx context.Context, id int64) (county entity.County, err error)
	Save(ctx context.Context, county entity.County) (id int64, err error)
	UpdateById(ctx context.Context, id int64, county entity.County) (err error)
	DeleteById(ctx context.Context, id int64) (err error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type countyRepository struct {
	logger      *logrus.Logger
	dbReadOnly  *sql.DB
	dbReadWrite *sql.DB
	tableName   string
}

// NewCountyRepository is a constructor
func NewCountyRepository(logger *logrus.Logger, dbReadOnly *sql.DB, dbReadWrite *sql.DB, tableName string) CountyRepository {
	return &countyRepository{
		logger:      logger,
		dbReadOnly:  dbReadOnly,
		dbReadWrite: dbReadWrite,
		tableName:   tableName,
	}
}

func (r *countyRepository) selectCounties() sq.SelectBuilder {
	return sq.Select("c.id, c.name, c.code, c.description, c.email, c.created_at, c.updated_at").
		From(r.tableName + " c")
}

func (r *countyRepository) FindMany(ctx context.Context) (bunchOfCounties []entity.County, err error) {
	stmt, args, err := r.selectCounties().OrderBy("c.name ASC").ToSql()
	if err != nil {
		return nil, wrapError(err)
	}

	bunchOfCounties, err = r.query(ctx, r.dbReadOnly, stmt, args...)
	if err != nil {
		err = wrapError(err)
	}
	return
}

func (r *countyRepository) FindManyByIds(ctx context.Context, ids []int64) (bunchOfCounties []entity.County, err error) {
	stmt, args, err := r.selectCounties().Where(sq.Eq{"c.id": ids}).ToSql()
	if err != nil {
		return nil, wrapError(err)
	}

	bunchOfCounties, err = r.query(ctx, r.dbReadOnly, stmt, args...)
	if err != nil {
		err = wrapError(err)
	}
	return
}

func (r *countyRepository) FindOneById(ctx context.Context, id int64) (county entity.County, err error) {
	stmt, args, err := r.selectCounties().Where(sq.Eq{"c.id": id}).ToSql()
	if err != nil {
		err = wrapError(err)
		return
	}

	bunchOfCounties, err := r.query(ctx, r.dbReadOnly, stmt, args...)
	if err != nil {
		err = wrapError(err)
		return
	}

	if len(bunchOfCounties) < 1 {
		err = exception.ErrNotFound
		return
	}

	county = bunchOfCounties[0]
	return
}

func (r *countyRepository) Save(ctx context.Context, county entity.County) (id int64, err error) {
	stmt, args, err := sq.Insert(r.tableName).
		Columns("name", "code", "description", "email", "created_at").
		Values(county.Name, county.Code, county.Description, county.Email, county.CreatedAt).
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

func (r *countyRepository) UpdateById(ctx context.Context, id int64, county entity.County) (err error) {
	stmt, args, err := sq.Update(r.tableName).
		Set("name", county.Name).
		Set("code", county.Code).
		Set("description", county.Description).
		Set("email", county.Email).
		Set("updated_at", county.UpdatedAt).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return wrapError(err)
	}

	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *countyRepository) DeleteById(ctx context.Context, id int64) (err error) {
	stmt, args, err := sq.Delete(r.tableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return wrapError(err)
	}

	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *countyRepository) query(ctx context.Context, cmd sqlCommand, query string, args ...interface{}) (bunchOfCounties []entity.County, err error) {
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
		var county entity.County
		var updatedAt sql.NullTime

		err = rows.Scan(&county.ID, &county.Name, &county.Code, &county.Description, &county.Email, &county.CreatedAt, &updatedAt)
		if err != nil {
			r.logger.WithContext(ctx).Error(query, err)
			return
		}

		if updatedAt.Valid {
			county.UpdatedAt = &updatedAt.Time
		}

		bunchOfCounties = append(bunchOfCounties, county)
	}

	return
}

func (r *countyRepository) exec(ctx context.Context, cmd sqlCommand, command string, args ...interface{}) (result sql.Result, err error) {
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
