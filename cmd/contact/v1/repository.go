package contact

import (
	"context"
	"database/sql"

	"county-task-api/entity"
	"county-task-api/pkg/exception"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

type ContactRepository interface {
	FindManyByCountyId(ctx context.Context, countyID int64) (bunchOfEntries []entity.ContactEntry, err error)
	InsertEntries(ctx context.Context, countyID int64, entries []entity.ContactEntry) (err error)
	ReplaceForCounty(ctx context.Context, countyID int64, entries []entity.ContactEntry) (err error)
	DeleteManyByCountyId(ctx context.Context, countyID int64) (err error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type contactRepository struct {
	logger      *logrus.Logger
	dbReadOnly  *sql.DB
	dbReadWrite *sql.DB
	tableName   string
}

// NewContactRepository is a constructor
func NewContactRepository(logger *logrus.Logger, dbReadOnly *sql.DB, dbReadWrite *sql.DB, tableName string) ContactRepository {
	return &contactRepository{
		logger:      logger,
		dbReadOnly:  dbReadOnly,
		dbReadWrite: dbReadWrite,
		tableName:   tableName,
	}
}

func (r *contactRepository) FindManyByCountyId(ctx context.Context, countyID int64) (bunchOfEntries []entity.ContactEntry, err error) {
	stmt, args, err := sq.Select("c.id, c.county_id, c.position, c.role, c.name, c.email, c.phone").
		From(r.tableName + " c").
		Where(sq.Eq{"c.county_id": countyID}).
		OrderBy("c.position ASC").
		ToSql()
	if err != nil {
		return nil, wrapError(err)
	}

	bunchOfEntries, err = r.query(ctx, r.dbReadOnly, stmt, args...)
	if err != nil {
		err = wrapError(err)
	}
	return
}

func (r *contactRepository) InsertEntries(ctx context.Context, countyID int64, entries []entity.ContactEntry) (err error) {
	if len(entries) == 0 {
		return nil
	}

	builder := sq.Insert(r.tableName).Columns("county_id", "position", "role", "name", "email", "phone")
	for _, entry := range entries {
		builder = builder.Values(countyID, entry.Position, entry.Role, entry.Name, entry.Email, entry.Phone)
	}

	stmt, args, err := builder.ToSql()
	if err != nil {
		return wrapError(err)
	}

	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

// ReplaceForCounty swaps the county's whole sheet in one transaction so a
// failed write never leaves a half-replaced sheet behind.
func (r *contactRepository) ReplaceForCounty(ctx context.Context, countyID int64, entries []entity.ContactEntry) (err error) {
	tx, err := r.dbReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return wrapError(err)
	}

	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				r.logger.WithContext(ctx).Error(rollbackErr)
			}
		}
	}()

	deleteStmt, deleteArgs, err := sq.Delete(r.tableName).Where(sq.Eq{"county_id": countyID}).ToSql()
	if err != nil {
		return wrapError(err)
	}
	if _, err = r.exec(ctx, tx, deleteStmt, deleteArgs...); err != nil {
		return wrapError(err)
	}

	if len(entries) > 0 {
		builder := sq.Insert(r.tableName).Columns("county_id", "position", "role", "name", "email", "phone")
		for _, entry := range entries {
			builder = builder.Values(countyID, entry.Position, entry.Role, entry.Name, entry.Email, entry.Phone)
		}

		insertStmt, insertArgs, buildErr := builder.ToSql()
		if buildErr != nil {
			err = wrapError(buildErr)
			return
		}
		if _, err = r.exec(ctx, tx, insertStmt, insertArgs...); err != nil {
			return wrapError(err)
		}
	}

	if err = tx.Commit(); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *contactRepository) DeleteManyByCountyId(ctx context.Context, countyID int64) (err error) {
	stmt, args, err := sq.Delete(r.tableName).Where(sq.Eq{"county_id": countyID}).ToSql()
	if err != nil {
		return wrapError(err)
	}

	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *contactRepository) query(ctx context.Context, cmd sqlCommand, query string, args ...interface{}) (bunchOfEntries []entity.ContactEntry, err error) {
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
		var entry entity.ContactEntry

		err = rows.Scan(&entry.ID, &entry.CountyID, &entry.Position, &entry.Role, &entry.Name, &entry.Email, &entry.Phone)
		if err != nil {
			r.logger.WithContext(ctx).Error(query, err)
			return
		}

		bunchOfEntries = append(bunchOfEntries, entry)
	}

	return
}

func (r *contactRepository) exec(ctx context.Context, cmd sqlCommand, command string, args ...interface{}) (result sql.Result, err error) {
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
