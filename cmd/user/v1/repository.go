package user

import (
	"context"
	"database/sql"
	"county-task-api/entity"
	"county-task-api/pkg/exception"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

type UserRepository interface {
	FindMany(ctx context.Context) (bunchOfUsers []entity.User, err error)
	FindManyByRole(ctx context.Context, role string) (bunchOfUsers []entity.User, err error)
	FindManyCountyUsers(ctx context.Context, countyID int64) (bunchOfUsers []entity.User, err error)
	FindOneById(ctx context.Context, id int64) (user entity.User, err error)
	FindOneByEmail(ctx context.Context, email string) (user entity.User, err error)
	ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (exists bool, err error)
	Save(ctx context.Context, user entity.User) (id int64, err error)
	DeleteById(ctx context.Context, id int64) (err error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type userRepository struct {
	logger      *logrus.Logger
	dbReadOnly  *sql.DB
	dbReadWrite *sql.DB
	tableName   string
}

// NewUserRepository is a constructor
func NewUserRepository(logger *logrus.Logger, dbReadOnly *sql.DB, dbReadWrite *sql.DB, tableName string) UserRepository {
	return &userRepository{
		logger:      logger,
		dbReadOnly:  dbReadOnly,
		dbReadWrite: dbReadWrite,
		tableName:   tableName,
	}
}

func (r *userRepository) selectUsers() sq.SelectBuilder {
	return sq.Select("u.id, u.username, u.email, u.password_hash, u.role, u.county_id, u.created_at").
		From(r.tableName + " u")
}

func (r *userRepository) FindMany(ctx context.Context) (bunchOfUsers []entity.User, err error) {
	stmt, args, err := r.selectUsers().OrderBy("u.created_at DESC").ToSql()
	if err != nil {
		return nil, wrapError(err)
	}

	bunchOfUsers, err = r.query(ctx, r.dbReadOnly, stmt, args...)
	if err != nil {
		err = wrapError(err)
	}
	return
}

func (r *userRepository) FindManyByRole(ctx context.Context, role string) (bunchOfUsers []entity.User, err error) {
	stmt, args, err := r.selectUsers().Where(sq.Eq{"u.role": role}).OrderBy("u.created_at DESC").ToSql()
	if err != nil {
		return nil, wrapError(err)
	}

	bunchOfUsers, err = r.query(ctx, r.dbReadOnly, stmt, args...)
	if err != nil {
		err = wrapError(err)
	}
	return
}

func (r *userRepository) FindManyCountyUsers(ctx context.Context, countyID int64) (bunchOfUsers []entity.User, err error) {
	stmt, args, err := r.selectUsers().
		Where(sq.Eq{"u.role": entity.RoleCountyUser, "u.county_id": countyID}).
		ToSql()
	if err != nil {
		return nil, wrapError(err)
	}

	bunchOfUsers, err = r.query(ctx, r.dbReadOnly, stmt, args...)
	if err != nil {
		err = wrapError(err)
	}
	return
}

func (r *userRepository) FindOneById(ctx context.Context, id int64) (user entity.User, err error) {
	stmt, args, err := r.selectUsers().Where(sq.Eq{"u.id": id}).ToSql()
	if err != nil {
		err = wrapError(err)
		return
	}

	bunchOfUsers, err := r.query(ctx, r.dbReadOnly, stmt, args...)
	if err != nil {
		err = wrapError(err)
		return
	}

	if len(bunchOfUsers) < 1 {
		err = exception.ErrNotFound
		return
	}

	user = bunchOfUsers[0]
	return
}

func (r *userRepository) FindOneByEmail(ctx context.Context, email string) (user entity.User, err error) {
	stmt, args, err := r.selectUsers().Where(sq.Eq{"u.email": email}).ToSql()
	if err != nil {
		err = wrapError(err)
		return
	}

	bunchOfUsers, err := r.query(ctx, r.dbReadOnly, stmt, args...)
	if err != nil {
		err = wrapError(err)
		return
	}

	if len(bunchOfUsers) < 1 {
		err = exception.ErrNotFound
		return
	}

	user = bunchOfUsers[0]
	return
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (exists bool, err error) {
	stmt, args, err := sq.Select("COUNT(1)").From(r.tableName).
		Where(sq.Or{sq.Eq{"username": username}, sq.Eq{"email": email}}).
		ToSql()
	if err != nil {
		return false, wrapError(err)
	}

	var count int64
	if err = r.dbReadOnly.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		r.logger.WithContext(ctx).Error(stmt, err)
		return false, wrapError(err)
	}
	return count > 0, nil
}

func (r *userRepository) Save(ctx context.Context, user entity.User) (id int64, err error) {
	stmt, args, err := sq.Insert(r.tableName).
		Columns("username", "email", "password_hash", "role", "county_id", "created_at").
		Values(user.Username, user.Email, user.PasswordHash, user.Role, user.CountyID, user.CreatedAt).
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

func (r *userRepository) DeleteById(ctx context.Context, id int64) (err error) {
	stmt, args, err := sq.Delete(r.tableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return wrapError(err)
	}

	if _, err = r.exec(ctx, r.dbReadWrite, stmt, args...); err != nil {
		err = wrapError(err)
	}
	return
}

func (r *userRepository) query(ctx context.Context, cmd sqlCommand, query string, args ...interface{}) (bunchOfUsers []entity.User, err error) {
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
		var user entity.User
		var countyID sql.NullInt64

		err = rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &countyID, &user.CreatedAt)
		if err != nil {
			r.logger.WithContext(ctx).Error(query, err)
			return
		}

		if countyID.Valid {
			user.CountyID = &countyID.Int64
		}

		bunchOfUsers = append(bunchOfUsers, user)
	}

	return
}

func (r *userRepository) exec(ctx context.Context, cmd sqlCommand, command string, args ...interface{}) (result sql.Result, err error) {
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
