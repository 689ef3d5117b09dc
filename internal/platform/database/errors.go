package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL错误码，见 https://www.postgresql.org/docs/current/errcodes-appendix.html
const pgUniqueViolation = "23505"

// IsDuplicateKeyError 判断错误是否由唯一键冲突引起。
// 开启 TranslateError 后两种驱动都会返回 gorm.ErrDuplicatedKey，
// 这里额外检查 pgconn 错误码，以覆盖原始SQL路径。
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
