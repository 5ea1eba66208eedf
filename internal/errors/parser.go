package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// IsUniqueViolation reports whether err is a unique-constraint violation from the
// database. Both Postgres (23505) and the SQLite used in tests phrase this as a
// duplicate/unique constraint failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

// ParseError translates database and service errors into a stable code plus a
// message safe to show users. Sensitive driver details stay out of responses.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	// Unique constraint violation (Postgres 23505)
	if IsUniqueViolation(err) {
		return parseDuplicateKeyError(errStr)
	}

	// Foreign key constraint violation (Postgres 23503)
	if strings.Contains(errStr, "foreign key constraint") {
		return parseForeignKeyError(errStr)
	}

	// Not null constraint violation (Postgres 23502)
	if strings.Contains(errStr, "violates not-null constraint") ||
		strings.Contains(errStr, "not null constraint failed") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "Storage is temporarily unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Something went wrong, please try again later",
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	if strings.Contains(errStr, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "This email is already registered",
		}
	}
	if strings.Contains(errStr, "favorites") || strings.Contains(errStr, "likes") {
		// Duplicate join rows are idempotent adds, callers absorb these
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "Already saved",
		}
	}
	if strings.Contains(errStr, "categories") || strings.Contains(errStr, "name") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "An entry with this name already exists",
		}
	}
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This entry already exists",
	}
}

func parseForeignKeyError(errStr string) ErrorInfo {
	if strings.Contains(errStr, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Other records still reference this entry",
		}
	}
	if strings.Contains(errStr, "category_id") {
		return ErrorInfo{
			Code:    CategoryNotFound,
			Message: "The selected category does not exist",
		}
	}
	if strings.Contains(errStr, "restaurant_id") {
		return ErrorInfo{
			Code:    RestaurantNotFound,
			Message: "The restaurant does not exist",
		}
	}
	if strings.Contains(errStr, "user_id") {
		return ErrorInfo{
			Code:    UserNotFound,
			Message: "The user does not exist",
		}
	}
	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "A referenced record could not be found",
	}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "restaurant"):
		return "Restaurant not found"
	case strings.Contains(contextLower, "category"):
		return "Category not found"
	case strings.Contains(contextLower, "comment"):
		return "Comment not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	}
	return "The requested record could not be found"
}
