package database

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/searchforge/searchforge/internal/platform/logger"
	"github.com/searchforge/searchforge/internal/shared/result"
)

// failure maps a driver error for the named operation into the storage
// error taxonomy.
func failure[T any](op string, err error) result.Result[T] {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return result.Failure[T]("document not found", result.KindNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		return result.Failure[T]("deadline exceeded", result.KindUnavailable)
	case mongo.IsDuplicateKeyError(err):
		field := duplicateKeyField(err)
		if field == "" {
			return result.Failuref[T](result.KindConflict, "%s: duplicate key", op)
		}
		return result.Failuref[T](result.KindConflict, "%s: duplicate value for %s", op, field)
	case mongo.IsTimeout(err) || mongo.IsNetworkError(err):
		return result.Failuref[T](result.KindUnavailable, "%s: %v", op, err)
	default:
		return result.Failuref[T](result.KindDatabase, "%s: %v", op, err)
	}
}

// duplicateKeyField extracts the offending field from a unique-index
// violation. Server messages carry "index: <field>_1 dup key".
func duplicateKeyField(err error) string {
	msg := err.Error()
	marker := "index: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexAny(rest, " \t"); j >= 0 {
		rest = rest[:j]
	}
	// Index names are built as <field>_<direction>[_<field>_<direction>...].
	if j := strings.LastIndex(rest, "_"); j > 0 {
		rest = rest[:j]
	}
	return rest
}

// isIndexConflict reports whether err is the server refusing to re-create an
// index that already exists with different options (codes 85 and 86).
func isIndexConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 85 || cmdErr.Code == 86
	}
	msg := err.Error()
	return strings.Contains(msg, "IndexOptionsConflict") || strings.Contains(msg, "IndexKeySpecsConflict")
}

// SerializationFailure logs a codec error for the record identified by key
// and classifies it. Decode failures indicate schema drift or a programming
// bug and are never retried.
func SerializationFailure[T any](log logger.Logger, key string, err error) result.Result[T] {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		log.Error("record failed to decode", "key", key, "field", fieldErr.Field, "reason", fieldErr.Reason)
	} else {
		log.Error("record failed to decode", "key", key, "error", err.Error())
	}
	return result.Failure[T](err.Error(), result.KindSerialization)
}
