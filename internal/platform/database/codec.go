package database

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError names the record field that could not be decoded. The adapters
// turn it into a SerializationError.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

func fieldErr(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Str decodes a required string field.
func Str(doc bson.M, field string) (string, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return "", fieldErr(field, "missing required string")
	}
	s, ok := v.(string)
	if !ok {
		return "", fieldErr(field, "expected string, got %T", v)
	}
	return s, nil
}

// OptStr decodes an optional string field; absent yields nil.
func OptStr(doc bson.M, field string) (*string, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fieldErr(field, "expected string, got %T", v)
	}
	return &s, nil
}

// StrOr decodes an optional string field with a default for absence.
func StrOr(doc bson.M, field, def string) (string, error) {
	p, err := OptStr(doc, field)
	if err != nil {
		return "", err
	}
	if p == nil {
		return def, nil
	}
	return *p, nil
}

// Double decodes a required numeric field, widening int32 and int64 values
// written by older producers to float64.
func Double(doc bson.M, field string) (float64, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return 0, fieldErr(field, "missing required number")
	}
	f, ok := widen(v)
	if !ok {
		return 0, fieldErr(field, "expected number, got %T", v)
	}
	return f, nil
}

// DoubleOr decodes an optional numeric field with widening.
func DoubleOr(doc bson.M, field string, def float64) (float64, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := widen(v)
	if !ok {
		return 0, fieldErr(field, "expected number, got %T", v)
	}
	return f, nil
}

// IntOr decodes an optional integer field, accepting any numeric width.
func IntOr(doc bson.M, field string, def int) (int, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := widen(v)
	if !ok {
		return 0, fieldErr(field, "expected number, got %T", v)
	}
	return int(f), nil
}

func widen(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Time decodes a required timestamp stored as a BSON date (milliseconds
// since the Unix epoch, UTC).
func Time(doc bson.M, field string) (time.Time, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return time.Time{}, fieldErr(field, "missing required date")
	}
	return asTime(field, v)
}

// TimeOr decodes an optional timestamp with a default for absence.
func TimeOr(doc bson.M, field string, def time.Time) (time.Time, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return def, nil
	}
	return asTime(field, v)
}

// OptTime decodes an optional timestamp; absent yields nil.
func OptTime(doc bson.M, field string) (*time.Time, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return nil, nil
	}
	t, err := asTime(field, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func asTime(field string, v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case primitive.DateTime:
		return d.Time().UTC(), nil
	case time.Time:
		return d.UTC(), nil
	default:
		return time.Time{}, fieldErr(field, "expected date, got %T", v)
	}
}

// StrSlice decodes an optional ordered string sequence.
func StrSlice(doc bson.M, field string) ([]string, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return nil, nil
	}
	arr, ok := v.(primitive.A)
	if !ok {
		return nil, fieldErr(field, "expected array, got %T", v)
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, fieldErr(field, "expected string element, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}

// DocSlice decodes an optional ordered sequence of subdocuments.
func DocSlice(doc bson.M, field string) ([]bson.M, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return nil, nil
	}
	arr, ok := v.(primitive.A)
	if !ok {
		return nil, fieldErr(field, "expected array, got %T", v)
	}
	out := make([]bson.M, 0, len(arr))
	for _, item := range arr {
		switch d := item.(type) {
		case bson.M:
			out = append(out, d)
		case bson.D:
			sub := make(bson.M, len(d))
			for _, e := range d {
				sub[e.Key] = e.Value
			}
			out = append(out, sub)
		default:
			return nil, fieldErr(field, "expected document element, got %T", item)
		}
	}
	return out, nil
}

// Doc decodes an optional subdocument.
func Doc(doc bson.M, field string) (bson.M, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return nil, nil
	}
	switch d := v.(type) {
	case bson.M:
		return d, nil
	case bson.D:
		sub := make(bson.M, len(d))
		for _, e := range d {
			sub[e.Key] = e.Value
		}
		return sub, nil
	default:
		return nil, fieldErr(field, "expected document, got %T", v)
	}
}

// Bool decodes an optional boolean field.
func Bool(doc bson.M, field string, def bool) (bool, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fieldErr(field, "expected bool, got %T", v)
	}
	return b, nil
}

// Bytes decodes an optional binary field.
func Bytes(doc bson.M, field string) ([]byte, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return nil, nil
	}
	switch b := v.(type) {
	case primitive.Binary:
		return b.Data, nil
	case []byte:
		return b, nil
	default:
		return nil, fieldErr(field, "expected binary, got %T", v)
	}
}

// Date encodes t as a BSON date truncated to millisecond precision.
func Date(t time.Time) primitive.DateTime {
	return primitive.NewDateTimeFromTime(t.UTC())
}

// HexID validates an inbound id string against the object-id shape and
// returns the ObjectID for use in filters.
func HexID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return oid, nil
}

// hexObjectID renders the id assigned by InsertOne as lowercase hex.
func hexObjectID(v interface{}) (string, error) {
	oid, ok := v.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("expected ObjectID, got %T", v)
	}
	return oid.Hex(), nil
}

// ID extracts the record's own object id as a hex string, tolerating its
// absence (projections may omit it).
func ID(doc bson.M) string {
	v, ok := doc["_id"]
	if !ok {
		return ""
	}
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
