package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentRecord is one document of the StudentData collection. Field names
// follow the imported spreadsheet columns, whose cell types vary by row.
type StudentRecord struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`

	AcademicYearCode FlexInt    `bson:"AY YR" json:"AY YR"`
	StudentID        FlexInt    `bson:"Student ID" json:"Student ID"`
	StID             FlexInt    `bson:"St ID" json:"St ID"`
	NewEnrollment    FlexString `bson:"Student New ENR" json:"Student New ENR"`
	OldEnrollment    FlexString `bson:"Student EduLearn ENR" json:"Student EduLearn ENR"`
	ApplicationNo    AppNo      `bson:"EduLearn Application No" json:"EduLearn Application No"`

	StudentType FlexString `bson:"Student Type" json:"Student Type"`
	SchoolName  FlexString `bson:"School Name" json:"School Name"`
	BrandName   FlexString `bson:"Brand Name" json:"Brand Name"`
	BoardName   FlexString `bson:"Board Name" json:"Board Name"`
	CourseName  FlexString `bson:"Course Name" json:"Course Name"`
	StreamName  FlexString `bson:"Stream Name" json:"Stream Name"`
	ShiftName   FlexString `bson:"Shift Name" json:"Shift Name"`
	GradeName   FlexString `bson:"Grade Name" json:"Grade Name"`
	House       FlexString `bson:"House" json:"House"`
	Division    FlexString `bson:"Division" json:"Division"`

	FirstName  FlexString `bson:"Student First Name" json:"Student First Name"`
	MiddleName FlexString `bson:"Student Middle Name" json:"Student Middle Name"`
	LastName   FlexString `bson:"Student Last Name" json:"Student Last Name"`
	DOB        FlexString `bson:"Student DOB" json:"Student DOB"`

	// Flat guardian columns from older imports.
	GuardianID           FlexInt    `bson:"Guardian ID,omitempty" json:"Guardian ID,omitempty"`
	GuardianRelationship FlexString `bson:"Guardians Relationship,omitempty" json:"Guardians Relationship,omitempty"`
	GuardianGlobalNo     FlexString `bson:"Guardians Global No,omitempty" json:"Guardians Global No,omitempty"`
	GuardianFirstName    FlexString `bson:"Guardians first_name,omitempty" json:"Guardians first_name,omitempty"`
	GuardianMobile       FlexString `bson:"Guardians Mobile,omitempty" json:"Guardians Mobile,omitempty"`
	GuardianEmail        FlexString `bson:"Guardians Email,omitempty" json:"Guardians Email,omitempty"`
	OneTimePassword      FlexString `bson:"One Time password,omitempty" json:"One Time password,omitempty"`

	Guardians []Guardian `bson:"Guardians" json:"Guardians"`
}

// Guardian is embedded in StudentRecord; there is no separate collection.
type Guardian struct {
	Relationship FlexString `bson:"Relationship" json:"Relationship"`
	FirstName    FlexString `bson:"First Name" json:"First Name"`
	MiddleName   FlexString `bson:"Middle Name" json:"Middle Name"`
	LastName     FlexString `bson:"Last Name" json:"Last Name"`
	GuardianID   FlexInt    `bson:"Guardian ID" json:"Guardian ID"`
	GlobalNo     FlexString `bson:"Global No" json:"Global No"`
	Mobile       FlexString `bson:"Mobile" json:"Mobile"`
	Email        FlexString `bson:"Email" json:"Email"`
	Password     FlexString `bson:"Password" json:"Password"`
}

// Normalize fills defaults that the documents may omit.
func (s *StudentRecord) Normalize() {
	if s.Guardians == nil {
		s.Guardians = []Guardian{}
	}
}

// AcademicYear renders the AY YR code.
func (s StudentRecord) AcademicYear() string {
	if s.AcademicYearCode == 25 {
		return "2024-25"
	}
	return "2025-26"
}

func (s StudentRecord) FullName() string {
	return joinName(s.FirstName, s.MiddleName, s.LastName)
}

func (g Guardian) FullName() string {
	return joinName(g.FirstName, g.MiddleName, g.LastName)
}

func joinName(parts ...FlexString) string {
	var kept []string
	for _, part := range parts {
		if p := strings.TrimSpace(string(part)); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// AppNo holds the application number, which older imports stored as a
// single-key document {"": "<value>"} instead of a string.
type AppNo struct {
	Value  string
	Nested bool
}

func (a AppNo) String() string { return a.Value }

func (a *AppNo) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*a = AppNo{}
	raw := bson.RawValue{Type: t, Value: data}
	if t != bsontype.EmbeddedDocument {
		s, err := rawToString(raw)
		if err != nil {
			return fmt.Errorf("application number: %w", err)
		}
		a.Value = s
		return nil
	}

	elems, err := raw.Document().Elements()
	if err != nil {
		return fmt.Errorf("application number: %w", err)
	}
	a.Nested = true
	switch len(elems) {
	case 0:
		return nil
	case 1:
		s, err := rawToString(elems[0].Value())
		if err != nil {
			return fmt.Errorf("application number: %w", err)
		}
		a.Value = s
		return nil
	default:
		return fmt.Errorf("application number: expected single-key document, got %d keys", len(elems))
	}
}

func (a AppNo) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if a.Nested {
		return bson.MarshalValue(bson.D{{Key: "", Value: a.Value}})
	}
	return bson.MarshalValue(a.Value)
}

func (a AppNo) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Value)
}

func (a *AppNo) UnmarshalJSON(data []byte) error {
	*a = AppNo{}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj map[string]FlexString
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("application number: %w", err)
		}
		if len(obj) > 1 {
			return fmt.Errorf("application number: expected single-key object, got %d keys", len(obj))
		}
		a.Nested = true
		for _, v := range obj {
			a.Value = string(v)
		}
		return nil
	}
	var s FlexString
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("application number: %w", err)
	}
	a.Value = string(s)
	return nil
}

// FlexString decodes a text column whatever scalar type the import wrote:
// strings, numbers, booleans, dates and object ids all become text.
type FlexString string

func (f FlexString) String() string { return string(f) }

func (f *FlexString) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	s, err := rawToString(bson.RawValue{Type: t, Value: data})
	if err != nil {
		return err
	}
	*f = FlexString(s)
	return nil
}

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*f = FlexString(data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number: %w", err)
		}
		*f = FlexString(n.String())
	}
	return nil
}

// FlexInt decodes a numeric id column. Numeric strings are parsed; blank or
// non-numeric text, null and non-numeric types decode as 0, which callers
// already treat as "no id".
type FlexInt int64

func (n *FlexInt) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Int32:
		*n = FlexInt(raw.Int32())
	case bsontype.Int64:
		*n = FlexInt(raw.Int64())
	case bsontype.Double:
		*n = FlexInt(int64(raw.Double()))
	case bsontype.String:
		*n = parseFlexInt(raw.StringValue())
	case bsontype.Decimal128:
		*n = parseFlexInt(raw.Decimal128().String())
	default:
		*n = 0
	}
	return nil
}

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = parseFlexInt(s)
		return nil
	}
	*n = parseFlexInt(string(data))
	return nil
}

func parseFlexInt(s string) FlexInt {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FlexInt(v)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FlexInt(int64(f))
	}
	return 0
}

func rawToString(raw bson.RawValue) (string, error) {
	switch raw.Type {
	case bsontype.String:
		return raw.StringValue(), nil
	case bsontype.Int32:
		return strconv.FormatInt(int64(raw.Int32()), 10), nil
	case bsontype.Int64:
		return strconv.FormatInt(raw.Int64(), 10), nil
	case bsontype.Double:
		return strconv.FormatFloat(raw.Double(), 'f', -1, 64), nil
	case bsontype.Decimal128:
		return raw.Decimal128().String(), nil
	case bsontype.Boolean:
		return strconv.FormatBool(raw.Boolean()), nil
	case bsontype.DateTime:
		return formatDate(raw.Time()), nil
	case bsontype.ObjectID:
		return raw.ObjectID().Hex(), nil
	case bsontype.Null, bsontype.Undefined:
		return "", nil
	default:
		return "", fmt.Errorf("cannot decode BSON %s as string", raw.Type)
	}
}

// formatDate renders spreadsheet dates, which are stored at midnight UTC, as
// a plain date.
func formatDate(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
