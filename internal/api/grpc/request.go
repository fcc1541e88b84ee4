package grpc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/guregu/null.v4"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/utils"
)

const dateLayout = "2006-01-02"

// fields reads typed values from a request Struct and collects every problem
// so a client sees all of them at once.
type fields struct {
	m    map[string]*structpb.Value
	errs []string
}

func newFields(in *structpb.Struct) *fields {
	return &fields{m: in.GetFields()}
}

func (f *fields) fail(format string, args ...any) {
	f.errs = append(f.errs, fmt.Sprintf(format, args...))
}

func (f *fields) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(f.errs, "; "))
}

func (f *fields) has(name string) bool {
	v, ok := f.m[name]
	if !ok || v == nil {
		return false
	}
	_, isNull := v.GetKind().(*structpb.Value_NullValue)
	return !isNull
}

func (f *fields) str(name string) string {
	if !f.has(name) {
		return ""
	}
	s, ok := f.m[name].GetKind().(*structpb.Value_StringValue)
	if !ok {
		f.fail("%s must be a string", name)
		return ""
	}
	return s.StringValue
}

func (f *fields) optStr(name string) *string {
	if !f.has(name) {
		return nil
	}
	s := f.str(name)
	return &s
}

func (f *fields) nullStr(name string) null.String {
	s := strings.TrimSpace(f.str(name))
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

// int32 accepts integral numbers or numeric strings.
func (f *fields) int32(name string) int32 {
	if !f.has(name) {
		return 0
	}
	var n float64
	switch k := f.m[name].GetKind().(type) {
	case *structpb.Value_NumberValue:
		n = k.NumberValue
	case *structpb.Value_StringValue:
		parsed, err := strconv.ParseInt(strings.TrimSpace(k.StringValue), 10, 32)
		if err != nil {
			f.fail("%s must be an integer", name)
			return 0
		}
		return int32(parsed)
	default:
		f.fail("%s must be an integer", name)
		return 0
	}
	if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
		f.fail("%s must be an integer", name)
		return 0
	}
	return int32(n)
}

func (f *fields) optInt32(name string) *int32 {
	if !f.has(name) {
		return nil
	}
	n := f.int32(name)
	return &n
}

func (f *fields) id(name string) int32 {
	if !f.has(name) {
		f.fail("%s is required", name)
		return 0
	}
	before := len(f.errs)
	n := f.int32(name)
	if n <= 0 && len(f.errs) == before {
		f.fail("%s must be positive", name)
	}
	return n
}

// time accepts RFC 3339 instants or plain dates (midnight UTC).
func (f *fields) time(name string) time.Time {
	s := strings.TrimSpace(f.str(name))
	if s == "" {
		f.fail("%s is required", name)
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t
	}
	f.fail("%s must be an RFC 3339 timestamp or a YYYY-MM-DD date", name)
	return time.Time{}
}

// amount reads a decimal money value into cents.
func (f *fields) amount(name string) int64 {
	var raw string
	switch k := f.m[name].GetKind().(type) {
	case *structpb.Value_NumberValue:
		raw = strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_StringValue:
		raw = k.StringValue
	default:
		f.fail("%s is required", name)
		return 0
	}
	cents, err := utils.ParseAmount(raw)
	if err != nil {
		f.fail("%s: %v", name, err)
		return 0
	}
	return cents
}

func (f *fields) optAmount(name string) *int64 {
	if !f.has(name) {
		return nil
	}
	c := f.amount(name)
	return &c
}

func (f *fields) object(name string) *fields {
	if !f.has(name) {
		f.fail("%s is required", name)
		return &fields{}
	}
	s, ok := f.m[name].GetKind().(*structpb.Value_StructValue)
	if !ok {
		f.fail("%s must be an object", name)
		return &fields{}
	}
	return &fields{m: s.StructValue.GetFields()}
}

// merge folds the problems of a nested object into f.
func (f *fields) merge(prefix string, nested *fields) {
	for _, e := range nested.errs {
		f.errs = append(f.errs, prefix+"."+e)
	}
}
