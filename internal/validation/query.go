package validation

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/suteetoe/minicrm/internal/apperror"
)

// MaxPageSize bounds the pageSize query parameter.
const MaxPageSize = 100

// Page is a decoded page request.
type Page struct {
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns ceil(total/pageSize).
func (p Page) TotalPages(total int64) int {
	size := int64(p.PageSize)
	return int((total + size - 1) / size)
}

// Query decodes query string parameters into typed values, collecting every
// rejected parameter instead of stopping at the first one. Unrecognized enum
// values are errors, never silently ignored.
type Query struct {
	values url.Values
	errs   map[string]string
}

// NewQuery wraps the request's query values.
func NewQuery(values url.Values) *Query {
	return &Query{values: values, errs: map[string]string{}}
}

// Page decodes page (default 1) and pageSize (default defaultSize).
func (q *Query) Page(defaultSize int) Page {
	return Page{
		Page:     q.intParam("page", 1, 1, 0),
		PageSize: q.intParam("pageSize", defaultSize, 1, MaxPageSize),
	}
}

// String returns the trimmed parameter, or "" when absent.
func (q *Query) String(name string) string {
	return strings.TrimSpace(q.values.Get(name))
}

// UUID returns the parameter when it is a well-formed UUID, "" when absent.
func (q *Query) UUID(name string) string {
	s := q.String(name)
	if s == "" {
		return ""
	}
	if _, err := uuid.Parse(s); err != nil {
		q.errs[name] = "must be a valid UUID"
		return ""
	}
	return s
}

// Bool returns nil when absent, otherwise the parsed true/false value.
func (q *Query) Bool(name string) *bool {
	s := q.String(name)
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		q.errs[name] = "must be true or false"
		return nil
	}
	return &b
}

// Enum decodes an enumeration parameter with parse, returning nil when absent.
func Enum[T ~string](q *Query, name string, parse func(string) (T, error)) *T {
	s := q.String(name)
	if s == "" {
		return nil
	}
	v, err := parse(s)
	if err != nil {
		q.errs[name] = "is not a recognized value"
		return nil
	}
	return &v
}

// Err returns the aggregated VALIDATION_ERROR, or nil.
func (q *Query) Err() error {
	if len(q.errs) == 0 {
		return nil
	}
	return apperror.Validation(q.errs)
}

// max <= 0 means unbounded.
func (q *Query) intParam(name string, def, min, max int) int {
	s := q.String(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	switch {
	case err != nil:
		q.errs[name] = "must be an integer"
	case n < min:
		q.errs[name] = "must be at least " + strconv.Itoa(min)
	case max > 0 && n > max:
		q.errs[name] = "must be at most " + strconv.Itoa(max)
	default:
		return n
	}
	return def
}
