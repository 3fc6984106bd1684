package validation

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/minicrm/internal/apperror"
	"github.com/suteetoe/minicrm/internal/model"
)

type createThing struct {
	LeadID   string   `json:"leadId" validate:"required,uuid"`
	Title    string   `json:"title" validate:"required,max=10"`
	Amount   *float64 `json:"amount" validate:"required,gt=0"`
	Score    *int     `json:"score" validate:"omitempty,gte=0,lte=100"`
	Stage    string   `json:"stage" validate:"omitempty,oneof=PROSPECTING WON"`
	Email    *string  `json:"email" validate:"omitempty,email"`
	Due      *string  `json:"due" validate:"omitempty,rfc3339"`
	Internal string   `json:"-"`
}

type updateThing struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=10"`
	Email *string `json:"email" validate:"omitempty,email" patch:"nullable"`
	Done  *bool   `json:"done"`
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*apperror.Error)
	require.True(t, ok, "expected *apperror.Error, got %T", err)
	require.Equal(t, apperror.KindValidation, appErr.Kind)
	return appErr.Fields
}

func TestDecodeValid(t *testing.T) {
	var in createThing
	fields, err := New().Decode([]byte(`{
		"leadId": "8a4f2c3e-1b2d-4e5f-9a8b-7c6d5e4f3a2b",
		"title": "Renewal",
		"amount": 1200.5,
		"score": 40,
		"stage": "WON",
		"due": "2026-11-01T10:00:00Z",
		"unknown": true
	}`), &in)
	require.NoError(t, err)

	assert.Equal(t, "Renewal", in.Title)
	assert.Equal(t, 1200.5, *in.Amount)
	assert.Equal(t, 40, *in.Score)
	assert.True(t, fields.Has("score"))
	assert.False(t, fields.Has("email"))
	assert.False(t, fields.Has("unknown"))
}

func TestDecodeAggregatesEveryViolation(t *testing.T) {
	var in createThing
	_, err := New().Decode([]byte(`{
		"leadId": "not-a-uuid",
		"title": "",
		"amount": -3,
		"score": 101,
		"stage": "CLOSED",
		"email": "nope",
		"due": "tomorrow"
	}`), &in)

	fields := fieldErrors(t, err)
	assert.Equal(t, map[string]string{
		"leadId": "must be a valid UUID",
		"title":  "is required",
		"amount": "must be greater than 0",
		"score":  "must be less than or equal to 100",
		"stage":  "must be one of: PROSPECTING, WON",
		"email":  "must be a valid email",
		"due":    "must be an RFC 3339 timestamp",
	}, fields)
}

func TestDecodeReportsTypeMismatches(t *testing.T) {
	var in createThing
	_, err := New().Decode([]byte(`{"leadId": 7, "title": "ok", "amount": "100", "score": 1.5}`), &in)

	fields := fieldErrors(t, err)
	assert.Equal(t, "must be a string", fields["leadId"])
	assert.Equal(t, "must be a number", fields["amount"])
	assert.Equal(t, "must be an integer", fields["score"])
}

func TestDecodeMissingRequired(t *testing.T) {
	var in createThing
	_, err := New().Decode([]byte(`{}`), &in)

	fields := fieldErrors(t, err)
	assert.Equal(t, "is required", fields["leadId"])
	assert.Equal(t, "is required", fields["title"])
	assert.Equal(t, "is required", fields["amount"])
	assert.NotContains(t, fields, "score")
}

func TestDecodePartialUpdate(t *testing.T) {
	var in updateThing
	fields, err := New().Decode([]byte(`{"email": null, "done": false}`), &in)
	require.NoError(t, err)

	assert.True(t, fields.Has("email"))
	assert.Nil(t, in.Email)
	assert.True(t, fields.Has("done"))
	assert.False(t, *in.Done)
	assert.False(t, fields.Has("title"))
	assert.Nil(t, in.Title)
}

func TestDecodeRejectsNullOnRequiredField(t *testing.T) {
	var in updateThing
	_, err := New().Decode([]byte(`{"title": null}`), &in)
	assert.Equal(t, "must not be null", fieldErrors(t, err)["title"])

	_, err = New().Decode([]byte(`{"title": ""}`), &in)
	assert.Equal(t, "must be at least 1 characters", fieldErrors(t, err)["title"])
}

func TestDecodeInvalidBody(t *testing.T) {
	for _, body := range []string{"", "not json", "[]", "null", `"str"`} {
		var in updateThing
		_, err := New().Decode([]byte(body), &in)
		assert.Equal(t, apperror.KindInvalidRequest, apperror.KindOf(err), "body %q", body)
	}
}

func TestValidateImplementsEchoValidator(t *testing.T) {
	err := New().Validate(&struct {
		Email string `json:"email" validate:"required,email"`
	}{Email: "x"})
	assert.Equal(t, "must be a valid email", fieldErrors(t, err)["email"])
}

func TestQueryPageDefaultsAndBounds(t *testing.T) {
	q := NewQuery(url.Values{})
	page := q.Page(20)
	require.NoError(t, q.Err())
	assert.Equal(t, Page{Page: 1, PageSize: 20}, page)
	assert.Equal(t, 0, page.Offset())

	q = NewQuery(url.Values{"page": {"3"}, "pageSize": {"50"}})
	page = q.Page(20)
	require.NoError(t, q.Err())
	assert.Equal(t, 100, page.Offset())

	q = NewQuery(url.Values{"page": {"0"}, "pageSize": {"abc"}})
	q.Page(20)
	fields := fieldErrors(t, q.Err())
	assert.Equal(t, "must be at least 1", fields["page"])
	assert.Equal(t, "must be an integer", fields["pageSize"])

	q = NewQuery(url.Values{"pageSize": {"1000"}})
	q.Page(20)
	assert.Equal(t, "must be at most 100", fieldErrors(t, q.Err())["pageSize"])
}

func TestTotalPages(t *testing.T) {
	p := Page{Page: 1, PageSize: 20}
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(1))
	assert.Equal(t, 1, p.TotalPages(20))
	assert.Equal(t, 2, p.TotalPages(21))
}

func TestQueryEnumAndFilters(t *testing.T) {
	q := NewQuery(url.Values{
		"status":    {"QUALIFIED"},
		"completed": {"true"},
		"companyId": {"8a4f2c3e-1b2d-4e5f-9a8b-7c6d5e4f3a2b"},
	})
	status := Enum(q, "status", model.ParseLeadStatus)
	completed := q.Bool("completed")
	companyID := q.UUID("companyId")
	require.NoError(t, q.Err())
	assert.Equal(t, model.StatusQualified, *status)
	assert.True(t, *completed)
	assert.NotEmpty(t, companyID)

	q = NewQuery(url.Values{"status": {"qualified"}, "completed": {"maybe"}, "leadId": {"x"}})
	assert.Nil(t, Enum(q, "status", model.ParseLeadStatus))
	assert.Nil(t, q.Bool("completed"))
	assert.Empty(t, q.UUID("leadId"))
	fields := fieldErrors(t, q.Err())
	assert.Len(t, fields, 3)
}
