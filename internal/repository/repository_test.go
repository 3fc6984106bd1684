package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/minicrm/internal/apperror"
	"github.com/suteetoe/minicrm/internal/model"
	"github.com/suteetoe/minicrm/internal/testutil"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewStore(db), db
}

func strPtr(s string) *string { return &s }

func TestStorePing(t *testing.T) {
	store, _ := setup(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestUserRepository(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	created := testutil.CreateUser(t, db, "admin@example.com", model.RoleAdmin)

	user, err := store.Users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, model.RoleAdmin, user.Role)

	user, err = store.Users.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)

	_, err = store.Users.FindByEmail(ctx, "nobody@example.com")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	err = store.Users.Create(ctx, &model.User{Email: "admin@example.com", PasswordHash: "x", Role: model.RoleMember})
	assert.Equal(t, apperror.KindDuplicateEntry, apperror.KindOf(err))
}

func TestCompanyListCountsLeads(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, db, "Acme")
	globex := testutil.CreateCompany(t, db, "Globex")
	testutil.CreateLead(t, db, acme.ID, "Ada")
	testutil.CreateLead(t, db, acme.ID, "Grace")

	items, total, err := store.Companies.List(ctx, Page{Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)

	counts := map[string]int64{}
	for _, c := range items {
		require.NotNil(t, c.Count)
		counts[c.ID] = c.Count.Leads
	}
	assert.EqualValues(t, 2, counts[acme.ID])
	assert.EqualValues(t, 0, counts[globex.ID])

	got, err := store.Companies.Get(ctx, acme.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Count.Leads)
}

func TestCompanyListPaging(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		testutil.CreateCompany(t, db, fmt.Sprintf("Company %d", i))
	}

	seen := map[string]bool{}
	for offset := 0; offset < 5; offset += 2 {
		items, total, err := store.Companies.List(ctx, Page{Limit: 2, Offset: offset})
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
		assert.LessOrEqual(t, len(items), 2)
		for _, c := range items {
			assert.False(t, seen[c.ID], "company %s returned twice", c.ID)
			seen[c.ID] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestCompanyUpdate(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	company := &model.Company{Name: "Acme", Domain: strPtr("acme.test")}
	require.NoError(t, store.Companies.Create(ctx, company))

	updated, err := store.Companies.Update(ctx, company.ID, Updates{"domain": nil, "notes": "key account"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.Name)
	assert.Nil(t, updated.Domain)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "key account", *updated.Notes)

	unchanged, err := store.Companies.Update(ctx, company.ID, Updates{})
	require.NoError(t, err)
	assert.Equal(t, "Acme", unchanged.Name)

	_, err = store.Companies.Update(ctx, "00000000-0000-0000-0000-000000000000", Updates{"name": "x"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	var n int64
	require.NoError(t, db.Model(&model.Company{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCompanyDeleteRejectedWhileLeadsExist(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "Acme")
	lead := testutil.CreateLead(t, db, company.ID, "Ada")

	err := store.Companies.Delete(ctx, company.ID)
	assert.Equal(t, apperror.KindInvalidReference, apperror.KindOf(err))

	require.NoError(t, store.Leads.Delete(ctx, lead.ID))
	require.NoError(t, store.Companies.Delete(ctx, company.ID))

	err = store.Companies.Delete(ctx, company.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestLeadCreateRequiresCompany(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()

	err := store.Leads.Create(ctx, &model.Lead{
		CompanyID:   "00000000-0000-0000-0000-000000000000",
		ContactName: "Ada",
		Source:      model.SourceWeb,
		Status:      model.StatusNew,
	})
	assert.Equal(t, apperror.KindInvalidReference, apperror.KindOf(err))

	var n int64
	require.NoError(t, db.Model(&model.Lead{}).Count(&n).Error)
	assert.Zero(t, n)

	company := testutil.CreateCompany(t, db, "Acme")
	lead := &model.Lead{CompanyID: company.ID, ContactName: "Ada", Source: model.SourceEvent, Status: model.StatusNew}
	require.NoError(t, store.Leads.Create(ctx, lead))
	assert.NotEmpty(t, lead.ID)
	require.NotNil(t, lead.Company)
	assert.Equal(t, "Acme", lead.Company.Name)
}

func TestLeadListFilters(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	acme := testutil.CreateCompany(t, db, "Acme")
	globex := testutil.CreateCompany(t, db, "Globex")

	ada := testutil.CreateLead(t, db, acme.ID, "Ada Lovelace")
	require.NoError(t, db.Model(ada).Updates(map[string]interface{}{"status": model.StatusQualified, "email": "ada@engine.test"}).Error)
	grace := testutil.CreateLead(t, db, globex.ID, "Grace Hopper")
	require.NoError(t, db.Model(grace).Update("phone", "+1 555 0100").Error)
	testutil.CreateLead(t, db, globex.ID, "Alan 100% Turing")
	testutil.CreateDeal(t, db, ada.ID, "Engine", model.StageProspecting)
	testutil.CreateActivity(t, db, ada.ID, model.ActivityNote, "met")
	testutil.CreateActivity(t, db, ada.ID, model.ActivityCall, "called")

	qualified := model.StatusQualified
	tests := []struct {
		name   string
		filter LeadFilter
		want   []string
	}{
		{"no filter", LeadFilter{}, []string{"Ada Lovelace", "Grace Hopper", "Alan 100% Turing"}},
		{"name is case insensitive", LeadFilter{Q: "LOVELACE"}, []string{"Ada Lovelace"}},
		{"email", LeadFilter{Q: "engine.test"}, []string{"Ada Lovelace"}},
		{"phone", LeadFilter{Q: "555"}, []string{"Grace Hopper"}},
		{"wildcards are literal", LeadFilter{Q: "0%"}, []string{"Alan 100% Turing"}},
		{"status", LeadFilter{Status: &qualified}, []string{"Ada Lovelace"}},
		{"company", LeadFilter{CompanyID: globex.ID}, []string{"Grace Hopper", "Alan 100% Turing"}},
		{"combined", LeadFilter{CompanyID: globex.ID, Status: &qualified}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := store.Leads.List(ctx, tt.filter, Page{Limit: 20})
			require.NoError(t, err)
			assert.EqualValues(t, len(tt.want), total)

			var names []string
			for _, l := range items {
				names = append(names, l.ContactName)
				require.NotNil(t, l.Company)
				require.NotNil(t, l.Count)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}

	items, _, err := store.Leads.List(ctx, LeadFilter{Q: "ada"}, Page{Limit: 20})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 1, items[0].Count.Deals)
	assert.EqualValues(t, 2, items[0].Count.Activities)
}

func TestLeadGetDetail(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "Acme")
	lead := testutil.CreateLead(t, db, company.ID, "Ada")

	detail, err := store.Leads.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.NotNil(t, detail.Deals)
	assert.Empty(t, detail.Deals)
	assert.NotNil(t, detail.Activities)
	assert.Equal(t, "Acme", detail.Company.Name)

	testutil.CreateDeal(t, db, lead.ID, "First", model.StageWon)
	testutil.CreateActivity(t, db, lead.ID, model.ActivityTask, "follow up")

	detail, err = store.Leads.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Deals, 1)
	assert.Len(t, detail.Activities, 1)

	_, err = store.Leads.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestLeadUpdate(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	acme := testutil.CreateCompany(t, db, "Acme")
	globex := testutil.CreateCompany(t, db, "Globex")
	lead := testutil.CreateLead(t, db, acme.ID, "Ada")
	require.NoError(t, db.Model(lead).Update("email", "ada@acme.test").Error)

	updated, err := store.Leads.Update(ctx, lead.ID, Updates{"email": nil, "score": 75, "company_id": globex.ID})
	require.NoError(t, err)
	assert.Nil(t, updated.Email)
	assert.Equal(t, 75, updated.Score)
	assert.Equal(t, "Globex", updated.Company.Name)
	assert.Equal(t, "Ada", updated.ContactName)

	_, err = store.Leads.Update(ctx, lead.ID, Updates{"company_id": "00000000-0000-0000-0000-000000000000"})
	assert.Equal(t, apperror.KindInvalidReference, apperror.KindOf(err))
}

func TestLeadDeleteRejectedWhileDependentsExist(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "Acme")
	lead := testutil.CreateLead(t, db, company.ID, "Ada")
	deal := testutil.CreateDeal(t, db, lead.ID, "Engine", model.StageProposal)
	activity := testutil.CreateActivity(t, db, lead.ID, model.ActivityNote, "hello")

	assert.Equal(t, apperror.KindInvalidReference, apperror.KindOf(store.Leads.Delete(ctx, lead.ID)))
	require.NoError(t, store.Deals.Delete(ctx, deal.ID))
	assert.Equal(t, apperror.KindInvalidReference, apperror.KindOf(store.Leads.Delete(ctx, lead.ID)))
	require.NoError(t, store.Activities.Delete(ctx, activity.ID))
	require.NoError(t, store.Leads.Delete(ctx, lead.ID))
}

func TestDealUpdateStage(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "Acme")
	lead := testutil.CreateLead(t, db, company.ID, "Ada")
	deal := testutil.CreateDeal(t, db, lead.ID, "Engine", model.StageProspecting)

	updated, tr, err := store.Deals.Update(ctx, deal.ID, Updates{"stage": model.StageWon})
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, model.StageProspecting, tr.From)
	assert.Equal(t, model.StageWon, tr.To)
	assert.Equal(t, model.StageWon, updated.Stage)
	require.NotNil(t, updated.Lead)
	assert.Equal(t, "Acme", updated.Lead.Company.Name)

	again, tr, err := store.Deals.Update(ctx, deal.ID, Updates{"stage": model.StageWon})
	require.NoError(t, err)
	assert.True(t, tr.NoOp())
	assert.Equal(t, model.StageWon, again.Stage)
	assert.Equal(t, updated.Title, again.Title)
	assert.Equal(t, updated.Amount, again.Amount)

	renamed, tr, err := store.Deals.Update(ctx, deal.ID, Updates{"title": "Engine v2"})
	require.NoError(t, err)
	assert.Nil(t, tr)
	assert.Equal(t, model.StageWon, renamed.Stage)

	_, _, err = store.Deals.Update(ctx, deal.ID, Updates{"lead_id": "00000000-0000-0000-0000-000000000000"})
	assert.Equal(t, apperror.KindInvalidReference, apperror.KindOf(err))

	_, _, err = store.Deals.Update(ctx, "00000000-0000-0000-0000-000000000000", Updates{"stage": model.StageLost})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDealCreateAndList(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "Acme")
	lead := testutil.CreateLead(t, db, company.ID, "Ada")
	other := testutil.CreateLead(t, db, company.ID, "Grace")

	err := store.Deals.Create(ctx, &model.Deal{LeadID: "00000000-0000-0000-0000-000000000000", Title: "x", Amount: 1, Stage: model.StageProspecting})
	assert.Equal(t, apperror.KindInvalidReference, apperror.KindOf(err))

	deal := &model.Deal{LeadID: lead.ID, Title: "Engine", Amount: 1234.5, Stage: model.StageProposal}
	require.NoError(t, store.Deals.Create(ctx, deal))
	assert.Equal(t, 1234.5, deal.Amount)
	require.NotNil(t, deal.Lead)
	testutil.CreateDeal(t, db, other.ID, "Compiler", model.StageWon)

	won := model.StageWon
	items, total, err := store.Deals.List(ctx, DealFilter{Stage: &won}, Page{Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Compiler", items[0].Title)

	items, total, err = store.Deals.List(ctx, DealFilter{LeadID: lead.ID}, Page{Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, deal.ID, items[0].ID)

	got, err := store.Deals.Get(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Lead.ContactName)
}

func TestActivityListOrderAndFilters(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "Acme")
	lead := testutil.CreateLead(t, db, company.ID, "Ada")

	soon := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	later := soon.Add(48 * time.Hour)
	done := &model.Activity{LeadID: lead.ID, Type: model.ActivityTask, Content: "done", DueDate: &soon, Completed: true}
	require.NoError(t, store.Activities.Create(ctx, done))
	laterTask := &model.Activity{LeadID: lead.ID, Type: model.ActivityTask, Content: "later", DueDate: &later}
	require.NoError(t, store.Activities.Create(ctx, laterTask))
	soonCall := &model.Activity{LeadID: lead.ID, Type: model.ActivityCall, Content: "soon", DueDate: &soon}
	require.NoError(t, store.Activities.Create(ctx, soonCall))
	undated := &model.Activity{LeadID: lead.ID, Type: model.ActivityNote, Content: "undated"}
	require.NoError(t, store.Activities.Create(ctx, undated))

	items, total, err := store.Activities.List(ctx, ActivityFilter{}, Page{Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	var order []string
	for _, a := range items {
		order = append(order, a.Content)
	}
	assert.Equal(t, []string{"soon", "later", "undated", "done"}, order)

	open := false
	task := model.ActivityTask
	items, total, err = store.Activities.List(ctx, ActivityFilter{LeadID: lead.ID, Completed: &open, Type: &task}, Page{Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "later", items[0].Content)
}

func TestActivityUpdateAndReference(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "Acme")
	lead := testutil.CreateLead(t, db, company.ID, "Ada")

	err := store.Activities.Create(ctx, &model.Activity{LeadID: "00000000-0000-0000-0000-000000000000", Type: model.ActivityNote, Content: "x"})
	assert.Equal(t, apperror.KindInvalidReference, apperror.KindOf(err))

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	activity := &model.Activity{LeadID: lead.ID, Type: model.ActivityTask, Content: "call back", DueDate: &due}
	require.NoError(t, store.Activities.Create(ctx, activity))

	updated, err := store.Activities.Update(ctx, activity.ID, Updates{"completed": true, "due_date": nil})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "call back", updated.Content)

	got, err := store.Activities.Get(ctx, activity.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
}
