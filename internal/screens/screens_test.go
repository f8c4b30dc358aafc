package screens

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdesk/internal/collection"
	"assetdesk/internal/seed"
	"assetdesk/pkg/domain"
)

var fixedNow = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

func testEnv() Env {
	return Env{
		Now:  func() time.Time { return fixedNow },
		Rand: func(n int) int { return 42 % n },
	}
}

func openScreen(t *testing.T, kind domain.EntityKind, opts ...collection.Option) Screen {
	t.Helper()
	opts = append([]collection.Option{
		collection.WithDeleteDelay(0),
		collection.WithClock(collection.ClockFunc(func() time.Time { return fixedNow })),
	}, opts...)
	s, err := testEnv().Open(context.Background(), kind, seed.Embedded(), opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func validationError(t *testing.T, err error) domain.ValidationError {
	t.Helper()
	var verr domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr
}

func TestEveryKindOpensFromFixtures(t *testing.T) {
	for _, kind := range domain.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			s := openScreen(t, kind)
			page := s.Page()
			assert.Equal(t, kind, s.Kind())
			assert.Positive(t, page.Total)
			assert.NotEmpty(t, page.Headers)
			assert.NotEmpty(t, s.Filterable())
			for _, row := range page.Rows {
				assert.Len(t, row, len(page.Headers))
			}
		})
	}
}

func TestOpenRejectsUnknownKind(t *testing.T) {
	_, err := Open(context.Background(), domain.EntityKind("widget"), seed.None())
	assert.ErrorContains(t, err, "unknown resource")
}

func TestPageSizesPerScreen(t *testing.T) {
	assert.Equal(t, 5, openScreen(t, domain.EntityAsset).Page().PageSize)
	assert.Equal(t, 6, openScreen(t, domain.EntityUser).Page().PageSize)
	assert.Equal(t, 4, openScreen(t, domain.EntityReport, collection.WithPageSize(4)).Page().PageSize)
}

func TestIdentityPoliciesPerScreen(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		kind   domain.EntityKind
		record string
		want   func(string) bool
	}{
		{domain.EntityAsset, `{"name":"Dock","category":"Accessory","status":"Available"}`, func(id string) bool { return id == "AST-042" }},
		{domain.EntityBlock, `{"name":"Annex","status":"Active"}`, func(id string) bool { return id == "666666" }},
		{domain.EntityDepartment, `{"name":"Legal","status":"Active"}`, func(id string) bool {
			return strings.HasPrefix(id, "DEPT-") && len(id) == len("DEPT-")+6
		}},
		{domain.EntityAllocation, `{"asset_id":"AST-214","assignee":"Mei Chen","status":"Active"}`, func(id string) bool { return id == "ALC-005" }},
		{domain.EntityTransfer, `{"asset_id":"AST-101","from_department":"IT","to_department":"Sales","status":"Pending"}`, func(id string) bool { return id == "TRF-004" }},
		{domain.EntityDisposal, `{"asset_id":"AST-101","method":"Sold","status":"Pending"}`, func(id string) bool { return id == "DSP-042" }},
		{domain.EntityDecommission, `{"asset_id":"AST-101","reason":"Cracked","status":"Scheduled"}`, func(id string) bool { return id == "DCM-003" }},
		{domain.EntityArchive, `{"asset_id":"AST-101"}`, func(id string) bool { return id == "ARC-2024-042" }},
		{domain.EntityReport, `{"title":"Spend","type":"Audit","status":"Draft"}`, func(id string) bool { return id == "RPT-005" }},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			s := openScreen(t, tc.kind)
			before := s.Page().Total
			id, err := s.Create(ctx, json.RawMessage(tc.record))
			require.NoError(t, err)
			assert.True(t, tc.want(id), "unexpected identity %s", id)
			page := s.Page()
			assert.Equal(t, before+1, page.Total)
			assert.Equal(t, id, page.IDs[0], "new records are prepended")
		})
	}
}

func TestUserScreenRequiresEmailIdentity(t *testing.T) {
	ctx := context.Background()
	s := openScreen(t, domain.EntityUser)

	_, err := s.Create(ctx, json.RawMessage(`{"name":"No Mail","role":"Staff","status":"Active"}`))
	assert.Equal(t, "email", validationError(t, err).Field)

	_, err = s.Create(ctx, json.RawMessage(`{"email":"not-an-address","name":"X","role":"Staff","status":"Active"}`))
	assert.Equal(t, "email", validationError(t, err).Field)

	_, err = s.Create(ctx, json.RawMessage(`{"email":"priya.nair@example.com","name":"Dup","role":"Staff","status":"Active"}`))
	assert.True(t, domain.IsConflict(err))

	id, err := s.Create(ctx, json.RawMessage(`{"email":"new.hire@example.com","name":"New Hire","role":"Staff","status":"Active"}`))
	require.NoError(t, err)
	assert.Equal(t, "new.hire@example.com", id)
}

func TestStructTagsBecomeValidationErrors(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		kind   domain.EntityKind
		record string
		field  string
		reason string
	}{
		{domain.EntityAsset, `{"name":"X","category":"Laptop","status":"Lost"}`, "status", "must be one of Available, Assigned, Maintenance, Retired"},
		{domain.EntityAsset, `{"category":"Laptop","status":"Available"}`, "name", "is required"},
		{domain.EntityAsset, `{"name":"X","category":"Laptop","status":"Available","purchased_on":"15/01/2024"}`, "purchased_on", "must be a date formatted YYYY-MM-DD"},
		{domain.EntityBlock, `{"name":"X","status":"Active","floors":-1}`, "floors", "must be at least 0"},
		{domain.EntityTransfer, `{"asset_id":"AST-101","from_department":"IT","to_department":"IT","status":"Pending"}`, "to_department", "must differ from from_department"},
	}
	for _, tc := range cases {
		s := openScreen(t, tc.kind)
		_, err := s.Create(ctx, json.RawMessage(tc.record))
		verr := validationError(t, err)
		assert.Equal(t, tc.kind, verr.Entity)
		assert.Equal(t, tc.field, verr.Field)
		assert.Equal(t, tc.reason, verr.Reason)
	}
}

func TestCreateRejectsUnknownFields(t *testing.T) {
	s := openScreen(t, domain.EntityReport)
	total := s.Page().Total
	_, err := s.Create(context.Background(), json.RawMessage(`{"title":"X","type":"Audit","status":"Draft","owner":"me"}`))
	verr := validationError(t, err)
	assert.Contains(t, verr.Reason, "unknown field")
	assert.Equal(t, total, s.Page().Total)

	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationError, notes[0].Kind)
	assert.Equal(t, "Create Failed", notes[0].Title)
}

func TestMalformedRecordsRaiseOneErrorNotification(t *testing.T) {
	ctx := context.Background()
	s := openScreen(t, domain.EntityAsset)

	_, err := s.Create(ctx, json.RawMessage(`{"name":`))
	validationError(t, err)
	err = s.Update(ctx, "AST-214", json.RawMessage(`{"status":7}`))
	validationError(t, err)

	notes := s.Notifications()
	require.Len(t, notes, 2)
	assert.Equal(t, "Create Failed", notes[0].Title)
	assert.Equal(t, "Update Failed", notes[1].Title)
	for _, n := range notes {
		assert.Equal(t, domain.NotificationError, n.Kind)
	}
	raw, ok := s.Get("AST-214")
	require.True(t, ok)
	assert.NotContains(t, string(raw), `"status":7`)
}

func TestUpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	s := openScreen(t, domain.EntityAsset)
	require.NoError(t, s.Update(ctx, "AST-214", json.RawMessage(`{"status":"Assigned"}`)))

	raw, ok := s.Get("AST-214")
	require.True(t, ok)
	var got domain.Asset
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Assigned", got.Status)
	assert.Equal(t, "Dell UltraSharp U2723QE", got.Name)
	assert.Equal(t, "AST-214", s.Page().IDs[1], "update keeps position")

	err := s.Update(ctx, "AST-999", json.RawMessage(`{"status":"Assigned"}`))
	assert.True(t, domain.IsNotFound(err))
	_, ok = s.Get("AST-999")
	assert.False(t, ok)
}

func TestSearchFilterAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openScreen(t, domain.EntityAsset)

	require.NoError(t, s.Filter("category", "Laptop"))
	assert.Equal(t, 2, s.Page().Total)
	s.Search("thinkpad")
	assert.Equal(t, []string{"AST-305"}, s.Page().IDs)

	require.NoError(t, s.RequestDelete("AST-305"))
	require.NoError(t, s.ConfirmDelete(ctx, "AST-305"))
	assert.Zero(t, s.Page().Total)

	require.NoError(t, s.Filter("category", "All Categories"))
	s.Search("")
	assert.Equal(t, 6, s.Page().Total)

	assert.Error(t, s.Filter("colour", "Red"))

	require.NoError(t, s.RequestDelete("AST-101"))
	s.CancelDelete("AST-101")
	assert.Error(t, s.ConfirmDelete(ctx, "AST-101"))
}

func TestExportUsesFilteredViewAndResourceName(t *testing.T) {
	var delivered []byte
	var name string
	capture := collection.DeliverFunc(func(_ context.Context, filename string, payload []byte, _ string) (collection.Artifact, error) {
		name, delivered = filename, payload
		return collection.Artifact{Filename: filename}, nil
	})
	s := openScreen(t, domain.EntityDisposal, collection.WithDeliverer(capture))
	require.NoError(t, s.Filter("status", "Pending"))

	art, err := s.Export(context.Background(), collection.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "disposals_2024-01-15.csv", name)
	assert.Equal(t, 2, art.Rows)
	lines := strings.Split(strings.TrimSuffix(string(delivered), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"Disposal ID","Asset ID","Asset Name","Method","Reason","Value","Status"`, lines[0])
	assert.Contains(t, lines[2], `"Surplus, ""end of lease"""`)
	assert.Contains(t, lines[2], ",25.50,")
}

func TestDeskEnforcesReferencesWhenAsked(t *testing.T) {
	ctx := context.Background()
	desk, err := testEnv().OpenDesk(ctx, seed.Embedded(), DeskOptions{
		EnforceReferences: true,
		Controller:        []collection.Option{collection.WithDeleteDelay(0)},
	})
	require.NoError(t, err)
	t.Cleanup(desk.Close)

	allocations, ok := desk.Screen(domain.EntityAllocation)
	require.True(t, ok)
	_, err = allocations.Create(ctx, json.RawMessage(`{"asset_id":"AST-999","assignee":"Mei Chen","status":"Active"}`))
	assert.Equal(t, "asset_id", validationError(t, err).Field)

	assets, _ := desk.Screen(domain.EntityAsset)
	assetID, err := assets.Create(ctx, json.RawMessage(`{"name":"Dock","category":"Accessory","status":"Available"}`))
	require.NoError(t, err)
	_, err = allocations.Create(ctx, json.RawMessage(`{"asset_id":"`+assetID+`","assignee":"Mei Chen","status":"Active"}`))
	require.NoError(t, err)

	departments, _ := desk.Screen(domain.EntityDepartment)
	_, err = departments.Create(ctx, json.RawMessage(`{"name":"Legal","block":"ZZZZZZ","status":"Active"}`))
	assert.Equal(t, "block", validationError(t, err).Field)

	for _, kind := range domain.Kinds() {
		_, ok := desk.Screen(kind)
		assert.True(t, ok, kind)
	}
}

func TestDeskAllowsDanglingReferencesByDefault(t *testing.T) {
	desk, err := Env{}.OpenDesk(context.Background(), seed.Embedded(), DeskOptions{})
	require.NoError(t, err)
	t.Cleanup(desk.Close)
	transfers, _ := desk.Screen(domain.EntityTransfer)
	_, err = transfers.Create(context.Background(), json.RawMessage(`{"asset_id":"AST-999","from_department":"IT","to_department":"Sales","status":"Pending"}`))
	assert.NoError(t, err)
}
