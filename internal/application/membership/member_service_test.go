package membership

import (
	"context"
	"testing"
	"time"

	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/clubhouse/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memberFixture struct {
	members   *MockMemberRepository
	levels    *MockLevelRepository
	locations *MockLocationRepository
	scope     *countingScope
	svc       *MemberService
}

func newMemberFixture() *memberFixture {
	f := &memberFixture{
		members:   new(MockMemberRepository),
		levels:    new(MockLevelRepository),
		locations: new(MockLocationRepository),
		scope:     &countingScope{},
	}
	f.svc = NewMemberService(f.members, f.levels, f.locations, f.scope, zap.NewNop())
	return f
}

func TestMemberService_List(t *testing.T) {
	ctx := context.Background()
	status := membership.MemberStatusActive

	tests := []struct {
		name       string
		query      MemberListQuery
		total      int64
		wantFilter membership.MemberFilter
		wantPage   shared.PageRequest
	}{
		{
			name:       "defaults to the html page size",
			query:      MemberListQuery{Page: 1},
			total:      30,
			wantFilter: membership.MemberFilter{},
			wantPage:   shared.PageRequest{Page: 1, PerPage: HTMLMembersPerPage},
		},
		{
			name:       "keeps a page inside the range",
			query:      MemberListQuery{Page: 3, PerPage: 12},
			total:      30,
			wantFilter: membership.MemberFilter{},
			wantPage:   shared.PageRequest{Page: 3, PerPage: 12},
		},
		{
			name:       "clamps a page past the end",
			query:      MemberListQuery{Page: 9, PerPage: 12},
			total:      30,
			wantFilter: membership.MemberFilter{},
			wantPage:   shared.PageRequest{Page: 1, PerPage: 12},
		},
		{
			name:       "clamps a non-positive page",
			query:      MemberListQuery{Page: -2, PerPage: 25},
			total:      0,
			wantFilter: membership.MemberFilter{},
			wantPage:   shared.PageRequest{Page: 1, PerPage: 25},
		},
		{
			name:  "applies valid filters",
			query: MemberListQuery{Page: 1, PerPage: 12, Query: " ana ", Level: "2", Status: "active"},
			total: 1,
			wantFilter: membership.MemberFilter{
				Query:   "ana",
				LevelID: int64Ptr(2),
				Status:  &status,
			},
			wantPage: shared.PageRequest{Page: 1, PerPage: 12},
		},
		{
			name:       "passes the ordering through",
			query:      MemberListQuery{Page: 1, PerPage: 12, Sort: "surname", Order: "desc"},
			total:      3,
			wantFilter: membership.MemberFilter{},
			wantPage:   shared.PageRequest{Page: 1, PerPage: 12, SortBy: "surname", SortOrder: "desc"},
		},
		{
			name:       "ignores invalid filters",
			query:      MemberListQuery{Page: 1, PerPage: 12, Level: "abc", Location: "x1", Status: "retired", Sex: "robot"},
			total:      4,
			wantFilter: membership.MemberFilter{},
			wantPage:   shared.PageRequest{Page: 1, PerPage: 12},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMemberFixture()
			f.members.On("Count", ctx, tt.wantFilter).Return(tt.total, nil)
			f.members.On("List", ctx, tt.wantFilter, tt.wantPage).
				Return([]membership.Member{{ID: 1, Name: "Ana", Status: membership.MemberStatusActive}}, nil)

			page, err := f.svc.List(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage.Page, page.Page)
			assert.Equal(t, tt.wantPage.PerPage, page.PerPage)
			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, shared.LastPage(tt.total, tt.wantPage.PerPage), page.LastPage)
			require.Len(t, page.Items, 1)
			assert.Equal(t, "Ana", page.Items[0].Name)
			assert.Equal(t, 1, f.scope.calls)
			f.members.AssertExpectations(t)
		})
	}
}

func TestMemberService_Create(t *testing.T) {
	ctx := context.Background()
	f := newMemberFixture()
	f.levels.On("FindByID", ctx, int64(2)).Return(&membership.Level{ID: 2, Name: "Beginner"}, nil)
	f.members.On("Create", ctx, mock.AnythingOfType("*membership.Member")).
		Run(func(args mock.Arguments) { args.Get(1).(*membership.Member).ID = 10 }).
		Return(nil)

	resp, err := f.svc.Create(ctx, MemberInput{
		Name:        " Ana ",
		Surname:     "Kovač",
		DateOfBirth: "1990-04-12",
		Sex:         "female",
		LevelID:     int64Ptr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.ID)
	assert.Equal(t, "Ana", resp.Name)
	assert.Equal(t, "1990-04-12", resp.DateOfBirth)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, "Ana Kovač", resp.FullName())
	f.members.AssertExpectations(t)
	f.levels.AssertExpectations(t)
}

func TestMemberService_CreateValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   MemberInput
		wantMsg string
	}{
		{name: "blank name", input: MemberInput{Name: " "}, wantMsg: "Name is required"},
		{name: "invalid sex", input: MemberInput{Name: "Ana", Sex: "robot"}, wantMsg: "Invalid sex value"},
		{name: "invalid status", input: MemberInput{Name: "Ana", Status: "retired"}, wantMsg: "Invalid status value"},
		{name: "invalid date", input: MemberInput{Name: "Ana", DateOfBirth: "12/04/1990"}, wantMsg: "Invalid date_of_birth value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMemberFixture()
			_, err := f.svc.Create(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			f.members.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestMemberService_CreateUnknownLocation(t *testing.T) {
	ctx := context.Background()
	f := newMemberFixture()
	f.locations.On("FindByID", ctx, int64(5)).Return(nil, membership.ErrLocationNotFound)

	_, err := f.svc.Create(ctx, MemberInput{Name: "Ana", LocationID: int64Ptr(5)})
	require.Error(t, err)
	assert.Equal(t, "Location not found", err.Error())
	f.members.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMemberService_Update(t *testing.T) {
	ctx := context.Background()
	dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	existing := &membership.Member{ID: 3, Name: "Ana", DateOfBirth: &dob, LevelID: int64Ptr(2), Status: membership.MemberStatusActive}

	f := newMemberFixture()
	f.members.On("FindByID", ctx, int64(3)).Return(existing, nil)
	f.members.On("Update", ctx, existing).Return(nil)

	resp, err := f.svc.Update(ctx, 3, MemberInput{Name: "Ana", Surname: "Horvat", Status: "suspended"})
	require.NoError(t, err)
	assert.Equal(t, "Horvat", resp.Surname)
	assert.Equal(t, "suspended", resp.Status)
	assert.Empty(t, resp.DateOfBirth)
	assert.Nil(t, resp.LevelID)
	f.members.AssertExpectations(t)
}

func TestMemberService_UpdateMissingMember(t *testing.T) {
	ctx := context.Background()
	f := newMemberFixture()
	f.members.On("FindByID", ctx, int64(99)).Return(nil, membership.ErrMemberNotFound)

	_, err := f.svc.Update(ctx, 99, MemberInput{Name: "Ana"})
	assert.ErrorIs(t, err, membership.ErrMemberNotFound)
	f.members.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestMemberService_Patch(t *testing.T) {
	ctx := context.Background()

	t.Run("changes only present fields", func(t *testing.T) {
		existing := &membership.Member{ID: 3, Name: "Ana", Surname: "Kovač", Sex: membership.SexFemale,
			Status: membership.MemberStatusActive, LevelID: int64Ptr(2), LocationID: int64Ptr(4)}
		f := newMemberFixture()
		f.members.On("FindByID", ctx, int64(3)).Return(existing, nil)
		f.levels.On("FindByID", ctx, int64(2)).Return(&membership.Level{ID: 2}, nil)
		f.members.On("Update", ctx, existing).Return(nil)

		resp, err := f.svc.Patch(ctx, 3, MemberPatch{
			Status:     strPtr("banned"),
			LocationID: OptionalID{Set: true},
		})
		require.NoError(t, err)
		assert.Equal(t, "Ana", resp.Name)
		assert.Equal(t, "Kovač", resp.Surname)
		assert.Equal(t, "female", resp.Sex)
		assert.Equal(t, "banned", resp.Status)
		assert.Equal(t, int64Ptr(2), resp.LevelID)
		assert.Nil(t, resp.LocationID)
	})

	t.Run("rejects invalid sex", func(t *testing.T) {
		f := newMemberFixture()
		f.members.On("FindByID", ctx, int64(3)).Return(&membership.Member{ID: 3, Name: "Ana"}, nil)

		_, err := f.svc.Patch(ctx, 3, MemberPatch{Sex: strPtr("robot")})
		assert.ErrorIs(t, err, membership.ErrInvalidSex)
		f.members.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("rejects blanking the name", func(t *testing.T) {
		f := newMemberFixture()
		f.members.On("FindByID", ctx, int64(3)).Return(&membership.Member{ID: 3, Name: "Ana"}, nil)

		_, err := f.svc.Patch(ctx, 3, MemberPatch{Name: strPtr("")})
		assert.ErrorIs(t, err, membership.ErrNameRequired)
	})
}

func TestMemberService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newMemberFixture()
	f.members.On("Delete", ctx, int64(3)).Return(nil)
	f.members.On("Delete", ctx, int64(4)).Return(membership.ErrMemberNotFound)

	require.NoError(t, f.svc.Delete(ctx, 3))
	err := f.svc.Delete(ctx, 4)
	assert.ErrorIs(t, err, membership.ErrMemberNotFound)
	assert.Equal(t, "Member not found", err.Error())
}
