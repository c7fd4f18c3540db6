package membership

import (
	"context"
	"strconv"
	"strings"

	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/clubhouse/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MemberService handles the member register of the current tenant
type MemberService struct {
	members   membership.MemberRepository
	levels    membership.LevelRepository
	locations membership.LocationRepository
	scope     TransactionScope
	logger    *zap.Logger
}

// NewMemberService creates a new MemberService
func NewMemberService(
	members membership.MemberRepository,
	levels membership.LevelRepository,
	locations membership.LocationRepository,
	scope TransactionScope,
	logger *zap.Logger,
) *MemberService {
	return &MemberService{
		members:   members,
		levels:    levels,
		locations: locations,
		scope:     scope,
		logger:    logger,
	}
}

// List returns one page of members, ordered by id unless q names another
// sortable column. A page outside
// [1, last page] is replaced by the first page.
func (s *MemberService) List(ctx context.Context, q MemberListQuery) (shared.Paginated[MemberResponse], error) {
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = HTMLMembersPerPage
	}
	filter := buildFilter(q)

	var (
		rows  []membership.Member
		total int64
		page  = q.Page
	)
	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		var err error
		total, err = s.members.Count(ctx, filter)
		if err != nil {
			return err
		}
		if page < 1 || page > shared.LastPage(total, perPage) {
			page = 1
		}
		rows, err = s.members.List(ctx, filter, shared.PageRequest{
			Page:      page,
			PerPage:   perPage,
			SortBy:    q.Sort,
			SortOrder: q.Order,
		})
		return err
	})
	if err != nil {
		return shared.Paginated[MemberResponse]{}, err
	}

	items := make([]MemberResponse, len(rows))
	for i := range rows {
		items[i] = toMemberResponse(&rows[i])
	}
	return shared.NewPaginated(items, total, page, perPage), nil
}

func buildFilter(q MemberListQuery) membership.MemberFilter {
	f := membership.MemberFilter{Query: strings.TrimSpace(q.Query)}
	if id, ok := parseID(q.Level); ok {
		f.LevelID = &id
	}
	if id, ok := parseID(q.Location); ok {
		f.LocationID = &id
	}
	if q.Status != "" {
		if st, err := membership.ParseMemberStatus(q.Status); err == nil {
			f.Status = &st
		}
	}
	if q.Sex != "" {
		if sex, err := membership.ParseSex(q.Sex); err == nil && sex != "" {
			f.Sex = &sex
		}
	}
	return f
}

func parseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Get returns a member or ErrMemberNotFound
func (s *MemberService) Get(ctx context.Context, id int64) (*MemberResponse, error) {
	m, err := s.members.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toMemberResponse(m)
	return &resp, nil
}

// Create registers a new member
func (s *MemberService) Create(ctx context.Context, input MemberInput) (*MemberResponse, error) {
	m := &membership.Member{}
	if err := applyInput(m, input); err != nil {
		return nil, err
	}

	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, m); err != nil {
			return err
		}
		return s.members.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Member created", zap.Int64("member_id", m.ID))
	resp := toMemberResponse(m)
	return &resp, nil
}

// Update replaces every field of a member
func (s *MemberService) Update(ctx context.Context, id int64, input MemberInput) (*MemberResponse, error) {
	var m *membership.Member
	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.members.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := applyInput(m, input); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, m); err != nil {
			return err
		}
		return s.members.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Member updated", zap.Int64("member_id", id))
	resp := toMemberResponse(m)
	return &resp, nil
}

// Patch updates only the fields present in patch
func (s *MemberService) Patch(ctx context.Context, id int64, patch MemberPatch) (*MemberResponse, error) {
	var m *membership.Member
	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.members.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := applyPatch(m, patch); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, m); err != nil {
			return err
		}
		return s.members.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Member patched", zap.Int64("member_id", id))
	resp := toMemberResponse(m)
	return &resp, nil
}

// Delete removes a member and its payment history
func (s *MemberService) Delete(ctx context.Context, id int64) error {
	if err := s.members.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Member deleted", zap.Int64("member_id", id))
	return nil
}

func (s *MemberService) checkReferences(ctx context.Context, m *membership.Member) error {
	if m.LevelID != nil {
		if _, err := s.levels.FindByID(ctx, *m.LevelID); err != nil {
			return err
		}
	}
	if m.LocationID != nil {
		if _, err := s.locations.FindByID(ctx, *m.LocationID); err != nil {
			return err
		}
	}
	return nil
}

func applyInput(m *membership.Member, in MemberInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return membership.ErrNameRequired
	}
	sex, err := membership.ParseSex(in.Sex)
	if err != nil {
		return err
	}
	status, err := membership.ParseMemberStatus(in.Status)
	if err != nil {
		return err
	}
	dob, err := membership.ParseDate(in.DateOfBirth)
	if err != nil {
		return err
	}

	m.Name = name
	m.Surname = strings.TrimSpace(in.Surname)
	m.DateOfBirth = dob
	m.Sex = sex
	m.Status = status
	m.LevelID = in.LevelID
	m.LocationID = in.LocationID
	return nil
}

func applyPatch(m *membership.Member, p MemberPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return membership.ErrNameRequired
		}
		m.Name = name
	}
	if p.Surname != nil {
		m.Surname = strings.TrimSpace(*p.Surname)
	}
	if p.DateOfBirth != nil {
		dob, err := membership.ParseDate(*p.DateOfBirth)
		if err != nil {
			return err
		}
		m.DateOfBirth = dob
	}
	if p.Sex != nil {
		sex, err := membership.ParseSex(*p.Sex)
		if err != nil {
			return err
		}
		m.Sex = sex
	}
	if p.Status != nil {
		status, err := membership.ParseMemberStatus(*p.Status)
		if err != nil {
			return err
		}
		m.Status = status
	}
	if p.LevelID.Set {
		m.LevelID = p.LevelID.Value
	}
	if p.LocationID.Set {
		m.LocationID = p.LocationID.Value
	}
	return nil
}
