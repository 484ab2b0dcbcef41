package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"care-tasks.com/care-tasks/internal/constants"
	apperrors "care-tasks.com/care-tasks/internal/errors"
	"care-tasks.com/care-tasks/internal/identity"
	model "care-tasks.com/care-tasks/internal/models"
	"care-tasks.com/care-tasks/internal/names"
	repository "care-tasks.com/care-tasks/internal/repositories"
	"care-tasks.com/care-tasks/internal/schema"
)

// DefaultRoster is seeded into an account the first time its team is listed for a role.
var DefaultRoster = map[constants.Role][]string{
	constants.RoleGeneralServices: {"Maria Souza", "João Lima", "Patrícia Duarte"},
	constants.RoleNursing:         {"Enf. Carla Mendes", "Téc. Paulo Nogueira", "Enf. Júlia Freitas"},
	constants.RoleSupervisor:      {"Vitória Barboza Silveira"},
}

type RosterService struct {
	guard    *schema.Guard
	accounts *repository.AccountRepository
	members  *repository.MemberRepository
	logger   *zap.Logger

	seeded sync.Map
}

func NewRosterService(
	guard *schema.Guard,
	accounts *repository.AccountRepository,
	members *repository.MemberRepository,
	logger *zap.Logger,
) *RosterService {
	return &RosterService{
		guard:    guard,
		accounts: accounts,
		members:  members,
		logger:   logger,
	}
}

// EnsureAccount records the caller's account, refreshing name and role.
func (s *RosterService) EnsureAccount(ctx context.Context, caller identity.Caller) (*model.Account, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(caller.ID) == "" {
		return nil, apperrors.Validation("account id is required")
	}

	account := &model.Account{
		ID:        caller.ID,
		Name:      caller.Name,
		Role:      caller.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.accounts.Upsert(ctx, account); err != nil {
		return nil, err
	}
	return s.accounts.FindByID(ctx, caller.ID)
}

func (s *RosterService) ResolveMember(ctx context.Context, id string) (*model.Member, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperrors.ErrMemberNotFound
	}
	return s.members.FindByID(ctx, id)
}

func (s *RosterService) BelongsToAccount(ctx context.Context, memberID, accountID string) (bool, error) {
	if _, err := s.ResolveMember(ctx, memberID); err != nil {
		return false, err
	}
	return s.members.ExistsInAccount(ctx, memberID, accountID)
}

// ListByAccountAndRole lists the active team of an account as seen by a caller with
// role. The default roster of roleFilter (or of role when no filter is given) is
// seeded first when the account is short of it.
// A non-empty roleFilter keeps only members of that role. Supervisors see
// supervisor-role members first; everyone else gets plain alphabetical order.
func (s *RosterService) ListByAccountAndRole(
	ctx context.Context,
	accountID string,
	role constants.Role,
	roleFilter constants.Role,
) ([]model.Member, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, err
	}

	seedRole := role
	if roleFilter != "" {
		seedRole = roleFilter
	}
	if seedRole.Assignable() {
		if err := s.seedDefaults(ctx, accountID, seedRole); err != nil {
			return nil, err
		}
	}

	members, err := s.members.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if roleFilter != "" {
		filtered := members[:0]
		for _, m := range members {
			if m.Role == roleFilter {
				filtered = append(filtered, m)
			}
		}
		members = filtered
	}

	sortMembers(members, role == constants.RoleSupervisor)
	return members, nil
}

// ListByRole lists active members of role across every account. Callers are expected
// to restrict it to privileged identities.
func (s *RosterService) ListByRole(ctx context.Context, role constants.Role) ([]model.Member, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}
	if !role.Assignable() {
		return nil, apperrors.ErrInvalidRole
	}

	members, err := s.members.ListActiveByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	sortMembers(members, false)
	return members, nil
}

// ListActive returns every active member of every account.
func (s *RosterService) ListActive(ctx context.Context) ([]model.Member, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}
	return s.members.ListActive(ctx)
}

// ActiveMembersWithRole resolves ids and keeps the active members holding role.
func (s *RosterService) ActiveMembersWithRole(ctx context.Context, ids []string, role constants.Role) ([]model.Member, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}

	found, err := s.members.FindByIDs(ctx, uniqueStrings(ids))
	if err != nil {
		return nil, err
	}

	var members []model.Member
	for _, m := range found {
		if m.Active && m.Role == role {
			members = append(members, m)
		}
	}
	return members, nil
}

// EnrollMember adds a member to an account. Names are compared by their folded key:
// enrolling a known name returns the stored member, reactivated, and fails when the
// stored role differs.
func (s *RosterService) EnrollMember(ctx context.Context, accountID, name, rawRole string) (*model.Member, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}

	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, apperrors.Validation("member name is required")
	}
	role, ok := constants.ParseRole(rawRole)
	if !ok || !role.Assignable() {
		return nil, apperrors.ErrInvalidRole
	}
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, err
	}

	existing, err := s.members.ListAllByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	idx := names.NewIndex[model.Member]()
	for _, m := range existing {
		idx.Add(m.Name, m)
	}
	if matches := idx.Lookup(name); len(matches) > 0 {
		return s.reuseMember(ctx, &matches[0], role)
	}

	member := model.Member{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Name:      name,
		Role:      role,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	inserted, err := s.members.InsertMissing(ctx, []model.Member{member})
	if err != nil {
		return nil, err
	}
	if inserted == 1 {
		s.logger.Info("member enrolled",
			zap.String("account_id", accountID),
			zap.String("member_id", member.ID),
			zap.String("role", string(role)),
		)
		return &member, nil
	}

	// Lost an insert race on the exact name.
	stored, err := s.members.FindByAccountAndName(ctx, accountID, name)
	if err != nil {
		return nil, err
	}
	return s.reuseMember(ctx, stored, role)
}

// reuseMember returns an already enrolled member, reactivated. A different role is
// rejected rather than silently kept.
func (s *RosterService) reuseMember(ctx context.Context, member *model.Member, role constants.Role) (*model.Member, error) {
	if member.Role != role {
		return nil, apperrors.ErrMemberRoleConflict
	}
	if !member.Active {
		if err := s.members.SetActive(ctx, member.ID, true); err != nil {
			return nil, err
		}
		member.Active = true
	}
	return member, nil
}

func (s *RosterService) DeactivateMember(ctx context.Context, id string) error {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return err
	}
	return s.members.SetActive(ctx, id, false)
}

func (s *RosterService) seedDefaults(ctx context.Context, accountID string, role constants.Role) error {
	key := accountID + "|" + string(role)
	if _, done := s.seeded.Load(key); done {
		return nil
	}

	defaults := DefaultRoster[role]
	count, err := s.members.CountByAccountAndRole(ctx, accountID, role)
	if err != nil {
		return err
	}

	if count < int64(len(defaults)) {
		existing, err := s.members.ListAllNames(ctx, accountID)
		if err != nil {
			return err
		}
		idx := names.NewIndex[string]()
		for _, n := range existing {
			idx.Add(n, n)
		}

		now := time.Now().UTC()
		var missing []model.Member
		for _, n := range defaults {
			if idx.Has(n) {
				continue
			}
			missing = append(missing, model.Member{
				ID:        uuid.NewString(),
				AccountID: accountID,
				Name:      n,
				Role:      role,
				Active:    true,
				CreatedAt: now,
			})
		}

		inserted, err := s.members.InsertMissing(ctx, missing)
		if err != nil {
			return err
		}
		if inserted > 0 {
			s.logger.Info("default roster seeded",
				zap.String("account_id", accountID),
				zap.String("role", string(role)),
				zap.Int64("inserted", inserted),
			)
		}
	}

	s.seeded.Store(key, struct{}{})
	return nil
}

func sortMembers(members []model.Member, supervisorsFirst bool) {
	sort.SliceStable(members, func(i, j int) bool {
		if supervisorsFirst {
			si := members[i].Role == constants.RoleSupervisor
			sj := members[j].Role == constants.RoleSupervisor
			if si != sj {
				return si
			}
		}
		return names.Key(members[i].Name) < names.Key(members[j].Name)
	})
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
