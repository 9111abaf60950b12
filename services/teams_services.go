package services

import (
	"errors"
	"fmt"

	"huntapi/models"
	"huntapi/utils"

	"gorm.io/gorm"
)

// tokenAttempts bounds the regenerate-on-collision loop during team creation.
const tokenAttempts = 5

// Membership is the result of resolving an external identity to a live team.
type Membership struct {
	Team      models.Team
	Solver    models.Solver
	IsCaptain bool
}

// TeamService is the team directory: lookups and mutations for team and
// solver membership. All mutations run inside a transaction; membership
// uniqueness is backed by the unique index on solvers.external_id rather
// than the point-in-time pre-checks alone.
type TeamService struct {
	db    *gorm.DB
	locks *TeamLocks
}

func NewTeamService(db *gorm.DB, locks *TeamLocks) *TeamService {
	return &TeamService{db: db, locks: locks}
}

// LookupMembership resolves an identity to its solver and team, restricted to
// non-deleted teams. Returns (nil, nil) for unregistered identities.
func (s *TeamService) LookupMembership(identity string) (*Membership, error) {
	return lookupMembership(s.db, identity)
}

func lookupMembership(db *gorm.DB, identity string) (*Membership, error) {
	var solver models.Solver
	if err := db.Where("external_id = ?", identity).First(&solver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var team models.Team
	if err := db.Where("id = ? AND is_deleted = ?", solver.TeamID, false).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Solver row pointing at a deleted team; treat as unregistered.
			return nil, nil
		}
		return nil, err
	}

	return &Membership{Team: team, Solver: solver, IsCaptain: solver.IsCaptain}, nil
}

// CreateTeam registers a new team with the caller as captain and returns the
// team id and join token. The team insert and the captain insert are one
// atomic unit; a team never exists without its captain. Tokens are verified
// against live teams and regenerated on collision.
func (s *TeamService) CreateTeam(identity, displayName, teamName string) (*models.Team, error) {
	var team models.Team

	err := s.db.Transaction(func(tx *gorm.DB) error {
		member, err := lookupMembership(tx, identity)
		if err != nil {
			return err
		}
		if member != nil {
			return ErrAlreadyMember
		}

		token, err := uniqueToken(tx)
		if err != nil {
			return err
		}

		team = models.Team{Name: teamName, Token: token}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}

		captain := models.Solver{
			ExternalID:  identity,
			DisplayName: displayName,
			TeamID:      team.ID,
			IsCaptain:   true,
		}
		if err := tx.Create(&captain).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMember
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &team, nil
}

func uniqueToken(tx *gorm.DB) (string, error) {
	for i := 0; i < tokenAttempts; i++ {
		token, err := utils.GenerateToken()
		if err != nil {
			return "", err
		}

		var count int64
		if err := tx.Model(&models.Team{}).
			Where("token = ? AND is_deleted = ?", token, false).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return token, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique team token after %d attempts", tokenAttempts)
}

// JoinTeam adds the caller to the live team matching the token and returns
// the team name.
func (s *TeamService) JoinTeam(identity, displayName, token string) (string, error) {
	var teamName string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		member, err := lookupMembership(tx, identity)
		if err != nil {
			return err
		}
		if member != nil {
			return ErrAlreadyMember
		}

		var team models.Team
		if err := tx.Where("token = ? AND is_deleted = ?", token, false).First(&team).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownToken
			}
			return err
		}

		solver := models.Solver{
			ExternalID:  identity,
			DisplayName: displayName,
			TeamID:      team.ID,
		}
		if err := tx.Create(&solver).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMember
			}
			return err
		}

		teamName = team.Name
		return nil
	})
	if err != nil {
		return "", err
	}

	return teamName, nil
}

// LeaveTeam removes the caller's solver row. Captains cannot leave; they must
// delete the team instead.
func (s *TeamService) LeaveTeam(identity string) (string, error) {
	var teamName string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		member, err := lookupMembership(tx, identity)
		if err != nil {
			return err
		}
		if member == nil {
			return ErrNotAMember
		}
		if member.IsCaptain {
			return ErrCaptainCannotLeave
		}

		if err := tx.Delete(&models.Solver{}, member.Solver.ID).Error; err != nil {
			return err
		}

		teamName = member.Team.Name
		return nil
	})
	if err != nil {
		return "", err
	}

	return teamName, nil
}

// DeleteTeam removes every solver of the caller's team and soft-deletes the
// team row. The row itself is retained so guesslog history keeps a valid
// owner. Only the captain may delete.
func (s *TeamService) DeleteTeam(identity string) (string, error) {
	member, err := s.LookupMembership(identity)
	if err != nil {
		return "", err
	}
	if member == nil || !member.IsCaptain {
		return "", ErrNotACaptain
	}

	// Same lock-then-transact order as guess submission, so a deletion and a
	// guess against the same team serialize cleanly.
	lock := s.locks.Get(member.Team.ID)
	lock.Lock()
	defer lock.Unlock()

	var teamName string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		member, err := lookupMembership(tx, identity)
		if err != nil {
			return err
		}
		if member == nil || !member.IsCaptain {
			return ErrNotACaptain
		}

		if err := tx.Where("team_id = ?", member.Team.ID).Delete(&models.Solver{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Team{}).Where("id = ?", member.Team.ID).
			Update("is_deleted", true).Error; err != nil {
			return err
		}

		teamName = member.Team.Name
		return nil
	})
	if err != nil {
		return "", err
	}

	return teamName, nil
}
