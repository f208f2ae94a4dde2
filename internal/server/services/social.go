package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cinecircle/cinecircle/internal/common"
	"github.com/cinecircle/cinecircle/internal/dbx"
	"github.com/cinecircle/cinecircle/internal/logging"
	"github.com/cinecircle/cinecircle/internal/server/models"
	"github.com/cinecircle/cinecircle/internal/server/repositories/repomanager"
)

// SocialService maintains the undirected friendship relation: if A lists B,
// B lists A.
type SocialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewSocialService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *SocialService {
	return &SocialService{db: db, repomanager: m, logger: logger}
}

// AddFriend appends each party to the other's friend list. Both writes run
// in one transaction, so a symmetric edge either fully appears or not at
// all, and retries after a failure cannot duplicate it. Adding yourself or
// an existing friend is rejected as a duplicate edge.
func (s *SocialService) AddFriend(ctx context.Context, friendUsername string, requesterID string) error {
	repo := s.repomanager.Users(s.db)

	friend, err := repo.GetByUsername(ctx, friendUsername)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error fetching friend: %w", err)
	}

	user, err := repo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error fetching user: %w", err)
	}

	if friend.ID == user.ID || user.HasFriend(friend.ID) {
		return common.ErrAlreadyFriends
	}

	userFriends := append(user.Friends, models.Friend{UserID: friend.ID, Username: friend.Username})
	friendFriends := append(friend.Friends, models.Friend{UserID: user.ID, Username: user.Username})

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Users(tx)
		if err := repoTx.UpdateFriends(ctx, userFriends, user.ID); err != nil {
			return err
		}
		return repoTx.UpdateFriends(ctx, friendFriends, friend.ID)
	})
	if err != nil {
		return fmt.Errorf("error adding friend: %w", err)
	}

	s.logger.Info(ctx, "friend added", "username", friendUsername, "userId", requesterID)
	return nil
}

// FriendsList projects the user's friends down to the reduced summary.
// Order follows store return order and is not guaranteed stable. Edges
// pointing at deleted accounts are filtered by the projection itself.
func (s *SocialService) FriendsList(ctx context.Context, userID string) ([]*models.FriendSummary, error) {
	if userID == "" {
		return nil, common.ErrMissingUserID
	}

	repo := s.repomanager.Users(s.db)

	list, err := repo.FriendsListByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrFriendsListUnavailable
		}
		return nil, fmt.Errorf("error fetching friends list: %w", err)
	}
	return list, nil
}
