package application

import (
	"context"

	"github.com/wyfcoding/samplemarket/internal/follow/domain"
)

type FollowApplicationService struct{ repo domain.FollowRepository }

func NewFollowApplicationService(repo domain.FollowRepository) *FollowApplicationService {
	return &FollowApplicationService{repo: repo}
}

func (s *FollowApplicationService) Follow(ctx context.Context, userID, producerID uint) error {
	exists, err := s.repo.ProducerExists(ctx, producerID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrProducerNotFound
	}

	return s.repo.Save(ctx, &domain.Follow{UserID: userID, ProducerID: producerID})
}

func (s *FollowApplicationService) Unfollow(ctx context.Context, userID, producerID uint) error {
	deleted, err := s.repo.Delete(ctx, userID, producerID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNotFollowing
	}
	return nil
}

func (s *FollowApplicationService) ListFollowed(ctx context.Context, userID uint) ([]*domain.Follow, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *FollowApplicationService) FollowerCount(ctx context.Context, producerID uint) (int64, error) {
	return s.repo.CountByProducer(ctx, producerID)
}
