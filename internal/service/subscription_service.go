package service

import (
	"context"

	"gorm.io/gorm"

	"LinkUp/internal/model"
	"LinkUp/internal/pkg/errcode"
	"LinkUp/internal/repository/mysql"
)

const (
	FollowGranted = "granted"
	FollowPending = "pending"
)

// FollowResult 公开创作者直接授权，私有创作者进入待处理申请
type FollowResult struct {
	Status       string `json:"status"`
	SubscriberID uint64 `json:"subscriber_id,omitempty"`
	SubRequestID uint64 `json:"sub_request_id,omitempty"`
}

type SubscriptionService struct {
	db       *gorm.DB
	creators *mysql.CreatorRepository
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db, creators: &mysql.CreatorRepository{DB: db}}
}

// txRepos 事务内使用的仓储，全部绑定同一个 tx
type txRepos struct {
	creators    *mysql.CreatorRepository
	requests    *mysql.SubRequestRepository
	subscribers *mysql.SubscriberRepository
	outbox      *mysql.OutboxRepository
}

func newTxRepos(tx *gorm.DB) *txRepos {
	return &txRepos{
		creators:    &mysql.CreatorRepository{DB: tx},
		requests:    &mysql.SubRequestRepository{DB: tx},
		subscribers: &mysql.SubscriberRepository{DB: tx},
		outbox:      &mysql.OutboxRepository{DB: tx},
	}
}

func (s *SubscriptionService) inTx(ctx context.Context, fn func(r *txRepos) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepos(tx))
	})
	return appErr(err)
}

// RequestFollow 订阅创作者：公开直接授权，私有则创建申请
func (s *SubscriptionService) RequestFollow(ctx context.Context, requesterID, creatorID uint64) (*FollowResult, error) {
	var res *FollowResult
	err := s.inTx(ctx, func(r *txRepos) error {
		c, err := r.creators.FindByID(ctx, creatorID)
		if err != nil {
			return storeErr(err, errcode.ErrCreatorNotFound)
		}
		if c.UserID == requesterID {
			return errcode.ErrSelfSubscribe
		}

		if c.IsPublic {
			sub, err := r.subscribers.Grant(ctx, requesterID, creatorID)
			if err != nil {
				return err
			}
			// 创作者曾为私有时遗留的申请一并清除
			if err = r.requests.DeletePair(ctx, requesterID, creatorID); err != nil {
				return err
			}
			if err = r.outbox.Insert(ctx, model.EventSubGranted, requesterID, creatorID); err != nil {
				return err
			}
			res = &FollowResult{Status: FollowGranted, SubscriberID: sub.ID}
			return nil
		}

		// 已授权的重复订阅幂等返回
		sub, err := r.subscribers.FindByPair(ctx, requesterID, creatorID)
		if err == nil && sub.HasAccess {
			res = &FollowResult{Status: FollowGranted, SubscriberID: sub.ID}
			return nil
		}
		if err != nil && !mysql.IsNotFound(err) {
			return err
		}

		exists, err := r.requests.ExistsPair(ctx, requesterID, creatorID)
		if err != nil {
			return err
		}
		if exists {
			return errcode.ErrRequestExists
		}
		req := &model.SubRequest{UserID: requesterID, CreatorID: creatorID}
		if err = r.requests.Create(ctx, req); err != nil {
			if mysql.IsDuplicateKey(err) {
				return errcode.ErrRequestExists
			}
			return err
		}
		if err = r.outbox.Insert(ctx, model.EventSubRequested, requesterID, creatorID); err != nil {
			return err
		}
		res = &FollowResult{Status: FollowPending, SubRequestID: req.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ResolveRequest 所有者处理申请：同意则授权并删除申请，拒绝只删除申请
func (s *SubscriptionService) ResolveRequest(ctx context.Context, actorID, creatorID, subRequestID uint64, accepted bool) (*model.Subscriber, error) {
	var granted *model.Subscriber
	err := s.inTx(ctx, func(r *txRepos) error {
		if _, err := requireOwner(ctx, r.creators, actorID, creatorID); err != nil {
			return err
		}
		req, err := r.requests.FindByID(ctx, creatorID, subRequestID)
		if err != nil {
			return storeErr(err, errcode.ErrRequestNotFound)
		}

		event := model.EventSubRejected
		if accepted {
			if granted, err = r.subscribers.Grant(ctx, req.UserID, creatorID); err != nil {
				return err
			}
			event = model.EventSubGranted
		}
		n, err := r.requests.Delete(ctx, req.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return errcode.ErrRequestNotFound
		}
		return r.outbox.Insert(ctx, event, req.UserID, creatorID)
	})
	if err != nil {
		return nil, err
	}
	return granted, nil
}

// CancelRequest 申请人撤回自己的申请，或所有者直接丢弃；无关用户与不存在的申请一样返回 NOT_FOUND
func (s *SubscriptionService) CancelRequest(ctx context.Context, actorID, creatorID, subRequestID uint64) error {
	return s.inTx(ctx, func(r *txRepos) error {
		c, err := r.creators.FindByID(ctx, creatorID)
		if err != nil {
			return storeErr(err, errcode.ErrCreatorNotFound)
		}
		req, err := r.requests.FindByID(ctx, creatorID, subRequestID)
		if err != nil {
			return storeErr(err, errcode.ErrRequestNotFound)
		}
		event := model.EventSubCancelled
		switch actorID {
		case req.UserID:
		case c.UserID:
			event = model.EventSubRejected
		default:
			return errcode.ErrRequestNotFound
		}
		n, err := r.requests.Delete(ctx, req.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return errcode.ErrRequestNotFound
		}
		return r.outbox.Insert(ctx, event, req.UserID, creatorID)
	})
}

// ListRequests 所有者看到全部申请，其他用户只看到自己的
func (s *SubscriptionService) ListRequests(ctx context.Context, actorID, creatorID uint64) ([]model.SubRequest, error) {
	c, err := s.creators.FindByID(ctx, creatorID)
	if err != nil {
		return nil, storeErr(err, errcode.ErrCreatorNotFound)
	}
	requests := &mysql.SubRequestRepository{DB: s.db}
	var list []model.SubRequest
	if c.UserID == actorID {
		list, err = requests.ListByCreator(ctx, creatorID)
	} else {
		list, err = requests.ListByUser(ctx, actorID, creatorID)
	}
	if err != nil {
		return nil, errcode.Internal(err)
	}
	return list, nil
}

// RevokeAccess 所有者移除订阅者，或订阅者自己退订；不会重新生成申请。无关用户看到的是 NOT_FOUND
func (s *SubscriptionService) RevokeAccess(ctx context.Context, actorID, creatorID, subscriberID uint64) error {
	return s.inTx(ctx, func(r *txRepos) error {
		c, err := r.creators.FindByID(ctx, creatorID)
		if err != nil {
			return storeErr(err, errcode.ErrCreatorNotFound)
		}
		sub, err := r.subscribers.FindByID(ctx, creatorID, subscriberID)
		if err != nil {
			return storeErr(err, errcode.ErrSubNotFound)
		}
		if actorID != c.UserID && actorID != sub.UserID {
			return errcode.ErrSubNotFound
		}
		n, err := r.subscribers.Delete(ctx, creatorID, subscriberID)
		if err != nil {
			return err
		}
		if n == 0 {
			return errcode.ErrSubNotFound
		}
		return r.outbox.Insert(ctx, model.EventSubRevoked, sub.UserID, creatorID)
	})
}

// canViewSubscribers 所有者或已授权的订阅者
func (s *SubscriptionService) canViewSubscribers(ctx context.Context, actorID, creatorID uint64) error {
	c, err := s.creators.FindByID(ctx, creatorID)
	if err != nil {
		return storeErr(err, errcode.ErrCreatorNotFound)
	}
	if c.UserID == actorID {
		return nil
	}
	ok, err := (&mysql.SubscriberRepository{DB: s.db}).HasAccess(ctx, actorID, creatorID)
	if err != nil {
		return errcode.Internal(err)
	}
	if !ok {
		return errcode.ErrNoReadAccess
	}
	return nil
}

func (s *SubscriptionService) ListSubscribers(ctx context.Context, actorID, creatorID uint64) ([]model.SubscriberView, error) {
	if err := s.canViewSubscribers(ctx, actorID, creatorID); err != nil {
		return nil, err
	}
	list, err := (&mysql.SubscriberRepository{DB: s.db}).ListViews(ctx, creatorID)
	if err != nil {
		return nil, errcode.Internal(err)
	}
	return list, nil
}

func (s *SubscriptionService) GetSubscriber(ctx context.Context, actorID, creatorID, subscriberID uint64) (*model.SubscriberView, error) {
	if err := s.canViewSubscribers(ctx, actorID, creatorID); err != nil {
		return nil, err
	}
	v, err := (&mysql.SubscriberRepository{DB: s.db}).FindView(ctx, creatorID, subscriberID)
	if err != nil {
		return nil, storeErr(err, errcode.ErrSubNotFound)
	}
	return v, nil
}
