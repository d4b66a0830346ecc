package service

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"LinkUp/internal/model"
	"LinkUp/internal/pkg"
	"LinkUp/internal/pkg/errcode"
	"LinkUp/internal/repository/mysql"
	"LinkUp/internal/repository/redis"
	"LinkUp/internal/storage"
)

type UserService struct {
	db       *gorm.DB
	repo     *mysql.UserRepository
	tokens   *pkg.TokenIssuer
	sessions SessionStore
	store    storage.ObjectStore
}

func NewUserService(db *gorm.DB, tokens *pkg.TokenIssuer, sessions SessionStore, store storage.ObjectStore) *UserService {
	return &UserService{
		db:       db,
		repo:     &mysql.UserRepository{DB: db},
		tokens:   tokens,
		sessions: sessions,
		store:    store,
	}
}

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errcode.Internal(err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, errcode.ErrEmailTaken
	} else if !mysql.IsNotFound(err) {
		return nil, errcode.Internal(err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{Name: strings.TrimSpace(name), Email: email, Password: hash}
	if err = s.repo.Create(ctx, user); err != nil {
		if mysql.IsDuplicateKey(err) {
			return nil, errcode.ErrEmailTaken
		}
		return nil, errcode.Internal(err)
	}
	return user, nil
}

// Login 校验密码后签发双 token，并覆盖旧会话
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, *pkg.Pair, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, nil, storeErr(err, errcode.ErrBadCredentials)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, errcode.ErrBadCredentials
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *UserService) issue(ctx context.Context, userID uint64) (*pkg.Pair, error) {
	pair, err := s.tokens.GeneratePair(userID)
	if err != nil {
		return nil, errcode.Internal(err)
	}
	if s.sessions != nil {
		session := redis.Session{AccessToken: pair.AccessToken, RefreshID: pair.RefreshID}
		if err = s.sessions.Save(ctx, userID, session); err != nil {
			return nil, errcode.Internal(err)
		}
	}
	return pair, nil
}

// Refresh 用 refresh token 换新的一对 token；只有会话当前的 refresh token 可用，且用后即换
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, errcode.ErrTokenInvalid
	}
	userID := claims.UserID
	ok, err := s.repo.Exists(ctx, userID)
	if err != nil {
		return nil, errcode.Internal(err)
	}
	if !ok {
		return nil, errcode.ErrUnknownSubject
	}

	pair, err := s.tokens.GeneratePair(userID)
	if err != nil {
		return nil, errcode.Internal(err)
	}
	if s.sessions == nil {
		return pair, nil
	}
	next := redis.Session{AccessToken: pair.AccessToken, RefreshID: pair.RefreshID}
	rotated, err := s.sessions.Rotate(ctx, userID, claims.ID, next)
	if err != nil {
		return nil, errcode.Internal(err)
	}
	if !rotated {
		slog.WarnContext(ctx, "stale_refresh_token", "user_id", userID)
		return nil, errcode.ErrSessionRevoked
	}
	return pair, nil
}

func (s *UserService) Logout(ctx context.Context, userID uint64) error {
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return errcode.Internal(err)
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, userID uint64) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, errcode.ErrUserNotFound)
	}
	return user, nil
}

// Update 修改密码后会话失效，需要重新登录
func (s *UserService) Update(ctx context.Context, userID uint64, in UpdateUserInput) (*model.User, error) {
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		other, err := s.repo.FindByEmail(ctx, email)
		if err == nil && other.ID != userID {
			return nil, errcode.ErrEmailTaken
		}
		if err != nil && !mysql.IsNotFound(err) {
			return nil, errcode.Internal(err)
		}
		fields["email"] = email
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}

	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, userID, fields); err != nil {
			if mysql.IsDuplicateKey(err) {
				return nil, errcode.ErrEmailTaken
			}
			return nil, errcode.Internal(err)
		}
	}
	if in.Password != nil {
		if err := s.Logout(ctx, userID); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, userID)
}

// Delete 注销账号：级联删除其创作者主页（含帖子与媒体）以及自己的申请和订阅
func (s *UserService) Delete(ctx context.Context, userID uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := &mysql.UserRepository{DB: tx}
		if _, err := users.FindByID(ctx, userID); err != nil {
			return storeErr(err, errcode.ErrUserNotFound)
		}

		creators, err := (&mysql.CreatorRepository{DB: tx}).ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, c := range creators {
			if err = deleteCreatorTx(ctx, tx, s.store, c.ID); err != nil {
				return err
			}
		}
		if err = (&mysql.SubRequestRepository{DB: tx}).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err = (&mysql.SubscriberRepository{DB: tx}).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return users.Delete(ctx, userID)
	})
	if err != nil {
		return appErr(err)
	}

	if err = s.Logout(ctx, userID); err != nil {
		slog.WarnContext(ctx, "session_cleanup_failed", "user_id", userID, "err", err)
	}
	return nil
}

// ResetPassword 邮箱验证码重置密码
func (s *UserService) ResetPassword(ctx context.Context, codes *EmailService, email, code, password string) error {
	email = normalizeEmail(email)
	if err := codes.VerifyResetCode(ctx, email, code); err != nil {
		return err
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return storeErr(err, errcode.ErrCodeMismatch)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err = s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return errcode.Internal(err)
	}
	return s.Logout(ctx, user.ID)
}
