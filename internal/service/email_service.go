package service

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"LinkUp/internal/pkg"
	"LinkUp/internal/pkg/errcode"
	"LinkUp/internal/repository/mysql"
	"LinkUp/internal/repository/redis"
)

var ErrResetUnavailable = errcode.FailedPrecondition("password reset is not available")

// CodeStore 两阶段验证码存储
type CodeStore interface {
	SavePending(ctx context.Context, email, code string) error
	Confirm(ctx context.Context, email string) error
	DeletePending(ctx context.Context, email string) error
	Consume(ctx context.Context, email, code string) (bool, error)
}

type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type EmailService struct {
	users  *mysql.UserRepository
	codes  CodeStore
	mailer Mailer
}

func NewEmailService(db *gorm.DB, codes CodeStore, mailer Mailer) *EmailService {
	return &EmailService{users: &mysql.UserRepository{DB: db}, codes: codes, mailer: mailer}
}

// SendResetCode 发送重置密码验证码；邮箱未注册时静默成功，避免泄露账号是否存在
func (s *EmailService) SendResetCode(ctx context.Context, email string) error {
	if s.codes == nil || s.mailer == nil {
		return ErrResetUnavailable
	}
	email = normalizeEmail(email)
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if mysql.IsNotFound(err) {
			return nil
		}
		return errcode.Internal(err)
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return errcode.Internal(err)
	}
	// 先写 pending，邮件发出后再转为 confirmed
	if err = s.codes.SavePending(ctx, email, code); err != nil {
		return errcode.Internal(err)
	}
	html := pkg.EmailCodeHTML("a password reset", code, redis.DefaultEmailCodeTTL)
	if err = s.mailer.Send(email, "LinkUp password reset code", html); err != nil {
		_ = s.codes.DeletePending(ctx, email)
		slog.ErrorContext(ctx, "reset_mail_failed", "email", email, "err", err)
		return errcode.Internal(err)
	}
	if err = s.codes.Confirm(ctx, email); err != nil {
		_ = s.codes.DeletePending(ctx, email)
		return errcode.Internal(err)
	}
	return nil
}

// VerifyResetCode 校验并一次性消费验证码
func (s *EmailService) VerifyResetCode(ctx context.Context, email, code string) error {
	if s.codes == nil {
		return ErrResetUnavailable
	}
	ok, err := s.codes.Consume(ctx, email, code)
	if errors.Is(err, redis.ErrCodeNotFound) {
		return errcode.ErrCodeMismatch
	}
	if err != nil {
		return errcode.Internal(err)
	}
	if !ok {
		return errcode.ErrCodeMismatch
	}
	return nil
}
