package service

import (
	"context"
	"strings"
	"time"

	"BotDesk/internal/modules/admin/application/dto/request"
	"BotDesk/internal/modules/admin/application/dto/respond"
	"BotDesk/internal/modules/admin/domain/entity"
	"BotDesk/internal/modules/admin/domain/repository"
	"BotDesk/pkg/util"
	"BotDesk/pkg/util/myjwt"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
	Me(ctx context.Context, adminID string) (*respond.AdminRespond, error)
	// EnsureBootstrapAdmin 启动时确保配置中的管理员存在；已存在时不覆盖密码
	EnsureBootstrapAdmin(ctx context.Context, email, password string) error
	ResetPassword(ctx context.Context, email, password string) error
}

type authServiceImpl struct {
	repo repository.AdminRepository
	jwt  myjwt.Options
}

func NewAuthService(repo repository.AdminRepository, jwt myjwt.Options) AuthService {
	return &authServiceImpl{repo: repo, jwt: jwt}
}

func (s *authServiceImpl) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	email := normalizeEmail(req.Email)
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		zlog.Error("get admin failed", zap.String("email", email), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if user == nil {
		return nil, xerr.ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, xerr.ErrInvalidCredential
	}

	token, err := myjwt.GenerateToken(s.jwt, user.Id, user.Email)
	if err != nil {
		zlog.Error("sign admin token failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.LoginRespond{Token: token, User: toRespond(user)}, nil
}

func (s *authServiceImpl) Me(ctx context.Context, adminID string) (*respond.AdminRespond, error) {
	if adminID == "" {
		return nil, xerr.ErrUnauthorized
	}
	user, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		zlog.Error("get admin failed", zap.String("admin_id", adminID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if user == nil {
		return nil, xerr.ErrUnauthorized
	}
	out := toRespond(user)
	return &out, nil
}

func (s *authServiceImpl) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()
	if err := s.repo.Create(ctx, &entity.AdminUser{
		Id:        util.GenerateUUID(),
		Email:     email,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return err
	}
	zlog.Info("bootstrap admin created", zap.String("email", email))
	return nil
}

// ResetPassword 运维命令使用，管理员不存在时返回 ErrNotFound
func (s *authServiceImpl) ResetPassword(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return xerr.ErrParam
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return xerr.ErrNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.Id, string(hash)); err != nil {
		return err
	}
	zlog.Info("admin password reset", zap.String("email", email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toRespond(u *entity.AdminUser) respond.AdminRespond {
	return respond.AdminRespond{ID: u.Id, Email: u.Email, Roles: []string{}}
}
