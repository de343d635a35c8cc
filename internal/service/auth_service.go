package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"roll-call/config"
	"roll-call/internal/dto"
	"roll-call/internal/model"
	"roll-call/internal/repository"
	"roll-call/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrStaffNotFound      = errors.New("教职工不存在")
)

// TokenBlacklist Token 黑名单（Redis 实现见 pkg/redis）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 将当前 Token 加入黑名单；黑名单不可用时直接返回
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentStaff(ctx context.Context, staffID string) (*dto.StaffResponse, error)
	// EnsureBootstrapStaff 账号表为空且配置了初始管理员时创建该账号
	EnsureBootstrapStaff(ctx context.Context) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist // 可为 nil
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询账号
	staff, err := s.repo.Staff.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询教职工失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token
	accessToken, err := s.jwtMgr.GenerateAccessToken(staff.StaffID, staff.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Staff:       toStaffResponse(staff),
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) GetCurrentStaff(ctx context.Context, staffID string) (*dto.StaffResponse, error) {
	staff, err := s.repo.Staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("查询教职工失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, err
	}
	resp := toStaffResponse(staff)
	return &resp, nil
}

func (s *authService) EnsureBootstrapStaff(ctx context.Context) error {
	b := s.cfg.Auth.Bootstrap
	if b.Username == "" || b.Password == "" {
		return nil
	}

	n, err := s.repo.Staff.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(b.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	staff := &model.Staff{
		Username:     b.Username,
		Name:         b.Name,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := s.repo.Staff.Create(ctx, staff); err != nil {
		return err
	}

	s.logger.Info("已创建初始管理员账号", zap.String("username", b.Username))
	return nil
}

// ── 内部辅助方法 ──

func toStaffResponse(staff *model.Staff) dto.StaffResponse {
	return dto.StaffResponse{
		ID:       staff.StaffID,
		Username: staff.Username,
		Name:     staff.Name,
		Role:     staff.Role,
	}
}
