package service

import (
	"context"
	"errors"
	"maurizone/internal/api/dto"
	"maurizone/internal/model"
	"maurizone/internal/pkg/consts"
	"maurizone/internal/pkg/security"
	"maurizone/internal/repository"
	"time"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// UserService 用户服务接口定义
type UserService interface {
	Register(ctx context.Context, req *dto.RegisterReq) (*dto.UserDTO, error)
	Login(ctx context.Context, req *dto.LoginReq) (*dto.LoginDTO, error)
	Logout(ctx context.Context, token string) error
	GetProfile(ctx context.Context, userID uint64) (*dto.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uint64, req *dto.UpdateUserReq) error
	ListUsers(ctx context.Context, page, pageSize int) ([]*dto.UserDTO, int64, error)
}

type userServiceImpl struct {
	userRepo repository.UserRepo
	blocker  TokenBlocker
}

// TokenBlocker 已注销 token 的黑名单（按签名维度，Redis 实现）
type TokenBlocker interface {
	Block(ctx context.Context, signature string, ttl time.Duration) error
}

func NewUserService(userRepo repository.UserRepo, blocker TokenBlocker) UserService {
	return &userServiceImpl{userRepo: userRepo, blocker: blocker}
}

// Register 注册新用户
func (s *userServiceImpl) Register(ctx context.Context, req *dto.RegisterReq) (*dto.UserDTO, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrUserExist
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     consts.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

// Login 邮箱密码登录，签发 JWT
func (s *userServiceImpl) Login(ctx context.Context, req *dto.LoginReq) (*dto.LoginDTO, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPasswordIncorrect
		}
		return nil, err
	}
	if err = security.CheckPasswordHash(req.Password, user.Password); err != nil {
		return nil, ErrPasswordIncorrect
	}

	token, err := security.GenerateToken(user.ID, []string{user.Role})
	if err != nil {
		return nil, err
	}
	return &dto.LoginDTO{Token: token, User: toUserDTO(user)}, nil
}

// Logout 将 token 签名拉黑至自然过期
func (s *userServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return UnauthenticatedError
	}
	return s.blocker.Block(ctx, signature, security.JWTExpirationTime)
}

func (s *userServiceImpl) GetProfile(ctx context.Context, userID uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserDTO(user), nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID uint64, req *dto.UpdateUserReq) error {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if len(fields) == 0 {
		return nil
	}
	return s.userRepo.Update(ctx, userID, fields)
}

// ListUsers 用户列表（管理端）
func (s *userServiceImpl) ListUsers(ctx context.Context, page, pageSize int) ([]*dto.UserDTO, int64, error) {
	users, total, err := s.userRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*dto.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	return out, total, nil
}

func toUserDTO(user *model.User) *dto.UserDTO {
	var out dto.UserDTO
	_ = copier.Copy(&out, user)
	return &out
}
