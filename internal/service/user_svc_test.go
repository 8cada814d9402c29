package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/middleware"
	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/repository"
)

func setupUserTestSvc(t *testing.T) *UserService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return NewUserService(repository.NewUserRepository(db))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupUserTestSvc(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice",
		Password: "password123",
		Role:     model.RoleSeller,
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if user.Password == "password123" {
		t.Error("密码不应明文落库")
	}
	if user.Role != model.RoleSeller {
		t.Errorf("role=%q", user.Role)
	}

	resp, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("登录应签发 token 对")
	}

	claims, err := middleware.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("access token 解析失败: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.RoleSeller {
		t.Errorf("claims 异常: %+v", claims)
	}
}

func TestRegisterUsernameTaken(t *testing.T) {
	svc := setupUserTestSvc(t)
	ctx := context.Background()

	req := &dto.RegisterRequest{Username: "alice", Password: "password123"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if _, err := svc.Register(ctx, req); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("重名应拒绝，得到 %v", err)
	}
}

func TestRegisterDefaultsToBuyer(t *testing.T) {
	svc := setupUserTestSvc(t)

	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "bob",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if user.Role != model.RoleBuyer {
		t.Errorf("缺省角色 %q，期望 buyer", user.Role)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := setupUserTestSvc(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &dto.RegisterRequest{Username: "alice", Password: "password123"}); err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("密码错误应拒绝，得到 %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("用户不存在应同样报凭证错误，得到 %v", err)
	}
}

func TestRefreshTokenFlow(t *testing.T) {
	svc := setupUserTestSvc(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &dto.RegisterRequest{Username: "alice", Password: "password123"}); err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	login, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("刷新应签发新 access token")
	}

	// access token 不能当 refresh token 用
	if _, err := svc.Refresh(ctx, login.AccessToken); err == nil {
		t.Error("access token 不应通过 refresh 校验")
	}
}
