package service

import (
	"context"
	"testing"
	"time"

	"maurizone/internal/api/dto"
)

type fakeTokenBlocker struct {
	blocked []string
}

func (s *fakeTokenBlocker) Block(_ context.Context, signature string, _ time.Duration) error {
	s.blocked = append(s.blocked, signature)
	return nil
}

func TestLoginPasswordCheck(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(&memUserRepo{store}, &fakeTokenBlocker{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, &dto.RegisterReq{Name: "alice", Email: "alice@example.com", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginReq{Email: "alice@example.com", Password: "wrong-pass"}); err != ErrPasswordIncorrect {
		t.Fatalf("wrong password must fail with ErrPasswordIncorrect, got %v", err)
	}
	// 未注册邮箱与密码错误不可区分
	if _, err := svc.Login(ctx, &dto.LoginReq{Email: "nobody@example.com", Password: "s3cret-pass"}); err != ErrPasswordIncorrect {
		t.Fatalf("unknown email must fail the same way, got %v", err)
	}

	res, err := svc.Login(ctx, &dto.LoginReq{Email: "alice@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" || res.User == nil || res.User.Name != "alice" {
		t.Fatalf("unexpected login result: %+v", res)
	}
}

func TestLogoutBlocksTokenSignature(t *testing.T) {
	store := newMemStore()
	blocker := &fakeTokenBlocker{}
	svc := NewUserService(&memUserRepo{store}, blocker)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &dto.RegisterReq{Name: "bob", Email: "bob@example.com", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	res, err := svc.Login(ctx, &dto.LoginReq{Email: "bob@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(blocker.blocked) != 1 {
		t.Fatalf("token signature should be blocked exactly once, got %v", blocker.blocked)
	}

	if err := svc.Logout(ctx, "not-a-jwt"); err != UnauthenticatedError {
		t.Fatalf("malformed token must be rejected, got %v", err)
	}
}
