package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/sharedpot/internal/api"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Alice@Example.com",
		DisplayName: "Alice",
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.Token == "" || reg.Msg.User.Email != "alice@example.com" {
		t.Errorf("unexpected register response: %+v", reg.Msg)
	}

	login, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Msg.User.ID != reg.Msg.User.ID {
		t.Errorf("login user = %s, want %s", login.Msg.User.ID, reg.Msg.User.ID)
	}

	me, err := env.auth.GetCurrentUser(ctx, authed(login.Msg.Token, &api.GetCurrentUserRequest{}))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if me.Msg.User.DisplayName != "Alice" || me.Msg.User.CreatedAt.IsZero() {
		t.Errorf("unexpected current user: %+v", me.Msg.User)
	}
}

func TestAuthErrors(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	env.register(t, "alice@example.com")

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{
			name: "duplicate email",
			call: func() error {
				_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "alice@example.com", Password: "password123"}))
				return err
			},
			want: connect.CodeAlreadyExists,
		},
		{
			name: "weak password",
			call: func() error {
				_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "bob@example.com", Password: "short"}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "wrong password",
			call: func() error {
				_, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "wrong-password"}))
				return err
			},
			want: connect.CodeUnauthenticated,
		},
		{
			name: "empty login",
			call: func() error {
				_, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "anonymous current user",
			call: func() error {
				_, err := env.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
				return err
			},
			want: connect.CodeUnauthenticated,
		},
		{
			name: "bad token",
			call: func() error {
				_, err := env.ledgers.ListLedgers(ctx, authed("garbage", &api.ListLedgersRequest{}))
				return err
			},
			want: connect.CodeUnauthenticated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, tt.call(), tt.want)
		})
	}
}
