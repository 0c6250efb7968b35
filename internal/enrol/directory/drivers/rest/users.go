package rest

import (
	"context"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/pkg/coursesdk"
)

type usersRepo struct {
	c *coursesdk.SDKClient
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := r.c.ListUsers(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return mapAll(users, mapUser), nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := r.c.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	return mapUser(*u), nil
}

func (r *usersRepo) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := r.c.FindUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	return mapUser(*u), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, nu domain.NewUser) (domain.User, error) {
	u, err := r.c.CreateUser(ctx, coursesdk.CreateUserRequest{
		Name:  nu.Name,
		Email: nu.Email,
		Role:  string(nu.Role),
	})
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	return mapUser(*u), nil
}
