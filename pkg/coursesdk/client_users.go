package coursesdk

import (
	"context"
	"net/http"
)

// ListUsers returns every user in the directory.
func (c *SDKClient) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.getJSON(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a user by id.
func (c *SDKClient) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.getJSON(ctx, pathf("/users/%s", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByEmail scans the user list for an exact, case-sensitive email
// match. It returns ErrNotFound when nobody matches.
func (c *SDKClient) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// CreateUser registers a new user.
func (c *SDKClient) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/users", req)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
