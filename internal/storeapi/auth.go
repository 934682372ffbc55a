package storeapi

import "context"

func (c *Client) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	var s Session
	err := c.post(ctx, "/api/auth/register", req, &s)
	return s, err
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var s Session
	err := c.post(ctx, "/api/auth/login", body, &s)
	return s, err
}

// Me fetches the profile belonging to the current token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	err := c.get(ctx, "/api/auth/me", nil, &u)
	return u, err
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error) {
	var u User
	err := c.put(ctx, "/api/auth/me", update, &u)
	return u, err
}
