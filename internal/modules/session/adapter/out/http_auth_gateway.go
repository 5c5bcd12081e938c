package out

import (
	"context"
	"fmt"
	"net/http"

	"medibill/internal/modules/session/domain"
	"medibill/internal/platform/transport"
)

type HTTPAuthGateway struct {
	client transport.Doer
}

func NewHTTPAuthGateway(client transport.Doer) *HTTPAuthGateway {
	return &HTTPAuthGateway{client: client}
}

type profileResponse struct {
	Profile *domain.User `json:"profile"`
}

func (g *HTTPAuthGateway) Profile(ctx context.Context, token string) (domain.User, error) {
	resp := profileResponse{}
	err := g.client.Do(ctx, transport.Request{
		Method:        http.MethodGet,
		Path:          "/profile",
		Authenticated: true,
		Token:         token,
	}, &resp)
	if err != nil {
		return domain.User{}, err
	}
	if resp.Profile == nil {
		return domain.User{}, fmt.Errorf("profile response carried no profile")
	}
	return *resp.Profile, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
}

func (g *HTTPAuthGateway) Login(ctx context.Context, creds domain.Credentials) (domain.LoginGrant, error) {
	body, err := transport.JSONBody(loginRequest{Username: creds.Username, Password: creds.Password})
	if err != nil {
		return domain.LoginGrant{}, err
	}
	resp := loginResponse{}
	if err := g.client.Do(ctx, transport.Request{
		Method:      http.MethodPost,
		Path:        "/login",
		Body:        body,
		ContentType: "application/json",
	}, &resp); err != nil {
		return domain.LoginGrant{}, err
	}
	return domain.LoginGrant{Token: resp.AccessToken, Username: resp.Username}, nil
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Msg      string `json:"msg"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func (g *HTTPAuthGateway) Register(ctx context.Context, reg domain.Registration) (domain.RegisteredUser, error) {
	body, err := transport.JSONBody(registerRequest{Username: reg.Username, Email: reg.Email, Password: reg.Password})
	if err != nil {
		return domain.RegisteredUser{}, err
	}
	resp := registerResponse{}
	if err := g.client.Do(ctx, transport.Request{
		Method:      http.MethodPost,
		Path:        "/register",
		Body:        body,
		ContentType: "application/json",
	}, &resp); err != nil {
		return domain.RegisteredUser{}, err
	}
	username := resp.Username
	if username == "" {
		username = reg.Username
	}
	return domain.RegisteredUser{ID: resp.UserID, Username: username, Message: resp.Msg}, nil
}
