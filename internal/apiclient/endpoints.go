package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

// --- Auth (публичные) ---

func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) error {
	return c.do(ctx, call{op: "register", method: http.MethodPost, path: "/auth/register", body: req})
}

// Login возвращает токен как есть; пустой токен разбирает вызывающий.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	var resp domain.TokenResponse
	err := c.do(ctx, call{op: "login", method: http.MethodPost, path: "/auth/login", body: creds, out: &resp})
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// --- Oportunidades ---

func (c *Client) ListAllListings(ctx context.Context) ([]domain.ListingRecord, error) {
	var out []domain.ListingRecord
	err := c.do(ctx, call{op: "list_all_listings", method: http.MethodGet, path: "/oportunidades/todas", out: &out})
	return out, err
}

func (c *Client) ListListings(ctx context.Context, token string, params url.Values) ([]domain.ListingRecord, error) {
	var out []domain.ListingRecord
	err := c.do(ctx, call{op: "list_listings", method: http.MethodGet, path: "/oportunidades", token: token, query: params, out: &out})
	return out, err
}

func (c *Client) GetListing(ctx context.Context, token string, id int64) (*domain.ListingRecord, error) {
	var out domain.ListingRecord
	if err := c.do(ctx, call{op: "get_listing", method: http.MethodGet, path: listingPath(id), token: token, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateListing(ctx context.Context, token string, payload domain.ListingPayload) (*domain.ListingRecord, error) {
	var out domain.ListingRecord
	if err := c.do(ctx, call{op: "create_listing", method: http.MethodPost, path: "/oportunidades", token: token, body: payload, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateListing(ctx context.Context, token string, id int64, payload domain.ListingPayload) (*domain.ListingRecord, error) {
	var out domain.ListingRecord
	if err := c.do(ctx, call{op: "update_listing", method: http.MethodPut, path: listingPath(id), token: token, body: payload, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteListing(ctx context.Context, token string, id int64) error {
	return c.do(ctx, call{op: "delete_listing", method: http.MethodDelete, path: listingPath(id), token: token})
}

// --- Perfil ---

func (c *Client) GetProfile(ctx context.Context, token string) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, call{op: "get_profile", method: http.MethodGet, path: "/usuarios/me", token: token, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, call{op: "update_profile", method: http.MethodPut, path: "/usuarios/me", token: token, body: update, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, token string, change domain.PasswordChange) error {
	return c.do(ctx, call{op: "change_password", method: http.MethodPost, path: "/usuarios/me/mudar-senha", token: token, body: change})
}

// --- Favoritos ---

func (c *Client) ListFavorites(ctx context.Context, token string) ([]domain.ListingRecord, error) {
	var out []domain.ListingRecord
	err := c.do(ctx, call{op: "list_favorites", method: http.MethodGet, path: "/usuarios/me/favoritos", token: token, out: &out})
	return out, err
}

func (c *Client) AddFavorite(ctx context.Context, token string, listingID int64) error {
	return c.do(ctx, call{op: "add_favorite", method: http.MethodPost, path: favoritePath(listingID), token: token})
}

func (c *Client) RemoveFavorite(ctx context.Context, token string, listingID int64) error {
	return c.do(ctx, call{op: "remove_favorite", method: http.MethodDelete, path: favoritePath(listingID), token: token})
}

// --- Admin ---

func (c *Client) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	var out []domain.User
	err := c.do(ctx, call{op: "list_users", method: http.MethodGet, path: "/admin/usuarios", token: token, out: &out})
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, token string, userID int64) error {
	return c.do(ctx, call{op: "delete_user", method: http.MethodDelete, path: userPath(userID), token: token})
}

func (c *Client) UpdateUserRoles(ctx context.Context, token string, userID int64, roles []string) error {
	body := domain.RolesUpdate{NomesDasRoles: roles}
	return c.do(ctx, call{op: "update_user_roles", method: http.MethodPut, path: userPath(userID) + "/roles", token: token, body: body})
}

func listingPath(id int64) string  { return fmt.Sprintf("/oportunidades/%d", id) }
func favoritePath(id int64) string { return fmt.Sprintf("/usuarios/me/favoritos/%d", id) }
func userPath(id int64) string     { return fmt.Sprintf("/admin/usuarios/%d", id) }
