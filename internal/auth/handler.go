package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/owobank/owobank/internal/identity"
	"github.com/owobank/owobank/internal/wallet"
)

// Handler exposes registration, login and token refresh endpoints.
type Handler struct {
	ids     *identity.Service
	svc     *Service
	wallets *wallet.Service
}

func NewHandler(ids *identity.Service, svc *Service, wallets *wallet.Service) *Handler {
	return &Handler{ids: ids, svc: svc, wallets: wallets}
}

type registerRequest struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Register opens a new account: the holder profile plus a provisioned
// wallet with its assigned account number.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.ids.Register(c.UserContext(), identity.RegisterInput{
		Email:     req.Email,
		Phone:     req.Phone,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, err := h.wallets.Create(c.UserContext(), wallet.CreateInput{OwnerID: user.ID, Phone: user.Phone})
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not provision wallet")
	}
	pair, err := h.svc.Login(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not issue tokens")
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user_id":        user.ID,
		"account_number": w.AccountNumber,
		"access_token":   pair.AccessToken,
		"refresh_token":  pair.RefreshToken,
		"expires_in":     pair.ExpiresIn,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID        string `json:"user_id"`
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	ExpiresIn     int64  `json:"expires_in"`
	AccountNumber string `json:"account_number,omitempty"`
}

// Login validates credentials and returns a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.ids.Authenticate(c.UserContext(), identity.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	pair, err := h.svc.Login(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	resp := loginResponse{
		UserID:       user.ID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}
	if w, err := h.wallets.GetByOwner(c.UserContext(), user.ID); err == nil {
		resp.AccountNumber = w.AccountNumber
	}
	return c.Status(http.StatusOK).JSON(resp)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, exp, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "expires_in": exp})
}
