package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spaceshare/internal/model"
	"github.com/iliyamo/spaceshare/internal/repository"
	"github.com/iliyamo/spaceshare/internal/utils"
)

// UserHandler serves registration, login and profiles.
type UserHandler struct {
	Deps
	BcryptCost int
}

func NewUserHandler(d Deps, bcryptCost int) *UserHandler {
	return &UserHandler{Deps: d, BcryptCost: bcryptCost}
}

// ----- DTOs -----

type registerReq struct {
	Username        string  `json:"username" validate:"required,min=3,max=50"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=6"`
	ConfirmPassword string  `json:"confirmPassword" validate:"required,eqfield=Password"`
	FullName        string  `json:"fullName" validate:"required"`
	Bio             *string `json:"bio"`
	Avatar          *string `json:"avatar" validate:"omitempty,url"`
	IsHost          bool    `json:"isHost"`
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userPatchReq struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	FullName *string `json:"fullName" validate:"omitempty,min=1"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar" validate:"omitempty,url"`
	IsHost   *bool   `json:"isHost"`
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// Register creates an account. Username and email must be unused, compared
// case-insensitively; the check and the insert are one store operation.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return h.fail(c, err, "hash password")
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Store.RegisterUser(ctx, model.UserFields{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Bio:          req.Bio,
		Avatar:       req.Avatar,
		IsHost:       req.IsHost,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) || errors.Is(err, repository.ErrEmailTaken) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return h.fail(c, err, "register user")
	}
	return c.JSON(http.StatusCreated, u)
}

// Login checks a username/password pair and returns the account.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Store.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return h.fail(c, err, "login")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Store.GetUser(ctx, id)
	if err != nil {
		return h.fail(c, err, "get user")
	}
	return c.JSON(http.StatusOK, u)
}

// Update applies a partial profile update. A new password is re-hashed;
// a new username or email must not belong to another account.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var req userPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	trimPtr(req.Username)
	trimPtr(req.Email)
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if _, err := h.Store.GetUser(ctx, id); err != nil {
		return h.fail(c, err, "get user")
	}
	if req.Username != nil {
		other, err := h.Store.GetUserByUsername(ctx, *req.Username)
		taken, err := takenByOther(id, other, err)
		if err != nil {
			return h.fail(c, err, "lookup username")
		}
		if taken {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrUsernameTaken.Error()})
		}
	}
	if req.Email != nil {
		other, err := h.Store.GetUserByEmail(ctx, *req.Email)
		taken, err := takenByOther(id, other, err)
		if err != nil {
			return h.fail(c, err, "lookup email")
		}
		if taken {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrEmailTaken.Error()})
		}
	}

	patch := model.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
		IsHost:   req.IsHost,
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password, h.BcryptCost)
		if err != nil {
			return h.fail(c, err, "hash password")
		}
		patch.PasswordHash = &hash
	}

	u, err := h.Store.UpdateUser(ctx, id, patch)
	if err != nil {
		return h.fail(c, err, "update user")
	}
	return c.JSON(http.StatusOK, u)
}

// takenByOther interprets a username or email lookup: the value is taken
// when it resolved to an account other than self.
func takenByOther(self uint64, u *model.User, err error) (bool, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.ID != self, nil
}

// Listings returns the active listings of a host.
func (h *UserHandler) Listings(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	ls, err := h.Store.GetListingsByHost(ctx, id)
	if err != nil {
		return h.fail(c, err, "get host listings")
	}
	return c.JSON(http.StatusOK, ls)
}
