package handlers

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/arnold/studytrack-api/internal/models"
	"github.com/arnold/studytrack-api/internal/rpc"
)

const loginMethodPassword = "password"

func (h *Handler) getUsers(c *rpc.Call, _ rpc.Empty) ([]models.User, error) {
	return h.store.ListUsers(c.Ctx), nil
}

func (h *Handler) createUser(c *rpc.Call, in models.CreateUserRequest) (models.SuccessResponse, error) {
	if h.store.GetUserByEmail(c.Ctx, in.Email) != nil {
		return models.SuccessResponse{}, rpc.BadRequest("Email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.SuccessResponse{}, err
	}

	user := models.User{
		OpenID:      "temp-" + uuid.NewString(),
		Email:       in.Email,
		Name:        in.Name,
		Password:    string(hashed),
		LoginMethod: loginMethodPassword,
		Role:        in.Role,
	}
	if err := h.store.CreateUser(c.Ctx, &user); err != nil {
		return models.SuccessResponse{}, err
	}

	h.log.Info("user created", "userId", user.ID, "role", user.Role, "user", c.User)
	return models.SuccessResponse{Success: true, ID: user.ID}, nil
}

func (h *Handler) updateUser(c *rpc.Call, in models.UpdateUserRequest) (models.SuccessResponse, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Role != nil {
		updates["role"] = *in.Role
	}
	if in.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.SuccessResponse{}, err
		}
		updates["password"] = string(hashed)
	}

	if err := h.store.UpdateUser(c.Ctx, in.ID, updates); err != nil {
		return models.SuccessResponse{}, err
	}
	return ok(), nil
}

func (h *Handler) deleteUser(c *rpc.Call, in models.DeleteUserRequest) (models.SuccessResponse, error) {
	if in.UserID == c.User.ID {
		return models.SuccessResponse{}, rpc.BadRequest("Cannot delete your own account")
	}
	if err := h.store.DeleteUser(c.Ctx, in.UserID); err != nil {
		return models.SuccessResponse{}, err
	}
	h.log.Info("user deleted", "userId", in.UserID, "user", c.User)
	return ok(), nil
}
