package service

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"roomcal/cmd/internal/domain/entity"
	"roomcal/cmd/internal/utils"
	"roomcal/cmd/internal/utils/apierror"
)

type UserRepository interface {
	FindByID(id int) (*entity.User, error)
	FindBySub(sub string) (*entity.User, error)
	FindAll() ([]*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	ExistsByEmail(email string) (bool, error)
	Save(user *entity.User) error
	Delete(user *entity.User) error
}

// PreferenceProvisioner is the slice of the reminder service the employee
// lifecycle needs: every account gets a default preferences row on creation
// and loses it on deletion.
type PreferenceProvisioner interface {
	CreateDefaultPreferences(userID int) error
	DeletePreferences(userID int) error
}

type CreateUserRequest struct {
	Sub      string `json:"sub" validate:"required,min=1,max=64"`
	Username string `json:"username" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
}

type UserResponse struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type DefaultUserService struct {
	UserRepo    UserRepository
	Preferences PreferenceProvisioner
	Validate    *validator.Validate
}

func NewUserService(userRepo UserRepository, preferences PreferenceProvisioner, validate *validator.Validate) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, Preferences: preferences, Validate: validate}
}

func (u *DefaultUserService) GetUsers() ([]*UserResponse, apierror.ErrorResponse) {
	users, err := u.UserRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch all users: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*UserResponse, len(users))
	for i, user := range users {
		resp[i] = toUserResponse(user)
	}
	return resp, nil
}

func (u *DefaultUserService) GetUser(rawId, subId string) (*UserResponse, apierror.ErrorResponse) {
	user, apierr := u.fetchUser(rawId, subId)
	if apierr != nil {
		return nil, apierr
	}

	if user == nil {
		return nil, apierror.NotFoundError
	}

	resp := toUserResponse(user)
	return resp, nil
}

// CreateUser registers an employee record for an identity the IdP already
// knows (the sub claim comes from there) and provisions the default reminder
// preferences every account starts with.
func (u *DefaultUserService) CreateUser(req *CreateUserRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	found, err := u.UserRepo.ExistsByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return apierror.InternalServerError
	}
	if found {
		return apierror.UserAlreadyExistsError
	}

	now := utils.NowUTC()
	user := &entity.User{
		SubUUID:   req.Sub,
		Username:  req.Username,
		Email:     req.Email,
		IsAdmin:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.UserRepo.Save(user); err != nil {
		log.Errorf("failed to create user: %v", err)
		return apierror.InternalServerError
	}

	if err := u.Preferences.CreateDefaultPreferences(user.ID); err != nil {
		// The account is unusable without its preferences row; revert.
		_ = u.UserRepo.Delete(user)
		log.Errorf("failed to provision preferences for user %d: %v", user.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

// DeleteUser removes an employee and the preferences row that was created
// with the account. Admin only.
func (u *DefaultUserService) DeleteUser(rawId, subId string) apierror.ErrorResponse {
	caller, err := u.UserRepo.FindBySub(subId)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", subId, err)
		return apierror.InternalServerError
	}
	if caller == nil || !caller.IsAdmin {
		return apierror.ForbiddenError
	}

	user, apierr := u.fetchByID(rawId)
	if apierr != nil {
		return apierr
	}
	if user == nil {
		return apierror.NotFoundError
	}

	if err := u.Preferences.DeletePreferences(user.ID); err != nil {
		log.Errorf("failed to delete preferences for user %d: %v", user.ID, err)
		return apierror.InternalServerError
	}
	if err := u.UserRepo.Delete(user); err != nil {
		log.Errorf("failed to delete user %d: %v", user.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

func (u *DefaultUserService) fetchUser(rawId, sub string) (*entity.User, apierror.ErrorResponse) {
	if rawId == "@me" {
		return u.fetchBySub(sub)
	}
	return u.fetchByID(rawId)
}

func (u *DefaultUserService) fetchBySub(sub string) (*entity.User, apierror.ErrorResponse) {
	user, err := u.UserRepo.FindBySub(sub)
	if err != nil {
		log.Errorf("failed to find user (%s) by sub: %v", sub, err)
		return nil, apierror.InternalServerError
	}
	return user, nil
}

func (u *DefaultUserService) fetchByID(rawId string) (*entity.User, apierror.ErrorResponse) {
	userId, err := strconv.Atoi(rawId)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("id", "int32")
	}
	user, err := u.UserRepo.FindByID(userId)
	if err != nil {
		log.Errorf("failed to find user (%s) by id: %v", rawId, err)
		return nil, apierror.InternalServerError
	}
	return user, nil
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		CreatedAt: utils.FormatEpoch(user.CreatedAt),
		UpdatedAt: utils.FormatEpoch(user.UpdatedAt),
	}
}
