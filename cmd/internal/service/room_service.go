package service

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"roomcal/cmd/internal/domain/entity"
	"roomcal/cmd/internal/utils"
	"roomcal/cmd/internal/utils/apierror"
)

type RoomRepository interface {
	FindByID(id int) (*entity.Room, error)
	FindByName(name string) (*entity.Room, error)
	FindAll() ([]*entity.Room, error)
	Save(room *entity.Room) error
}

type RoomRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=80"`
	Capacity int    `json:"capacity" validate:"required,gte=1"`
	Location string `json:"location" validate:"max=128"`
}

type RoomResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Location string `json:"location,omitempty"`
}

type DefaultRoomService struct {
	RoomRepo RoomRepository
	UserRepo UserRepository
	Validate *validator.Validate
}

func NewRoomService(roomRepo RoomRepository, userRepo UserRepository, validate *validator.Validate) *DefaultRoomService {
	return &DefaultRoomService{RoomRepo: roomRepo, UserRepo: userRepo, Validate: validate}
}

// GetRooms lists the catalog; capacity > 0 keeps only rooms at least that big.
func (r *DefaultRoomService) GetRooms(capacity int) ([]*RoomResponse, apierror.ErrorResponse) {
	rooms, err := r.RoomRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch rooms: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		if capacity > 0 && room.Capacity < capacity {
			continue
		}
		resp = append(resp, toRoomResponse(room))
	}
	return resp, nil
}

func (r *DefaultRoomService) GetRoom(id int) (*RoomResponse, apierror.ErrorResponse) {
	room, err := r.RoomRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch room %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if room == nil {
		return nil, apierror.NotFoundError
	}
	return toRoomResponse(room), nil
}

func (r *DefaultRoomService) CreateRoom(req *RoomRequest, sub string) (*RoomResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := r.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	caller, err := r.UserRepo.FindBySub(sub)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", sub, err)
		return nil, apierror.InternalServerError
	}
	if caller == nil || !caller.IsAdmin {
		return nil, apierror.ForbiddenError
	}

	existing, err := r.RoomRepo.FindByName(req.Name)
	if err != nil {
		log.Errorf("failed to check room name %q: %v", req.Name, err)
		return nil, apierror.InternalServerError
	}
	if existing != nil {
		return nil, apierror.RoomAlreadyExistsError
	}

	now := utils.NowUTC()
	room := &entity.Room{
		Name:      req.Name,
		Capacity:  req.Capacity,
		Location:  req.Location,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.RoomRepo.Save(room); err != nil {
		log.Errorf("failed to save room %q: %v", req.Name, err)
		return nil, apierror.InternalServerError
	}
	return toRoomResponse(room), nil
}

func toRoomResponse(room *entity.Room) *RoomResponse {
	return &RoomResponse{
		ID:       room.ID,
		Name:     room.Name,
		Capacity: room.Capacity,
		Location: room.Location,
	}
}
