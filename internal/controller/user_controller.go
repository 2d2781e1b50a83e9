package controller

import (
	"socialite-be/internal/dto"
	"socialite-be/internal/pkg/serverutils"
	"socialite-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Me(ctx *fiber.Ctx) error
	UpdateProfile(ctx *fiber.Ctx) error
	Follow(ctx *fiber.Ctx) error
	AcceptFollow(ctx *fiber.Ctx) error
	RejectFollow(ctx *fiber.Ctx) error
	FollowRequests(ctx *fiber.Ctx) error
	FollowersFollowing(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	FindFriends(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type userController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) IUserController {
	return &userController{
		userService: userService,
	}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("me", c.Me)
	h.Put("profile", c.UpdateProfile)
	h.Post("follow/accept/:requesterId", c.AcceptFollow)
	h.Post("follow/reject/:requesterId", c.RejectFollow)
	h.Get("follow/requests", c.FollowRequests)
	h.Post("follow/:targetUserId", c.Follow)
	h.Post("followersFollowing", c.FollowersFollowing)
	h.Post("search", c.Search)
	h.Get("all", c.List)
	h.Get("findFriends", c.FindFriends)
	h.Get(":id", c.Show)
}

func currentUserID(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

func (c *userController) Me(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	res, err := c.userService.GetCurrentUser(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *userController) Show(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	targetId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	res, err := c.userService.GetUser(ctx.Context(), userId, targetId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *userController) UpdateProfile(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.userService.UpdateProfile(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	message := "No changes made"
	if len(res.ChangedFields) > 0 {
		message = "Profile updated"
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func (c *userController) Follow(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	targetId, err := uuid.Parse(ctx.Params("targetUserId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	res, err := c.userService.Follow(ctx.Context(), userId, targetId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *userController) AcceptFollow(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	requesterId, err := uuid.Parse(ctx.Params("requesterId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	res, err := c.userService.AcceptFollowRequest(ctx.Context(), userId, requesterId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Follow request accepted", res))
}

func (c *userController) RejectFollow(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	requesterId, err := uuid.Parse(ctx.Params("requesterId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	res, err := c.userService.RejectFollowRequest(ctx.Context(), userId, requesterId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Follow request rejected", res))
}

func (c *userController) FollowRequests(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	res, err := c.userService.ListFollowRequests(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *userController) FollowersFollowing(ctx *fiber.Ctx) error {
	var req struct {
		UserId uuid.UUID `json:"userId"`
		Type   string    `json:"type"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.userService.ListFollowersFollowing(ctx.Context(), req.UserId, req.Type)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *userController) Search(ctx *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.userService.SearchUsers(ctx.Context(), req.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *userController) List(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	res, err := c.userService.ListUsers(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *userController) FindFriends(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	res, err := c.userService.FindFriends(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
