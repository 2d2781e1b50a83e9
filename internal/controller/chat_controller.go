package controller

import (
	"socialite-be/internal/dto"
	"socialite-be/internal/pkg/serverutils"
	"socialite-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Participants(ctx *fiber.Ctx) error
	OpenRoom(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
	MarkAllSeen(ctx *fiber.Ctx) error
	DeleteRoom(ctx *fiber.Ctx) error
	DeleteMessage(ctx *fiber.Ctx) error
	React(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("participant", c.Participants)
	h.Post("room", c.OpenRoom)
	h.Post("send/:recipientId", c.Send)
	h.Post("last-seen", c.MarkAllSeen)
	h.Get(":chatRoomId/messages", c.Messages)
	h.Delete(":chatRoomId", c.DeleteRoom)
	h.Delete(":chatRoomId/messages/:messageId", c.DeleteMessage)
	h.Post(":chatRoomId/messages/:messageId/reactions", c.React)
}

func (c *chatController) Participants(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	res, err := c.chatService.ListParticipants(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", fiber.Map{"participants": res}))
}

// OpenRoom is get-or-create: posting the same recipient twice returns the
// same room.
func (c *chatController) OpenRoom(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	var req dto.GetOrCreateRoomRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.FindOrCreateRoom(ctx.Context(), userId, req.RecipientId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	recipientId, err := uuid.Parse(ctx.Params("recipientId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid recipient id")
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.chatService.SendMessage(ctx.Context(), userId, recipientId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Message sent", res))
}

func (c *chatController) Messages(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	roomId, err := uuid.Parse(ctx.Params("chatRoomId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid chat room id")
	}

	res, err := c.chatService.ListMessages(ctx.Context(), userId, roomId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) MarkAllSeen(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	res, err := c.chatService.MarkAllRoomsSeen(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Last seen updated in all relevant chat rooms", res))
}

func (c *chatController) DeleteRoom(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	roomId, err := uuid.Parse(ctx.Params("chatRoomId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid chat room id")
	}

	if err := c.chatService.DeleteRoomForUser(ctx.Context(), userId, roomId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Chat deleted", nil))
}

func (c *chatController) DeleteMessage(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	roomId, err := uuid.Parse(ctx.Params("chatRoomId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid chat room id")
	}
	messageId, err := uuid.Parse(ctx.Params("messageId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid message id")
	}

	if err := c.chatService.DeleteMessageForUser(ctx.Context(), userId, roomId, messageId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Message deleted", nil))
}

func (c *chatController) React(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	roomId, err := uuid.Parse(ctx.Params("chatRoomId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid chat room id")
	}
	messageId, err := uuid.Parse(ctx.Params("messageId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid message id")
	}

	var req dto.ReactionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.ReactToMessage(ctx.Context(), userId, roomId, messageId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Reaction saved", res))
}
