package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/nexus-hr/interview-coordinator/internal/notify"
	"github.com/nexus-hr/interview-coordinator/internal/workflow"
	"github.com/nexus-hr/interview-coordinator/pkg/model"
	"github.com/nexus-hr/interview-coordinator/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	Logger  *zap.Logger
	Engine  *workflow.Engine
	Mailbox notify.Mailbox
	JwtKey  string
}

// respondError maps the workflow error taxonomy onto HTTP. Anything
// unexpected is logged and hidden behind a 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		validationErr *model.ValidationError
		transitionErr *model.InvalidTransitionError
		notFoundErr   *model.NotFoundError
		conflictErr   *model.ConflictError
		provisionErr  *model.ProvisioningError
		deliveryErr   *model.DeliveryError
	)

	switch {
	case errors.As(err, &validationErr):
		response.ValidationError(c, validationErr.Error())
	case errors.As(err, &transitionErr):
		response.Conflict(c, "INVALID_TRANSITION", transitionErr.Error())
	case errors.As(err, &notFoundErr):
		response.NotFound(c, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		response.Conflict(c, "VERSION_CONFLICT", conflictErr.Error())
	case errors.Is(err, model.ErrNotConnected):
		response.ServiceUnavailable(c, "mailbox account not connected; connect it before sending emails")
	case errors.As(err, &provisionErr):
		response.BadGateway(c, "PROVISIONING_FAILED", provisionErr.Error())
	case errors.As(err, &deliveryErr):
		response.BadGateway(c, "DELIVERY_FAILED", deliveryErr.Error())
	default:
		h.Logger.Sugar().Errorw("unexpected error", "path", c.Request.URL.Path, "err", err)
		response.InternalError(c, "")
	}
}
