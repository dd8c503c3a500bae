package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nexus-hr/interview-coordinator/internal/scheduling"
	"github.com/nexus-hr/interview-coordinator/pkg"
	"github.com/nexus-hr/interview-coordinator/pkg/model"
	"github.com/nexus-hr/interview-coordinator/pkg/response"
)

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, fmt.Sprintf("invalid interview id: %q", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) RequestAvailability(c *gin.Context) {
	var req model.RequestAvailabilityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rec, err := h.Engine.RequestAvailability(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Created(c, rec)
}

func (h *Handler) ScheduleInterview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.ScheduleInterviewReq
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// optional résumé upload, forwarded unmodified; size/type policy
	// belongs to the upload layer that accepted the original file
	var resume *model.Attachment
	if file, err := c.FormFile("resume"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			response.BadRequest(c, "could not read resume upload")
			return
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		if err != nil {
			response.BadRequest(c, "could not read resume upload")
			return
		}
		resume = &model.Attachment{
			Filename:    file.Filename,
			ContentType: pkg.AttachmentContentType(file.Filename),
			Content:     content,
		}
	}

	rec, err := h.Engine.Schedule(c.Request.Context(), id, req, resume)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, rec)
}

func (h *Handler) RescheduleInterview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.RescheduleInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rec, err := h.Engine.Reschedule(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, rec)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.UpdateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rec, err := h.Engine.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, rec)
}

func (h *Handler) CancelInterview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.Engine.Cancel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, rec)
}

func (h *Handler) DeleteInterview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Engine.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) GetInterview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := h.Engine.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, detail)
}

func (h *Handler) ListInterviews(c *gin.Context) {
	var query model.ListInterviewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	records, total, err := h.Engine.List(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	response.OKWithMeta(c, records, &response.Meta{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasNext:  page*pageSize < total,
	})
}

func (h *Handler) ExportCalendar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	format := scheduling.CalendarFormat(c.DefaultQuery("format", string(scheduling.FormatICS)))
	artifact, err := h.Engine.ExportCalendar(c.Request.Context(), id, format)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Content)
}

// MailboxStatus reports whether a sender account is connected, so the
// portal can warn before users compose emails that cannot be sent.
func (h *Handler) MailboxStatus(c *gin.Context) {
	status, err := h.Mailbox.ConnectionStatus(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, status)
}
