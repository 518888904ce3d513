package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quantumglobal/requisition/internal/ai"
	"github.com/quantumglobal/requisition/internal/export"
	"github.com/quantumglobal/requisition/internal/models"
	"github.com/quantumglobal/requisition/internal/notification"
	"github.com/quantumglobal/requisition/internal/repository"
	"github.com/quantumglobal/requisition/internal/view"
	"github.com/quantumglobal/requisition/internal/workflow"
	"go.uber.org/zap"
)

// AutofillProvider generates a form draft from a free-text request.
type AutofillProvider interface {
	Generate(ctx context.Context, prompt string) (*ai.Draft, error)
}

// QuoteProvider generates a form draft from an uploaded quotation file.
type QuoteProvider interface {
	ReadAndExtract(ctx context.Context, path string) (*ai.Draft, error)
}

// Handler holds the request handlers and their collaborators.
type Handler struct {
	store    repository.Store
	engine   *workflow.Engine
	excel    *export.ExcelFiller
	pdf      *export.PDFWriter
	autofill AutofillProvider // nil when autofill is not configured
	quotes   QuoteProvider    // nil when autofill is not configured
	notifier notification.Notifier
	now      func() time.Time
	logger   *zap.Logger
}

// NewHandler creates the API handler set.
func NewHandler(
	store repository.Store,
	engine *workflow.Engine,
	excel *export.ExcelFiller,
	pdf *export.PDFWriter,
	autofill AutofillProvider,
	quotes QuoteProvider,
	notifier notification.Notifier,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		store:    store,
		engine:   engine,
		excel:    excel,
		pdf:      pdf,
		autofill: autofill,
		quotes:   quotes,
		notifier: notifier,
		now:      time.Now,
		logger:   logger,
	}
}

// actor reads the declared actor from the request. The role arrives in
// the X-Actor-Role header (or role query parameter), the display name in
// X-Actor-Name.
func (h *Handler) actor(c *gin.Context) (workflow.Actor, bool) {
	declared := c.GetHeader("X-Actor-Role")
	if declared == "" {
		declared = c.Query("role")
	}

	role, err := models.ParseRole(declared)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return workflow.Actor{}, false
	}

	return workflow.Actor{
		Name: c.GetHeader("X-Actor-Name"),
		Role: role,
	}, true
}

// load fetches a requisition or writes the 404/500 response.
func (h *Handler) load(c *gin.Context, id string) (*models.Requisition, bool) {
	req, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	if req == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("requisition %s not found", id)})
		return nil, false
	}
	return req, true
}

// respondError maps domain errors to HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// ListRequisitions returns the dashboard listing for the declared role.
func (h *Handler) ListRequisitions(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	reqs, err := h.store.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requisitions": view.Dashboard(reqs, actor.Role)})
}

// CreateRequisition creates a new draft from the document template.
func (h *Handler) CreateRequisition(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if actor.Role != models.RoleRequestor {
		c.JSON(http.StatusForbidden, gin.H{"error": "only a requestor may create requisitions"})
		return
	}

	req := models.NewRequisition(h.now())
	req.RequestorName = actor.Name

	if err := h.store.Upsert(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("Requisition created", zap.String("requisition_id", req.ID))
	c.JSON(http.StatusCreated, h.document(req, actor.Role))
}

// GetRequisition returns the record plus its view metadata for the role.
func (h *Handler) GetRequisition(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	req, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.document(req, actor.Role))
}

// document bundles a record with what the role may do to it.
func (h *Handler) document(req *models.Requisition, role models.Role) gin.H {
	return gin.H{
		"requisition": req,
		"editable":    view.Editable(req, role),
		"actions":     view.Actions(req, role),
	}
}

// savePayload carries the editable form fields on save.
type savePayload struct {
	DeptTrackingNo string            `json:"deptTrackingNo"`
	Date           string            `json:"date"`
	Branch         string            `json:"branch"`
	Dept           string            `json:"dept"`
	RequestorName  string            `json:"requestorName"`
	VendorCode     string            `json:"vendorCode"`
	VendorDetails  string            `json:"vendorDetails"`
	LineItems      []models.LineItem `json:"lineItems"`
	EnteredBy      string            `json:"enteredBy"`
	EnteredDate    string            `json:"enteredDate"`
	SpoNo          string            `json:"spoNo"`
}

// SaveRequisition persists edits to a draft. Identity, status and
// approval slots are never writable through this endpoint.
func (h *Handler) SaveRequisition(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	req, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}

	if !view.Editable(req, actor.Role) {
		h.respondError(c, fmt.Errorf("%w: save as %s from %s",
			workflow.ErrInvalidTransition, actor.Role, req.Status))
		return
	}

	var payload savePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.DeptTrackingNo = payload.DeptTrackingNo
	req.Date = payload.Date
	req.Branch = payload.Branch
	req.Dept = payload.Dept
	req.RequestorName = payload.RequestorName
	req.VendorCode = payload.VendorCode
	req.VendorDetails = payload.VendorDetails
	req.EnteredBy = payload.EnteredBy
	req.EnteredDate = payload.EnteredDate
	req.SpoNo = payload.SpoNo
	if len(payload.LineItems) > 0 {
		req.LineItems = payload.LineItems
	}

	if err := req.ValidateItems(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.Apply(req, workflow.ActionSave, actor); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.store.Upsert(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.document(req, actor.Role))
}

// DeleteRequisition removes a draft. Submitted records cannot be deleted.
func (h *Handler) DeleteRequisition(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	req, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}

	if actor.Role != models.RoleRequestor || req.Status != models.StatusDraft {
		h.respondError(c, fmt.Errorf("%w: delete as %s from %s",
			workflow.ErrInvalidTransition, actor.Role, req.Status))
		return
	}

	if err := h.store.Delete(c.Request.Context(), req.ID); err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("Requisition deleted", zap.String("requisition_id", req.ID))
	c.Status(http.StatusNoContent)
}

// Submit moves a draft into the team leader's queue.
func (h *Handler) Submit(c *gin.Context) {
	h.transition(c, workflow.ActionSubmit)
}

// Approve advances a pending record one approval stage.
func (h *Handler) Approve(c *gin.Context) {
	h.transition(c, workflow.ActionApprove)
}

// Reject terminates a pending record.
func (h *Handler) Reject(c *gin.Context) {
	h.transition(c, workflow.ActionReject)
}

// transition runs a workflow action and persists the result.
func (h *Handler) transition(c *gin.Context, action workflow.Action) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	req, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}

	if err := h.engine.Apply(req, action, actor); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.store.Upsert(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	h.notify(c.Request.Context(), req)
	c.JSON(http.StatusOK, h.document(req, actor.Role))
}

// notify announces the record's new queue after a transition.
func (h *Handler) notify(ctx context.Context, req *models.Requisition) {
	switch req.Status {
	case models.StatusPendingTeamLeader:
		h.notifier.PendingApproval(ctx, req, models.RoleTeamLeader)
	case models.StatusPendingDirector:
		h.notifier.PendingApproval(ctx, req, models.RoleDirector)
	case models.StatusApproved, models.StatusRejected:
		h.notifier.Resolved(ctx, req)
	}
}

// AddItem appends an empty row to a draft's item table.
func (h *Handler) AddItem(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	req, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}

	if !view.Editable(req, actor.Role) {
		h.respondError(c, fmt.Errorf("%w: edit as %s from %s",
			workflow.ErrInvalidTransition, actor.Role, req.Status))
		return
	}

	item := req.AddItem(h.now())
	if err := h.store.Upsert(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item, "requisition": req})
}

// RemoveItem deletes a row from a draft's item table. The last remaining
// row cannot be removed.
func (h *Handler) RemoveItem(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	req, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}

	if !view.Editable(req, actor.Role) {
		h.respondError(c, fmt.Errorf("%w: edit as %s from %s",
			workflow.ErrInvalidTransition, actor.Role, req.Status))
		return
	}

	itemID := c.Param("itemID")
	if len(req.LineItems) <= 1 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cannot remove the last line item"})
		return
	}
	if !req.RemoveItem(itemID) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("line item %s not found", itemID)})
		return
	}

	if err := h.store.Upsert(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requisition": req})
}

// ExportExcel streams the paginated form as an xlsx workbook.
func (h *Handler) ExportExcel(c *gin.Context) {
	req, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}

	buf, err := h.excel.Render(req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	name := export.FileName(req.ID, req.SpoNo, "xlsx")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportPDF streams the paginated form as a PDF document.
func (h *Handler) ExportPDF(c *gin.Context) {
	req, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}

	data, err := h.pdf.Render(req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	name := export.FileName(req.ID, req.SpoNo, "pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", data)
}

// autofillRequest is the free-text autofill payload. When ID names a
// stored draft the result is merged into it; otherwise the draft is
// returned for the client to apply.
type autofillRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	ID     string `json:"id"`
}

// Autofill generates form data from a free-text purchase description.
func (h *Handler) Autofill(c *gin.Context) {
	if h.autofill == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "autofill is not configured"})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var payload autofillRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := h.autofill.Generate(c.Request.Context(), payload.Prompt)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "autofill failed"})
		return
	}

	h.finishAutofill(c, actor, payload.ID, draft)
}

// AutofillFromQuote generates form data from an uploaded vendor
// quotation (PDF or image).
func (h *Handler) AutofillFromQuote(c *gin.Context) {
	if h.quotes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "autofill is not configured"})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quotation file is required"})
		return
	}

	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("quote-%d%s", h.now().UnixNano(), filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, tmp); err != nil {
		h.respondError(c, err)
		return
	}
	defer os.Remove(tmp)

	draft, err := h.quotes.ReadAndExtract(c.Request.Context(), tmp)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "autofill failed"})
		return
	}

	h.finishAutofill(c, actor, c.PostForm("id"), draft)
}

// finishAutofill either returns the draft or merges it atomically into
// the named stored record.
func (h *Handler) finishAutofill(c *gin.Context, actor workflow.Actor, id string, draft *ai.Draft) {
	if id == "" {
		c.JSON(http.StatusOK, gin.H{"draft": draft})
		return
	}

	req, ok := h.load(c, id)
	if !ok {
		return
	}
	if !view.Editable(req, actor.Role) {
		h.respondError(c, fmt.Errorf("%w: edit as %s from %s",
			workflow.ErrInvalidTransition, actor.Role, req.Status))
		return
	}

	ai.Apply(req, draft, h.now())
	if err := h.store.Upsert(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.document(req, actor.Role))
}
