package notification

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/quantumglobal/requisition/internal/models"
	"go.uber.org/zap"
)

// Config holds Lark messaging configuration. Contacts maps a workflow
// role to the open_id that receives that role's queue notifications.
type Config struct {
	AppID     string
	AppSecret string
	Contacts  map[models.Role]string
}

// LarkNotifier sends requisition queue updates over Lark IM.
type LarkNotifier struct {
	client   *lark.Client
	contacts map[models.Role]string
	logger   *zap.Logger
}

// NewLarkNotifier creates a Lark-backed notifier.
func NewLarkNotifier(cfg Config, logger *zap.Logger) *LarkNotifier {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &LarkNotifier{
		client:   client,
		contacts: cfg.Contacts,
		logger:   logger,
	}
}

// PendingApproval messages the approver whose queue the requisition
// just entered.
func (n *LarkNotifier) PendingApproval(ctx context.Context, req *models.Requisition, role models.Role) {
	text := fmt.Sprintf("Requisition %s (total RM %.2f) is awaiting your approval.",
		req.ID, req.TotalAmount())
	n.send(ctx, role, text, req.ID)
}

// Resolved messages the requestor contact with the final outcome.
func (n *LarkNotifier) Resolved(ctx context.Context, req *models.Requisition) {
	text := fmt.Sprintf("Requisition %s has been %s.", req.ID, req.Status)
	n.send(ctx, models.RoleRequestor, text, req.ID)
}

// send delivers a text message to the role's contact, logging failures.
func (n *LarkNotifier) send(ctx context.Context, role models.Role, text, reqID string) {
	openID, ok := n.contacts[role]
	if !ok || openID == "" {
		n.logger.Debug("No contact configured for role", zap.String("role", role.String()))
		return
	}

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		n.logger.Error("Failed to build message content", zap.Error(err))
		return
	}

	msgReq := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("open_id").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(openID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, msgReq)
	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("requisition_id", reqID),
			zap.String("role", role.String()),
			zap.Error(err))
		return
	}
	if !resp.Success() {
		n.logger.Error("Notification API returned failure",
			zap.String("requisition_id", reqID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return
	}

	n.logger.Info("Notification sent",
		zap.String("requisition_id", reqID),
		zap.String("role", role.String()))
}
