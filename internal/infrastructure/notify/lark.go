// Package notify delivers "submission entered state X" alerts. Delivery is
// best-effort: the workflow transition has already been committed by the time
// a notifier runs, and a failed send is reported, never retried here.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/plantdocs/formflow/internal/application/port"
	"github.com/plantdocs/formflow/internal/domain/event"
)

// LarkConfig holds Lark messenger configuration
type LarkConfig struct {
	AppID     string
	AppSecret string
	// ChatIDs maps a department to the Lark group chat that should be told
	// about its submissions. Empty department key is the fallback chat.
	ChatIDs map[string]string
}

// LarkNotifier implements port.Notifier via Lark group messages
type LarkNotifier struct {
	client  *lark.Client
	chatIDs map[string]string
	logger  *zap.Logger
}

// NewLarkNotifier creates a Lark-backed notifier
func NewLarkNotifier(cfg LarkConfig, logger *zap.Logger) *LarkNotifier {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &LarkNotifier{
		client:  client,
		chatIDs: cfg.ChatIDs,
		logger:  logger,
	}
}

// NotifyStatusChange sends one text message to the department's chat
func (n *LarkNotifier) NotifyStatusChange(ctx context.Context, evt *event.TransitionEvent) error {
	chatID := n.chatIDs[evt.Department]
	if chatID == "" {
		chatID = n.chatIDs[""]
	}
	if chatID == "" {
		n.logger.Info("No chat configured for department, skipping notification",
			zap.String("department", evt.Department),
			zap.String("submission_id", evt.SubmissionID))
		return nil
	}

	text := fmt.Sprintf("Submission %s moved %s -> %s (%s by %s)",
		evt.SubmissionID, evt.FromStatus, evt.ToStatus, evt.Action, evt.ActorID)
	if evt.Comment != "" {
		text += ": " + evt.Comment
	}

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("chat_id").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("chat_id", chatID),
			zap.String("submission_id", evt.SubmissionID),
			zap.Error(err))
		return fmt.Errorf("send notification: %w", err)
	}

	if !resp.Success() {
		n.logger.Error("Lark API returned failure",
			zap.String("chat_id", chatID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("lark API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	n.logger.Info("Notification sent",
		zap.String("chat_id", chatID),
		zap.String("submission_id", evt.SubmissionID),
		zap.String("to_status", evt.ToStatus.String()))

	return nil
}

// Verify interface compliance
var _ port.Notifier = (*LarkNotifier)(nil)
