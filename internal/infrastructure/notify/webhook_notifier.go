// Package notify implementa el despacho best-effort de avisos a responsables.
// Un fallo aquí nunca debe revertir la operación principal: el caller lo
// registra y sigue.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cannaledger/cannaledger-api/internal/application/losstheft"
	"github.com/cannaledger/cannaledger-api/pkg/logger"
)

var _ losstheft.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier publica el aviso como JSON en un endpoint configurado
// (integración con el sistema de mensajería externo). Sin URL configurada
// degrada a solo-log, útil en desarrollo.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    *logger.Logger
}

// NewWebhookNotifier construye el notificador. timeout acota cada despacho.
func NewWebhookNotifier(url string, timeout time.Duration, log *logger.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

type webhookBody struct {
	UserIDs []string                      `json:"user_ids"`
	Payload losstheft.NotificationPayload `json:"payload"`
}

// Notify envía el aviso a los usuarios indicados.
func (n *WebhookNotifier) Notify(ctx context.Context, userIDs []string, payload losstheft.NotificationPayload) error {
	if n.url == "" {
		n.log.Info().
			Strs("user_ids", userIDs).
			Str("report_number", payload.ReportNumber).
			Msg("notificación (sin webhook configurado, solo log)")
		return nil
	}
	body, err := json.Marshal(webhookBody{UserIDs: userIDs, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("dispatch notification: status %d", resp.StatusCode)
	}
	return nil
}
