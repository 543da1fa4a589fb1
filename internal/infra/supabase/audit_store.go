package supabase

import (
	"context"

	"github.com/google/uuid"

	"github.com/legisfy/assessor-ia-go/internal/domain"
)

// ============================================================
// Audit store — implements port.AuditStore
// ============================================================

// AppendAudit records one executed action in audit_log_whatsapp.
// No retry here: the write is best-effort and the caller already treats a
// failure as non-fatal.
func (c *Client) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, span := tracer.Start(ctx, "Supabase.AppendAudit")
	defer span.End()

	data := map[string]any{
		"id":               uuid.New().String(),
		"usuario_id":       entry.UsuarioID,
		"gabinete_id":      entry.GabineteID,
		"acao":             entry.Acao,
		"payload_resumido": entry.Payload,
	}

	_, err := c.doPost(ctx, "audit_log_whatsapp", data)
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/audit_log_whatsapp", Err: err}
	}
	return nil
}
