package service

import (
	"context"

	"github.com/legisfy/assessor-ia-go/internal/domain"
	"github.com/legisfy/assessor-ia-go/internal/infra/observability"
	"github.com/legisfy/assessor-ia-go/internal/port"

	"go.uber.org/zap"
)

// Auditor grava o trilho append-only de ações executadas. A escrita é
// best-effort: falha vira log + contador, nunca falha a resposta do usuário.
type Auditor struct {
	store   port.AuditStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAuditor cria o auditor com dependências injetadas.
func NewAuditor(store port.AuditStore, metrics *observability.Metrics, logger *zap.Logger) *Auditor {
	return &Auditor{store: store, metrics: metrics, logger: logger}
}

// Record grava uma entrada de auditoria. Nunca retorna erro.
func (a *Auditor) Record(ctx context.Context, entry *domain.AuditEntry) {
	if err := a.store.AppendAudit(ctx, entry); err != nil {
		a.metrics.IncrAuditFailure()
		a.logger.Error("auditoria: falha ao gravar entrada",
			zap.String("acao", entry.Acao),
			zap.String("gabinete_id", entry.GabineteID),
			zap.Error(err),
		)
	}
}
