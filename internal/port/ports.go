// Package port define as interfaces (ports) dos colaboradores externos.
// Os services dependem destas interfaces, nunca dos clients concretos —
// os testes substituem tudo por fakes sem estado global.
package port

import (
	"context"

	"github.com/legisfy/assessor-ia-go/internal/domain"
)

// ChatCompleter envia um par system/user prompt ao modelo de linguagem e
// devolve o conteúdo bruto da primeira escolha. O client concreto
// (openrouter.Client) implementa essa interface.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// EleitorStore persiste eleitores do gabinete.
type EleitorStore interface {
	CreateEleitor(ctx context.Context, gabineteID string, p *domain.EleitorParams) (*domain.Eleitor, error)
}

// ItemStore persiste e consulta indicações, demandas e ideias.
// Todas as operações são escopadas pelo gabineteID passado explicitamente —
// isolamento entre gabinetes é invariante do store, não do chamador.
type ItemStore interface {
	CreateIndicacao(ctx context.Context, gabineteID string, p *domain.ItemParams) (*domain.Indicacao, error)
	CreateDemanda(ctx context.Context, gabineteID string, p *domain.ItemParams) (*domain.Demanda, error)
	CreateIdeia(ctx context.Context, gabineteID string, p *domain.ItemParams) (*domain.Ideia, error)

	// FindItemByIDPrefix resolve um id completo ou um prefixo curto dentro
	// do gabinete. Zero linhas → domain.ErrNotFound.
	FindItemByIDPrefix(ctx context.Context, gabineteID string, tipo domain.TipoItem, idPrefix string) (*domain.ItemResumo, error)

	// ListItens retorna no máximo limit itens, mais recentes primeiro.
	ListItens(ctx context.Context, gabineteID string, tipo domain.TipoItem, limit int) ([]domain.ItemResumo, error)
}

// IntegrationStore lê a configuração de integração externa do gabinete.
// Ausência de linha não é erro: retorna nil.
type IntegrationStore interface {
	GetIntegration(ctx context.Context, gabineteID string) (*domain.Integration, error)
}

// AuditStore grava o trilho append-only de auditoria.
type AuditStore interface {
	AppendAudit(ctx context.Context, entry *domain.AuditEntry) error
}
