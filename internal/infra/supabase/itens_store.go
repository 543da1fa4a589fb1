package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/legisfy/assessor-ia-go/internal/domain"
	"github.com/legisfy/assessor-ia-go/internal/infra/resilience"
)

// ============================================================
// Itens store — indicações, demandas e ideias
// implements port.ItemStore
// ============================================================

func tableFor(tipo domain.TipoItem) string {
	switch tipo {
	case domain.TipoEleitores:
		return "eleitores_whatsapp"
	case domain.TipoDemandas:
		return "demandas_whatsapp"
	case domain.TipoIndicacoes:
		return "indicacoes_whatsapp"
	case domain.TipoIdeias:
		return "ideias_whatsapp"
	}
	return ""
}

// CreateIndicacao inserts an indicação with initial status CRIADA.
func (c *Client) CreateIndicacao(ctx context.Context, gabineteID string, p *domain.ItemParams) (*domain.Indicacao, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateIndicacao")
	defer span.End()

	data := map[string]any{
		"gabinete_id": gabineteID,
		"titulo":      strings.TrimSpace(p.Titulo),
		"descricao":   nullableString(p.Descricao),
		"status":      domain.StatusIndicacaoCriada,
	}

	body, err := c.doPost(ctx, "indicacoes_whatsapp", data)
	if err != nil {
		return nil, err
	}

	row, err := decodeSingle[domain.Indicacao](body)
	if err != nil {
		return nil, fmt.Errorf("decode indicacao: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("supabase returned empty representation for indicacao insert")
	}
	return row, nil
}

// CreateDemanda inserts a demanda with initial status ABERTA.
func (c *Client) CreateDemanda(ctx context.Context, gabineteID string, p *domain.ItemParams) (*domain.Demanda, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateDemanda")
	defer span.End()

	anexos := p.Anexos
	if anexos == nil {
		anexos = []string{}
	}

	data := map[string]any{
		"gabinete_id": gabineteID,
		"titulo":      strings.TrimSpace(p.Titulo),
		"descricao":   nullableString(p.Descricao),
		"status":      domain.StatusDemandaAberta,
		"anexos":      anexos,
	}

	body, err := c.doPost(ctx, "demandas_whatsapp", data)
	if err != nil {
		return nil, err
	}

	row, err := decodeSingle[domain.Demanda](body)
	if err != nil {
		return nil, fmt.Errorf("decode demanda: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("supabase returned empty representation for demanda insert")
	}
	return row, nil
}

// CreateIdeia inserts an ideia tagged with the whatsapp origin.
func (c *Client) CreateIdeia(ctx context.Context, gabineteID string, p *domain.ItemParams) (*domain.Ideia, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateIdeia")
	defer span.End()

	anexos := p.Anexos
	if anexos == nil {
		anexos = []string{}
	}

	data := map[string]any{
		"gabinete_id": gabineteID,
		"titulo":      strings.TrimSpace(p.Titulo),
		"descricao":   nullableString(p.Descricao),
		"origem":      domain.OrigemWhatsApp,
		"anexos":      anexos,
	}

	body, err := c.doPost(ctx, "ideias_whatsapp", data)
	if err != nil {
		return nil, err
	}

	row, err := decodeSingle[domain.Ideia](body)
	if err != nil {
		return nil, fmt.Errorf("decode ideia: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("supabase returned empty representation for ideia insert")
	}
	return row, nil
}

// FindItemByIDPrefix resolves a full id or a short prefix (the 8-char
// fragment shown in creation replies) inside the gabinete. The id token is
// user-supplied, so it is escaped before entering the query string.
func (c *Client) FindItemByIDPrefix(ctx context.Context, gabineteID string, tipo domain.TipoItem, idPrefix string) (*domain.ItemResumo, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FindItemByIDPrefix")
	defer span.End()

	table := tableFor(tipo)
	if table == "" {
		return nil, &domain.ErrValidation{Field: "tipo", Message: "tipo de item desconhecido"}
	}

	id := url.QueryEscape(idPrefix)
	var item *domain.ItemResumo

	// An empty result set is a definitive answer, not a transient
	// failure, so it must not trigger the retry loop.
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf(
				"%s?select=*&gabinete_id=eq.%s&or=(id.eq.%s,id.ilike.%s*)&order=created_at.desc&limit=1",
				table, gabineteID, id, id,
			)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			item, err = decodeSingle[domain.ItemResumo](body)
			return err
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/" + table, Err: err}
	}
	if item == nil {
		return nil, &domain.ErrNotFound{Resource: string(tipo), ID: idPrefix}
	}
	return item, nil
}

// ListItens returns at most limit rows, newest first.
func (c *Client) ListItens(ctx context.Context, gabineteID string, tipo domain.TipoItem, limit int) ([]domain.ItemResumo, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListItens")
	defer span.End()

	table := tableFor(tipo)
	if table == "" {
		return nil, &domain.ErrValidation{Field: "tipo", Message: "tipo de item desconhecido"}
	}

	var itens []domain.ItemResumo

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf(
				"%s?select=*&gabinete_id=eq.%s&order=created_at.desc&limit=%d",
				table, gabineteID, limit,
			)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}
			if body == nil {
				itens = []domain.ItemResumo{}
				return nil
			}
			return json.Unmarshal(body, &itens)
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/" + table, Err: err}
	}
	return itens, nil
}
