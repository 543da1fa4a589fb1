package interpreter

import (
	"encoding/json"
	"strings"

	"github.com/legisfy/assessor-ia-go/internal/domain"
)

// rawDescriptor é o formato solto {action, parameters} que chega do modelo
// (ou do caminho direto da API). Só existe aqui; depois da normalização o
// resto do pipeline trabalha com o enum fechado.
type rawDescriptor struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

// Normalize converte um par ação/parâmetros em um domain.Action tipado.
// Coerção acontece uma única vez, aqui: handlers nunca revalidam formatos
// de campo. Nome de ação desconhecido vira AcaoDesconhecida — caso tratado
// do enum, não default de runtime.
func Normalize(action string, params map[string]any) *domain.Action {
	switch domain.ActionKind(strings.TrimSpace(action)) {
	case domain.AcaoCadastrarEleitor:
		return &domain.Action{
			Kind: domain.AcaoCadastrarEleitor,
			Eleitor: &domain.EleitorParams{
				Nome:     getString(params, "nome"),
				Telefone: getString(params, "telefone"),
				Endereco: getString(params, "endereco"),
				Tags:     getStringSlice(params, "tags"),
			},
		}
	case domain.AcaoCriarIndicacao:
		return &domain.Action{Kind: domain.AcaoCriarIndicacao, Item: itemParams(params)}
	case domain.AcaoRegistrarDemanda:
		return &domain.Action{Kind: domain.AcaoRegistrarDemanda, Item: itemParams(params)}
	case domain.AcaoCadastrarIdeia:
		return &domain.Action{Kind: domain.AcaoCadastrarIdeia, Item: itemParams(params)}
	case domain.AcaoConsultarStatus:
		return &domain.Action{
			Kind:   domain.AcaoConsultarStatus,
			Status: &domain.StatusParams{Tipo: getString(params, "tipo"), ID: getString(params, "id")},
		}
	case domain.AcaoListarItens:
		return &domain.Action{
			Kind:     domain.AcaoListarItens,
			Listagem: &domain.ListarParams{Tipo: getString(params, "tipo")},
		}
	case domain.AcaoConsultarEmail:
		return &domain.Action{Kind: domain.AcaoConsultarEmail}
	case domain.AcaoConsultarAgenda:
		return &domain.Action{Kind: domain.AcaoConsultarAgenda}
	case domain.AcaoObterAjuda:
		return &domain.Action{Kind: domain.AcaoObterAjuda}
	case domain.AcaoChat:
		return &domain.Action{
			Kind: domain.AcaoChat,
			Chat: &domain.ChatParams{Text: getString(params, "text")},
		}
	case domain.AcaoSemPermissao:
		return &domain.Action{Kind: domain.AcaoSemPermissao}
	case domain.AcaoEsclarecer:
		return &domain.Action{
			Kind:       domain.AcaoEsclarecer,
			Esclarecer: &domain.EsclarecerParams{Opcoes: getStringSlice(params, "opcoes")},
		}
	case domain.AcaoDadosFaltantes:
		return &domain.Action{
			Kind:           domain.AcaoDadosFaltantes,
			DadosFaltantes: &domain.DadosFaltantesParams{Campos: getStringSlice(params, "campos_necessarios")},
		}
	}
	return &domain.Action{Kind: domain.AcaoDesconhecida}
}

func itemParams(params map[string]any) *domain.ItemParams {
	return &domain.ItemParams{
		Titulo:    getString(params, "titulo"),
		Descricao: getString(params, "descricao"),
		Anexos:    getStringSlice(params, "anexos"),
	}
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// getStringSlice aceita tanto um array JSON quanto uma string contendo um
// array JSON — o modelo às vezes serializa tags/anexos como texto.
func getStringSlice(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err == nil {
			return out
		}
		if v != "" {
			return []string{v}
		}
	}
	return nil
}
