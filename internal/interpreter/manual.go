// Package interpreter transforma texto livre do WhatsApp em domain.Action.
//
// Dois reconhecedores, em ordem:
//
//  1. MatchManual — regras de prefixo determinísticas para as frases mais
//     comuns ("cadastrar eleitor ...", "status demanda abc123", "ajuda").
//     Sem rede, custo constante, resultado previsível.
//  2. AIParser — fallback via modelo de linguagem quando nenhuma regra casa.
//
// A ordem das regras importa: várias compartilham prefixo ("minhas
// demandas" precisa vir antes de qualquer regra genérica) e a primeira que
// casar ganha.
package interpreter

import (
	"strings"
	"unicode/utf8"

	"github.com/legisfy/assessor-ia-go/internal/domain"
)

// MatchManual aplica as regras de comando na ordem fixa e retorna o Action
// resolvido, ou nil quando nenhuma regra casa (o chamador cai para o parser
// IA — não é erro). Comparação de prefixo é case-insensitive; a extração de
// parâmetros preserva o texto original.
func MatchManual(userText string) *domain.Action {
	text := strings.TrimSpace(userText)
	lower := strings.ToLower(text)

	if lower == "ajuda" || strings.HasPrefix(lower, "ajuda ") {
		return &domain.Action{Kind: domain.AcaoObterAjuda}
	}

	if strings.HasPrefix(lower, "meus eleitores") || strings.HasPrefix(lower, "meus eleitor") {
		return listarAction(domain.TipoEleitores)
	}
	if strings.HasPrefix(lower, "minhas demandas") || strings.HasPrefix(lower, "minha demanda") {
		return listarAction(domain.TipoDemandas)
	}
	if strings.HasPrefix(lower, "minhas indicacoes") || strings.HasPrefix(lower, "minhas indicações") || strings.HasPrefix(lower, "minha indicacao") {
		return listarAction(domain.TipoIndicacoes)
	}
	if strings.HasPrefix(lower, "minhas ideias") || strings.HasPrefix(lower, "minha ideia") {
		return listarAction(domain.TipoIdeias)
	}

	if strings.HasPrefix(lower, "status ") {
		// "status <tipo> <id>" — com menos de três tokens deixa o parser IA
		// tentar entender, em vez de falhar aqui.
		parts := strings.Fields(text)
		if len(parts) >= 3 {
			return &domain.Action{
				Kind:   domain.AcaoConsultarStatus,
				Status: &domain.StatusParams{Tipo: parts[1], ID: parts[2]},
			}
		}
	}

	if rest, ok := cutPrefixFold(text, lower, "cadastrar eleitor"); ok {
		// Caminho rápido: o resto da mensagem inteiro vira o nome, sem
		// extração de telefone/endereço — o parser IA cobre o caso rico.
		nome := rest
		if nome == "" {
			nome = "Eleitor"
		}
		return &domain.Action{
			Kind:    domain.AcaoCadastrarEleitor,
			Eleitor: &domain.EleitorParams{Nome: nome},
		}
	}

	if rest, ok := cutPrefixAny(text, lower, "criar indicacao", "criar indicação"); ok {
		if item := splitTituloDescricao(rest); item != nil {
			return &domain.Action{Kind: domain.AcaoCriarIndicacao, Item: item}
		}
	}

	if rest, ok := cutPrefixFold(text, lower, "registrar demanda"); ok {
		if item := splitTituloDescricao(rest); item != nil {
			return &domain.Action{Kind: domain.AcaoRegistrarDemanda, Item: item}
		}
	}

	if rest, ok := cutPrefixFold(text, lower, "cadastrar ideia"); ok {
		if item := splitTituloDescricao(rest); item != nil {
			return &domain.Action{Kind: domain.AcaoCadastrarIdeia, Item: item}
		}
	}

	return nil
}

func listarAction(tipo domain.TipoItem) *domain.Action {
	return &domain.Action{
		Kind:     domain.AcaoListarItens,
		Listagem: &domain.ListarParams{Tipo: string(tipo)},
	}
}

// cutPrefixFold corta prefix (já minúsculo) do início de text, comparando
// contra lower. Retorna o resto do texto original, trimado.
func cutPrefixFold(text, lower, prefix string) (string, bool) {
	if !strings.HasPrefix(lower, prefix) {
		return "", false
	}
	return strings.TrimSpace(text[len(prefix):]), true
}

func cutPrefixAny(text, lower string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := cutPrefixFold(text, lower, p); ok {
			return rest, true
		}
	}
	return "", false
}

// splitTituloDescricao divide o resto da mensagem no primeiro traço
// (hífen, en dash ou em dash) em título/descrição. Título vazio após trim
// significa "sem match" — o comando cai para o parser IA em vez de criar
// registro sem título.
func splitTituloDescricao(rest string) *domain.ItemParams {
	titulo := rest
	descricao := ""
	if idx := strings.IndexAny(rest, "-–—"); idx >= 0 {
		titulo = rest[:idx]
		// O traço pode ser multi-byte (en/em dash); avança o rune inteiro.
		_, size := utf8.DecodeRuneInString(rest[idx:])
		descricao = strings.TrimSpace(rest[idx+size:])
	}
	titulo = strings.TrimSpace(titulo)
	if titulo == "" {
		return nil
	}
	return &domain.ItemParams{Titulo: titulo, Descricao: descricao}
}
