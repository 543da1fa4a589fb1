package interpreter_test

import (
	"testing"

	"github.com/legisfy/assessor-ia-go/internal/domain"
	"github.com/legisfy/assessor-ia-go/internal/interpreter"
)

func TestMatchManual_Ajuda(t *testing.T) {
	for _, text := range []string{"ajuda", "Ajuda", "AJUDA", "ajuda com comandos"} {
		a := interpreter.MatchManual(text)
		if a == nil || a.Kind != domain.AcaoObterAjuda {
			t.Errorf("%q: expected obter_ajuda, got %+v", text, a)
		}
	}

	// "ajudante" não é o comando ajuda
	if a := interpreter.MatchManual("ajudante novo"); a != nil {
		t.Errorf("expected no match for 'ajudante novo', got %+v", a)
	}
}

func TestMatchManual_Listagens(t *testing.T) {
	cases := []struct {
		text string
		tipo string
	}{
		{"meus eleitores", "eleitores"},
		{"Meus Eleitores por favor", "eleitores"},
		{"minhas demandas", "demandas"},
		{"minha demanda", "demandas"},
		{"minhas indicacoes", "indicacoes"},
		{"minhas indicações", "indicacoes"},
		{"minha indicacao", "indicacoes"},
		{"minhas ideias", "ideias"},
		{"minha ideia", "ideias"},
	}
	for _, tc := range cases {
		a := interpreter.MatchManual(tc.text)
		if a == nil || a.Kind != domain.AcaoListarItens {
			t.Fatalf("%q: expected listar_itens, got %+v", tc.text, a)
		}
		if a.Listagem == nil || a.Listagem.Tipo != tc.tipo {
			t.Errorf("%q: expected tipo %q, got %+v", tc.text, tc.tipo, a.Listagem)
		}
	}
}

func TestMatchManual_Status(t *testing.T) {
	a := interpreter.MatchManual("status demanda a1b2c3d4")
	if a == nil || a.Kind != domain.AcaoConsultarStatus {
		t.Fatalf("expected consultar_status, got %+v", a)
	}
	if a.Status.Tipo != "demanda" || a.Status.ID != "a1b2c3d4" {
		t.Errorf("unexpected params: %+v", a.Status)
	}
}

func TestMatchManual_StatusPoucostokens(t *testing.T) {
	// Com menos de três tokens o comando fica para o parser IA.
	if a := interpreter.MatchManual("status demanda"); a != nil {
		t.Errorf("expected no match, got %+v", a)
	}
}

func TestMatchManual_CadastrarEleitor(t *testing.T) {
	a := interpreter.MatchManual("cadastrar eleitor João Silva 11999999999")
	if a == nil || a.Kind != domain.AcaoCadastrarEleitor {
		t.Fatalf("expected cadastrar_eleitor, got %+v", a)
	}
	if a.Eleitor.Nome != "João Silva 11999999999" {
		t.Errorf("expected verbatim rest as nome, got %q", a.Eleitor.Nome)
	}
}

func TestMatchManual_CadastrarEleitorSemNome(t *testing.T) {
	a := interpreter.MatchManual("cadastrar eleitor")
	if a == nil || a.Kind != domain.AcaoCadastrarEleitor {
		t.Fatalf("expected cadastrar_eleitor, got %+v", a)
	}
	if a.Eleitor.Nome != "Eleitor" {
		t.Errorf("expected default nome 'Eleitor', got %q", a.Eleitor.Nome)
	}
}

func TestMatchManual_CriarIndicacaoComDescricao(t *testing.T) {
	for _, text := range []string{
		"criar indicacao Iluminação na praça - Melhorar a iluminação",
		"criar indicação Iluminação na praça – Melhorar a iluminação",
		"Criar Indicacao Iluminação na praça — Melhorar a iluminação",
	} {
		a := interpreter.MatchManual(text)
		if a == nil || a.Kind != domain.AcaoCriarIndicacao {
			t.Fatalf("%q: expected criar_indicacao, got %+v", text, a)
		}
		if a.Item.Titulo != "Iluminação na praça" {
			t.Errorf("%q: unexpected titulo %q", text, a.Item.Titulo)
		}
		if a.Item.Descricao != "Melhorar a iluminação" {
			t.Errorf("%q: unexpected descricao %q", text, a.Item.Descricao)
		}
	}
}

func TestMatchManual_RegistrarDemandaSemDescricao(t *testing.T) {
	a := interpreter.MatchManual("registrar demanda Buraco na rua 7")
	if a == nil || a.Kind != domain.AcaoRegistrarDemanda {
		t.Fatalf("expected registrar_demanda, got %+v", a)
	}
	if a.Item.Titulo != "Buraco na rua 7" || a.Item.Descricao != "" {
		t.Errorf("unexpected params: %+v", a.Item)
	}
}

func TestMatchManual_TituloVazioCaiParaIA(t *testing.T) {
	// Prefixo casa mas o título fica vazio: regra não conclui, parser IA decide.
	for _, text := range []string{"registrar demanda", "criar indicacao - só descrição", "cadastrar ideia"} {
		if a := interpreter.MatchManual(text); a != nil {
			t.Errorf("%q: expected no match, got %+v", text, a)
		}
	}
}

func TestMatchManual_CadastrarIdeia(t *testing.T) {
	a := interpreter.MatchManual("cadastrar ideia App de ouvidoria - coletar sugestões")
	if a == nil || a.Kind != domain.AcaoCadastrarIdeia {
		t.Fatalf("expected cadastrar_ideia, got %+v", a)
	}
	if a.Item.Titulo != "App de ouvidoria" {
		t.Errorf("unexpected titulo %q", a.Item.Titulo)
	}
}

func TestMatchManual_TextoLivre(t *testing.T) {
	for _, text := range []string{"bom dia", "como você está?", "", "   "} {
		if a := interpreter.MatchManual(text); a != nil {
			t.Errorf("%q: expected no match, got %+v", text, a)
		}
	}
}
