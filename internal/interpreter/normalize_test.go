package interpreter_test

import (
	"testing"

	"github.com/legisfy/assessor-ia-go/internal/domain"
	"github.com/legisfy/assessor-ia-go/internal/interpreter"
)

func TestNormalize_CadastrarEleitor(t *testing.T) {
	a := interpreter.Normalize("cadastrar_eleitor", map[string]any{
		"nome":     "  Maria Souza ",
		"telefone": "11988887777",
		"endereco": "Rua A, 10",
		"tags":     []any{"bairro-centro", "liderança"},
	})
	if a.Kind != domain.AcaoCadastrarEleitor {
		t.Fatalf("expected cadastrar_eleitor, got %s", a.Kind)
	}
	if a.Eleitor.Nome != "Maria Souza" {
		t.Errorf("expected trimmed nome, got %q", a.Eleitor.Nome)
	}
	if len(a.Eleitor.Tags) != 2 || a.Eleitor.Tags[1] != "liderança" {
		t.Errorf("unexpected tags: %v", a.Eleitor.Tags)
	}
}

func TestNormalize_TagsComoStringJSON(t *testing.T) {
	// O modelo às vezes devolve o array serializado como string.
	a := interpreter.Normalize("cadastrar_eleitor", map[string]any{
		"nome": "José",
		"tags": `["apoiador","zona-sul"]`,
	})
	if len(a.Eleitor.Tags) != 2 || a.Eleitor.Tags[0] != "apoiador" {
		t.Errorf("expected decoded tags, got %v", a.Eleitor.Tags)
	}
}

func TestNormalize_TagStringSimples(t *testing.T) {
	a := interpreter.Normalize("cadastrar_eleitor", map[string]any{
		"nome": "José",
		"tags": "apoiador",
	})
	if len(a.Eleitor.Tags) != 1 || a.Eleitor.Tags[0] != "apoiador" {
		t.Errorf("expected single-element tags, got %v", a.Eleitor.Tags)
	}
}

func TestNormalize_RegistrarDemandaComAnexos(t *testing.T) {
	a := interpreter.Normalize("registrar_demanda", map[string]any{
		"titulo":    "Poda de árvore",
		"descricao": "Praça central",
		"anexos":    []any{"foto1.jpg"},
	})
	if a.Kind != domain.AcaoRegistrarDemanda {
		t.Fatalf("expected registrar_demanda, got %s", a.Kind)
	}
	if a.Item.Titulo != "Poda de árvore" || len(a.Item.Anexos) != 1 {
		t.Errorf("unexpected item: %+v", a.Item)
	}
}

func TestNormalize_ConsultarStatus(t *testing.T) {
	a := interpreter.Normalize("consultar_status", map[string]any{"tipo": "demanda", "id": "a1b2"})
	if a.Kind != domain.AcaoConsultarStatus || a.Status.Tipo != "demanda" || a.Status.ID != "a1b2" {
		t.Errorf("unexpected action: %+v", a)
	}
}

func TestNormalize_Sentinelas(t *testing.T) {
	a := interpreter.Normalize("sem_permissao", nil)
	if a.Kind != domain.AcaoSemPermissao {
		t.Errorf("expected sem_permissao, got %s", a.Kind)
	}

	a = interpreter.Normalize("esclarecer", map[string]any{"opcoes": []any{"criar indicação", "registrar demanda"}})
	if a.Kind != domain.AcaoEsclarecer || len(a.Esclarecer.Opcoes) != 2 {
		t.Errorf("unexpected esclarecer: %+v", a)
	}

	a = interpreter.Normalize("dados_faltantes", map[string]any{"campos_necessarios": []any{"título da demanda"}})
	if a.Kind != domain.AcaoDadosFaltantes || len(a.DadosFaltantes.Campos) != 1 {
		t.Errorf("unexpected dados_faltantes: %+v", a)
	}
}

func TestNormalize_AcaoDesconhecida(t *testing.T) {
	for _, name := range []string{"deletar_tudo", "", "Cadastrar_Eleitor "} {
		a := interpreter.Normalize(name, nil)
		if a.Kind != domain.AcaoDesconhecida {
			t.Errorf("%q: expected desconhecida, got %s", name, a.Kind)
		}
	}
}

func TestNormalize_Chat(t *testing.T) {
	a := interpreter.Normalize("chat", map[string]any{"text": "Bom dia! Como posso ajudar?"})
	if a.Kind != domain.AcaoChat || a.Chat.Text != "Bom dia! Como posso ajudar?" {
		t.Errorf("unexpected chat: %+v", a)
	}
}
