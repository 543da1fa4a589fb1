package service

import "github.com/legisfy/assessor-ia-go/internal/domain"

// Gate determinístico de permissão por cargo. Roda no dispatcher, antes de
// qualquer handler — o que o modelo disse sobre permissão é só consultivo.

var (
	// cargosGestao podem operar eleitores, indicações e demandas.
	cargosGestao = map[domain.Role]bool{
		domain.RolePolitico:      true,
		domain.RoleChefeGabinete: true,
		domain.RoleAssessor:      true,
	}

	// cargosIdeias inclui atendentes: ideias são o canal de captura interna.
	cargosIdeias = map[domain.Role]bool{
		domain.RolePolitico:      true,
		domain.RoleChefeGabinete: true,
		domain.RoleAssessor:      true,
		domain.RoleAtendente:     true,
	}
)

// Allowed reporta se o cargo pode executar a ação. Ajuda, chat e as
// sentinelas são sempre permitidas — são mensagens, não efeitos.
func Allowed(a *domain.Action, role domain.Role) bool {
	switch a.Kind {
	case domain.AcaoObterAjuda, domain.AcaoChat,
		domain.AcaoSemPermissao, domain.AcaoEsclarecer,
		domain.AcaoDadosFaltantes, domain.AcaoDesconhecida:
		return true

	case domain.AcaoCadastrarIdeia:
		return cargosIdeias[role]

	case domain.AcaoListarItens:
		if a.Listagem != nil {
			if t, ok := domain.ParseTipoListagem(a.Listagem.Tipo); ok && t == domain.TipoIdeias {
				return cargosIdeias[role]
			}
		}
		return cargosGestao[role]

	case domain.AcaoConsultarStatus:
		if a.Status != nil {
			if t, ok := domain.ParseTipoConsulta(a.Status.Tipo); ok && t == domain.TipoIdeias {
				return cargosIdeias[role]
			}
		}
		return cargosGestao[role]
	}

	return cargosGestao[role]
}
