package widget

// Department tags the backend is known to return. The set is open: the
// backend may introduce new tags at any time and the widget accepts them,
// they simply map to no form.
const (
	DepartmentGeneral     = "geral"
	DepartmentSales       = "vendas"
	DepartmentSupport     = "suporte"
	DepartmentFinance     = "financeiro"
	DepartmentDebtConsult = "financeiro_consulta"
	DepartmentBoleto      = "financeiro_boleto"
)

// FormMode says which auxiliary form, if any, the widget shows. At most one
// is ever active.
type FormMode string

const (
	FormNone        FormMode = "none"
	FormDebtConsult FormMode = "debt_consult"
	FormBoleto      FormMode = "boleto_generate"
)

// FormModeFor derives the visible form from a department tag. Pure mapping:
// the previous mode never influences the result.
func FormModeFor(department string) FormMode {
	switch department {
	case DepartmentDebtConsult:
		return FormDebtConsult
	case DepartmentBoleto:
		return FormBoleto
	default:
		return FormNone
	}
}
