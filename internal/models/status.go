package models

const (
	StatusEmAberto    = "Em aberto"
	StatusConfirmado  = "Confirmado"
	StatusEmAprovacao = "Em aprovação"
	StatusFinalizado  = "Finalizado"
)

// StatusOptions lists every valid demanda status in workflow order.
var StatusOptions = []string{StatusEmAberto, StatusConfirmado, StatusEmAprovacao, StatusFinalizado}

// ValidStatus reports whether s is one of StatusOptions.
func ValidStatus(s string) bool {
	for _, opt := range StatusOptions {
		if s == opt {
			return true
		}
	}
	return false
}

// Transitions maps a status to the statuses it may move to.
type Transitions map[string][]string

// AnyToAny is the default flat workflow: every status reaches every other.
var AnyToAny = func() Transitions {
	t := make(Transitions, len(StatusOptions))
	for _, from := range StatusOptions {
		t[from] = StatusOptions
	}
	return t
}()

// Allows reports whether moving from one status to another is permitted.
func (t Transitions) Allows(from, to string) bool {
	if !ValidStatus(to) {
		return false
	}
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}
