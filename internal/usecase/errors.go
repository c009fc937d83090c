package usecase

// DomainError é desfecho de regra de negócio: a entrada não passou numa
// pré-condição ou validação. A borda HTTP devolve 422 com o código legível.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError é falha de infraestrutura (banco, fila, SMTP): o pedido
// era válido mas não pôde ser atendido agora. Vira 500 na borda HTTP e
// carrega a causa original para o log.
type TechnicalError struct {
	Code    string
	Message string
	Cause   error
}

func (e *TechnicalError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Cause
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

// technical envelopa um erro de repositório/infra no código dado.
func technical(code, message string, cause error) *TechnicalError {
	return &TechnicalError{Code: code, Message: message, Cause: cause}
}
