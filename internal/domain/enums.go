package domain

// EvaluationStatus tracks the lifecycle of a pipeline run.
type EvaluationStatus string

const (
	EvaluationStatusCompleted EvaluationStatus = "completed"
	EvaluationStatusFailed    EvaluationStatus = "failed"
)

// DocumentType identifies the form schema expected on a scanned document.
type DocumentType string

const (
	DocumentTypeCustomerInfoSheet DocumentType = "customer_information_sheet"
	DocumentTypeDepositSlipFront  DocumentType = "deposit_slip_front"
	DocumentTypeDepositSlipBack   DocumentType = "deposit_slip_back"
	DocumentTypeWithdrawalFront   DocumentType = "withdrawal_slip_front"
	DocumentTypeWithdrawalBack    DocumentType = "withdrawal_slip_back"
	DocumentTypeUnknown           DocumentType = "unknown"
)

// Valid reports whether t is one of the recognized document types.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeCustomerInfoSheet,
		DocumentTypeDepositSlipFront,
		DocumentTypeDepositSlipBack,
		DocumentTypeWithdrawalFront,
		DocumentTypeWithdrawalBack,
		DocumentTypeUnknown:
		return true
	}
	return false
}

// OCRProviderName identifies a configured OCR/extraction provider.
type OCRProviderName string

const (
	ProviderGemini OCRProviderName = "gemini"
	ProviderOpenAI OCRProviderName = "openai"
)
