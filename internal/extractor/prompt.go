package extractor

import (
	"strings"

	"scanscore/internal/domain"
)

// OCRPrompt is the instruction sent with the image payload.
const OCRPrompt = "Extract all visible printed and handwritten text from this scanned bank document image."

// Schema examples shown to the extraction model, one per supported form.
// Blank fields must come back as null so the flattener sees every path.
var schemaExamples = map[domain.DocumentType]string{
	domain.DocumentTypeCustomerInfoSheet: `{
  "document_type": "CUSTOMER INFORMATION SHEET (INDIVIDUAL)",
  "bank_name": null,
  "personal_information": {
    "last_name": null, "first_name": null, "middle_name": null, "suffix": null,
    "date_of_birth": null, "place_of_birth": null, "citizenship": null,
    "sex": null, "marital_status": null, "mother_s_full_maiden_name": null,
    "spouse_name": null, "tin_number": null, "spouse_birthdate": null,
    "id_presented": {"id_type": null, "id_number": null},
    "no_of_children": null, "highest_educational_attainment": null
  },
  "contact_information": {
    "mobile_no": null, "landline_no": null, "email_address": null,
    "home_address": null, "country": null, "zip_code": null,
    "city_municipality_provice": null, "home_ownership": null
  },
  "financial_information": {
    "profession_business_name": null, "date_hired": null,
    "employer_business_address": null, "position_rank": null,
    "nature_of_business_self_employment": null,
    "source_of_income_wealth": {"monthly_income": null}
  },
  "certification_and_authorization": {"customer_signature": null, "date": null},
  "for_bank_use_only": {"remarks": null, "processed_and_signature_verified_by": null, "approved_by": null},
  "form_no": null
}`,
	domain.DocumentTypeDepositSlipFront: `{
  "document_type": "DEPOSIT / PAYMENT / BILLS PURCHASE FORM FRONT",
  "copy_type": null,
  "bank_name": null,
  "transaction_details": {
    "date": null,
    "transaction_type": {"deposit": null, "payment": null, "bills_purchase": null},
    "account_type": {"savings": null, "current": null},
    "currency": {"peso": null, "us_dollar": null, "others": null}
  },
  "account_details": {"account_number": null, "account_name_merchant_name": null},
  "deposit_payment_breakdown": {
    "cash_amount": null,
    "checks": [{"amount": null, "bank": null, "date": null, "details": null}],
    "total_deposits_payment": null
  },
  "for_bills_purchase_accommodation": {
    "representative_full_name": null, "contact_number": null,
    "signature_over_printed_name": null, "form_no": null
  }
}`,
	domain.DocumentTypeDepositSlipBack: `{
  "document_type": "DEPOSIT / PAYMENT SLIP BACK",
  "bank_name": null,
  "sections": {
    "check_details_top": {
      "checks": [{"name_of_bank_branch": null, "check_no": null, "amount": null}],
      "total_checks": null, "total_cash": null, "total_deposits_payment": null
    },
    "deposit_cash_breakdown": {
      "items": [{"no_of_pieces": null, "denominations": null, "amount": null}],
      "total": null
    },
    "representative_information": {
      "full_name": null, "contact_number": null, "address": null,
      "citizenship": null, "date_of_birth": null, "place_of_birth": null, "signature": null
    }
  }
}`,
	domain.DocumentTypeWithdrawalFront: `{
  "document_type": "WITHDRAWAL SLIP",
  "bank_name": null,
  "withdrawal_slip_details": {
    "currency_type": null, "account_type": null, "account_number": null,
    "account_name": null, "teller_validation": null
  },
  "withdrawal_amount": {"amount_in_numbers": null},
  "depositor_information": {"signature_of_depositor": null, "date": null},
  "withdrawal_through_representative": {
    "name_in_print": null, "signature_of_representative": null, "contact_no": null,
    "depositor_authorization_signatures": [{"signature": null, "date": null}]
  },
  "payment_received_by": {"signature": null, "name": null},
  "bank_use_only": {"remarks": null, "verified_by": null, "approved_by": null},
  "form_no": null
}`,
	domain.DocumentTypeWithdrawalBack: `{
  "document_type": "WITHDRAWAL SLIP BACK",
  "denominations_breakdown": {
    "items": [{"no_of_pieces": null, "denomination": null, "amount": null}],
    "total": null
  },
  "representative_information": {
    "full_name": null, "contact_number": null, "address": null,
    "citizenship": null, "date_of_birth": null, "place_of_birth": null, "signature": null
  }
}`,
}

// BuildSchemaPrompt returns the field-extraction prompt for the given OCR
// text. An unknown document type includes every schema so the model can pick.
func BuildSchemaPrompt(rawText string, documentType domain.DocumentType) string {
	var b strings.Builder
	b.WriteString("You are a JSON extractor for bank forms. Given the OCR text from a scanned image, ")
	b.WriteString("output ONLY valid JSON matching the correct schema, using null for blanks.\n\n")

	if example, ok := schemaExamples[documentType]; ok {
		b.WriteString("--- Schema:\n")
		b.WriteString(example)
		b.WriteString("\n\n")
	} else {
		for _, dt := range []domain.DocumentType{
			domain.DocumentTypeCustomerInfoSheet,
			domain.DocumentTypeDepositSlipFront,
			domain.DocumentTypeDepositSlipBack,
			domain.DocumentTypeWithdrawalFront,
			domain.DocumentTypeWithdrawalBack,
		} {
			b.WriteString("--- Schema:\n")
			b.WriteString(schemaExamples[dt])
			b.WriteString("\n\n")
		}
	}

	b.WriteString("Now extract JSON from this OCR text:\n")
	b.WriteString(rawText)
	return b.String()
}
