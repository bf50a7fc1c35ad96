package extractor

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanscore/internal/domain"
)

func TestBuildSchemaPrompt(t *testing.T) {
	t.Run("known type includes only its schema", func(t *testing.T) {
		prompt := BuildSchemaPrompt("ocr text here", domain.DocumentTypeWithdrawalFront)
		assert.Contains(t, prompt, `"WITHDRAWAL SLIP"`)
		assert.NotContains(t, prompt, "CUSTOMER INFORMATION SHEET")
		assert.True(t, strings.HasSuffix(prompt, "ocr text here"))
	})

	t.Run("unknown type includes every schema", func(t *testing.T) {
		prompt := BuildSchemaPrompt("ocr text", domain.DocumentTypeUnknown)
		assert.Contains(t, prompt, "CUSTOMER INFORMATION SHEET")
		assert.Contains(t, prompt, "DEPOSIT / PAYMENT / BILLS PURCHASE FORM FRONT")
		assert.Contains(t, prompt, "DEPOSIT / PAYMENT SLIP BACK")
		assert.Contains(t, prompt, `"WITHDRAWAL SLIP"`)
		assert.Contains(t, prompt, "WITHDRAWAL SLIP BACK")
	})
}

func TestSchemaExamplesAreValidJSON(t *testing.T) {
	for docType, example := range schemaExamples {
		var v interface{}
		require.NoError(t, json.Unmarshal([]byte(example), &v), "schema for %s", docType)
	}
}
