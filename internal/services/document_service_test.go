// internal/services/document_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/models"
)

func TestRenderTemplateContent(t *testing.T) {
	data := map[string]string{
		"cliente_nombre": "María",
		"plan_nombre":    "Plan Oro",
	}

	t.Run("substitutes known placeholders", func(t *testing.T) {
		rendered, missing := RenderTemplateContent(
			"Estimada {{cliente_nombre}}, su plan es {{plan_nombre}}.", data)
		assert.Equal(t, "Estimada María, su plan es Plan Oro.", rendered)
		assert.Empty(t, missing)
	})

	t.Run("tolerates whitespace inside braces", func(t *testing.T) {
		rendered, missing := RenderTemplateContent("Hola {{ cliente_nombre }}", data)
		assert.Equal(t, "Hola María", rendered)
		assert.Empty(t, missing)
	})

	t.Run("keeps unknown placeholders and reports them", func(t *testing.T) {
		rendered, missing := RenderTemplateContent("DNI: {{cliente_dni}}", data)
		assert.Equal(t, "DNI: {{cliente_dni}}", rendered)
		assert.Equal(t, []string{"cliente_dni"}, missing)
	})

	t.Run("no placeholders at all", func(t *testing.T) {
		rendered, missing := RenderTemplateContent("Texto plano.", data)
		assert.Equal(t, "Texto plano.", rendered)
		assert.Empty(t, missing)
	})
}

func TestPackageProgress(t *testing.T) {
	doc := func(status models.DocumentStatus) models.DocumentPackageItem {
		return models.DocumentPackageItem{Document: models.Document{Status: status}}
	}

	tests := []struct {
		name  string
		items []models.DocumentPackageItem
		want  string
	}{
		{
			"nothing signed",
			[]models.DocumentPackageItem{doc(models.DocumentStatusGenerado), doc(models.DocumentStatusPendiente)},
			"pendiente",
		},
		{
			"everything signed",
			[]models.DocumentPackageItem{doc(models.DocumentStatusFirmado), doc(models.DocumentStatusFirmado)},
			"completo",
		},
		{
			"partially signed",
			[]models.DocumentPackageItem{doc(models.DocumentStatusFirmado), doc(models.DocumentStatusGenerado), doc(models.DocumentStatusPendiente)},
			"1/3 firmados",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PackageProgress(tt.items))
		})
	}
}
