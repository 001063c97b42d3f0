package sale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleCanAccess(t *testing.T) {
	tests := []struct {
		role     Role
		category ItemCategory
		want     bool
	}{
		{RoleAdmin, CategoryProperty, true},
		{RoleAdmin, CategorySeller, true},
		{RoleAdmin, CategoryBuyer, true},
		{RoleCorretor, CategorySeller, true},
		{RoleCorretor, CategoryBuyer, true},
		{RoleVendedor, CategorySeller, true},
		{RoleVendedor, CategoryBuyer, false},
		{RoleComprador, CategoryBuyer, true},
		{RoleComprador, CategorySeller, false},
		{RoleParceiro, CategoryProperty, true},
		{RoleParceiro, CategorySeller, false},
		{RoleParceiro, CategoryBuyer, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RoleCanAccess(tt.role, tt.category),
			"role %s category %s", tt.role, tt.category)
	}
}

func TestFilterForRole_BlanksHiddenFiles(t *testing.T) {
	p := newTestProcess(t, PaymentCash)
	require.NoError(t, p.ApplyUpload("documentacao", "rg-cpf-vendedor", "https://files.test/v.pdf"))
	require.NoError(t, p.ApplyUpload("documentacao", "rg-cpf-comprador", "https://files.test/c.pdf"))
	require.NoError(t, p.ApplyUpload("documentacao", "matricula-imovel", "https://files.test/m.pdf"))

	filtered := FilterForRole(p, RoleComprador)

	sellerDoc, err := filtered.Item("documentacao", "rg-cpf-vendedor")
	require.NoError(t, err)
	assert.Nil(t, sellerDoc.FileURL, "buyer must not see seller documents")
	assert.Equal(t, ItemUploaded, sellerDoc.Status, "status stays visible for the stepper")

	buyerDoc, err := filtered.Item("documentacao", "rg-cpf-comprador")
	require.NoError(t, err)
	require.NotNil(t, buyerDoc.FileURL)
	assert.Equal(t, "https://files.test/c.pdf", *buyerDoc.FileURL)

	propertyDoc, err := filtered.Item("documentacao", "matricula-imovel")
	require.NoError(t, err)
	assert.NotNil(t, propertyDoc.FileURL)
}

func TestFilterForRole_DoesNotMutateOriginal(t *testing.T) {
	p := newTestProcess(t, PaymentCash)
	require.NoError(t, p.ApplyUpload("documentacao", "rg-cpf-vendedor", "https://files.test/v.pdf"))
	require.NoError(t, p.SetRGIProtocol("rgi", "PROT-1", t0))

	filtered := FilterForRole(p, RoleParceiro)
	require.NoError(t, filtered.ToggleItem("documentacao", "rg-cpf-vendedor", false))
	require.NoError(t, filtered.SetRGIStage("rgi", StageAnalysis, t0))

	original, err := p.Item("documentacao", "rg-cpf-vendedor")
	require.NoError(t, err)
	assert.Equal(t, ItemUploaded, original.Status, "filtering must yield an isolated copy")
	require.NotNil(t, original.FileURL)

	rgiStep, err := p.Step("rgi")
	require.NoError(t, err)
	assert.Len(t, rgiStep.RGI.History, 1)
	assert.Equal(t, StageProtocol, rgiStep.RGI.CurrentStage)
}
