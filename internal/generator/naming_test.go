package generator

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"

	"github.com/mark3labs/refitgen/internal/config"
	"github.com/mark3labs/refitgen/internal/spec"
)

func TestDefaultNamer(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		verb spec.HttpMethod
		id   string
		want string
	}{
		{"/pets/{petId}", spec.GET, "getPetById", "GetPetById"},
		{"/pets/{petId}", spec.GET, "", "GetPetsPetId"},
		{"/users/{user-id}/orders", spec.DELETE, "", "DeleteUsersUserIdOrders"},
		{"/", spec.POST, "", "Post"},
		{"/store", spec.PATCH, "store.update-item", "StoreUpdateItem"},
		{"/store", spec.PATCH, "  ", "PatchStore"},
		{"/v1/items", spec.GET, "", "GetV1Items"},
	}
	for _, tc := range tests {
		op := &openapi3.Operation{OperationID: tc.id}
		assert.Equal(t, tc.want, DefaultNamer{}.NameFor(nil, tc.path, tc.verb, op), "%s %s %q", tc.verb, tc.path, tc.id)
	}
}

func TestTemplateNamer(t *testing.T) {
	t.Parallel()
	op := &openapi3.Operation{OperationID: "getPet"}

	n := TemplateNamer{Template: "{operationName}Async"}
	assert.Equal(t, "GetPetAsync", n.NameFor(nil, "/pets", spec.GET, op))

	n = TemplateNamer{Template: "Try{operationName}"}
	assert.Equal(t, "TryGetPet", n.NameFor(nil, "/pets", spec.GET, op))

	n = TemplateNamer{Template: "Execute"}
	assert.Equal(t, "Execute", n.NameFor(nil, "/pets", spec.GET, op))

	n = TemplateNamer{}
	assert.Equal(t, "GetPet", n.NameFor(nil, "/pets", spec.GET, op))
}

func TestInterfaceName(t *testing.T) {
	t.Parallel()
	doc := petstore(t)

	assert.Equal(t, "ISwaggerPetstoreOpenAPI30", interfaceName(doc, config.Naming{UseDocumentTitle: true, InterfaceName: "X"}))
	assert.Equal(t, "IMyClient", interfaceName(doc, config.Naming{InterfaceName: "MyClient"}))
	assert.Equal(t, "IMyClient", interfaceName(doc, config.Naming{InterfaceName: "IMyClient"}))
	assert.Equal(t, "IInventory", interfaceName(doc, config.Naming{InterfaceName: "Inventory"}))
	assert.Equal(t, "IApiClient", interfaceName(doc, config.Naming{InterfaceName: "?"}))
}

func TestTagInterfaceName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "IPetsApi", tagInterfaceName("Pets"))
	assert.Equal(t, "IUserAccountsApi", tagInterfaceName("user accounts"))
	assert.Equal(t, "", tagInterfaceName("--"))
}

func TestUniqueNames(t *testing.T) {
	t.Parallel()
	u := make(uniqueNames)
	assert.Equal(t, "Get", u.claim("Get"))
	assert.Equal(t, "Get2", u.claim("Get"))
	assert.Equal(t, "Get3", u.claim("Get"))
	// a literal name that was already handed out as a suffix gets its own suffix
	assert.Equal(t, "Get22", u.claim("Get2"))
	assert.Equal(t, "Get4", u.claim("Get"))
}
