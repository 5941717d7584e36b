package nvd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureOrderIndependent(t *testing.T) {
	a := map[string]string{}
	a["resultsPerPage"] = "2000"
	a["startIndex"] = "0"
	a["keywordSearch"] = "openssl"

	b := map[string]string{}
	b["keywordSearch"] = "openssl"
	b["startIndex"] = "0"
	b["resultsPerPage"] = "2000"

	assert.Equal(t, Signature(a), Signature(b))
}

func TestSignatureDistinguishesParams(t *testing.T) {
	base := map[string]string{"startIndex": "0"}
	next := map[string]string{"startIndex": "2000"}

	assert.NotEqual(t, Signature(base), Signature(next))
}

func TestSignatureIsFixedWidth(t *testing.T) {
	assert.Len(t, Signature(map[string]string{}), 64)
	assert.Len(t, Signature(map[string]string{"cveId": "CVE-2024-0001"}), 64)
}
