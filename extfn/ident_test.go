package extfn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIdents(t *testing.T) {
	tests := []struct {
		function   string
		capability string
		seal       string
	}{
		{"countDigits", "CountDigits", "extfnSealCountDigits"},
		{"CountDigits", "CountDigits", "extfnSealCountDigits"},
		{"insert_if_absent", "InsertIfAbsent", "extfnSealInsertIfAbsent"},
		{"sorted", "Sorted", "extfnSealSorted"},
	}

	for _, tt := range tests {
		t.Run(tt.function, func(t *testing.T) {
			id := NewIdents(tt.function)
			assert.Equal(t, tt.capability, id.Capability)
			assert.Equal(t, tt.seal, id.Seal)
		})
	}
}

func TestNewIdentsStable(t *testing.T) {
	assert.Equal(t, NewIdents("merge"), NewIdents("merge"))
}

func TestCapabilityNameVisibility(t *testing.T) {
	id := NewIdents("count_digits")

	assert.Equal(t, "CountDigits", id.capabilityName(VisibilityExported))
	assert.Equal(t, "countDigits", id.capabilityName(VisibilityUnexported))
	assert.Equal(t, "countDigitsFor", id.adapterName(VisibilityUnexported))
	assert.Equal(t, "CountDigitsFor", id.adapterName(VisibilityExported))
}
