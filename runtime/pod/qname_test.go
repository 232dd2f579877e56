package pod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQName(t *testing.T) {
	assert.Equal(t, "acme::Widget", QName("acme", "Widget"))
}

func TestSplitQName(t *testing.T) {
	tests := []struct {
		qname string
		pod   string
		name  string
		ok    bool
	}{
		{"acme::Widget", "acme", "Widget", true},
		{"a::b::c", "a", "b::c", true},
		{"Widget", "", "", false},
		{"::Widget", "", "", false},
		{"acme::", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.qname, func(t *testing.T) {
			pod, name, ok := SplitQName(tt.qname)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.pod, pod)
			assert.Equal(t, tt.name, name)
		})
	}
}
