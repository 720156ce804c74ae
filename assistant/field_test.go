package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromExtracted(t *testing.T) {
	tests := []struct {
		name   string
		input  []string
		expect FieldValue
	}{
		{"nil list needs filling", nil, Unset()},
		{"empty list needs filling", []string{}, Unset()},
		{"single empty string needs filling", []string{""}, Unset()},
		{"single value resolves", []string{"Apple"}, Resolved("Apple")},
		{"multiple values resolve", []string{"Apple", "Nvidia"}, Resolved("Apple", "Nvidia")},
		{"empty string among values stays resolved", []string{"", "Apple"}, Resolved("", "Apple")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, FromExtracted(tt.input))
		})
	}
}

func TestFieldMapArgs(t *testing.T) {
	m := FieldMap{
		FieldStockName: Resolved("Apple", "Nvidia"),
		FieldCity:      NoValue(),
		FieldDate:      Unset(),
	}

	assert.Equal(t, []string{"Apple", "Nvidia"}, m.Args(FieldStockName))
	assert.Nil(t, m.Args(FieldCity), "NoValue binds to nil")
	assert.Nil(t, m.Args(FieldDate), "Unset binds to nil")
	assert.Nil(t, m.Args(FieldNewsTopic), "absent field binds to nil")
}
