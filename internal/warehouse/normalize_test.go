package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBasic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "Коледино", "каледино"},
		{"trims and collapses spaces", "  коледино   склад ", "каледино склад"},
		{"strips punctuation", "Подольск-1 (новый)", "падольск1 новый"},
		{"latin passthrough", "Wildberries Tula", "wildberries tula"},
		{"yo collapses to ye", "Щёлково", "щолково"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", "Коледино", "ЭЛЕКТРОСТАЛЬ", "  Щёлково  ", "Чехов-2", "любой склад",
		"Wildberries Электросталь", "падольск",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "not idempotent for %q", in)
	}
}

func TestNormalizeMisspellingsCollapse(t *testing.T) {
	pairs := [][2]string{
		{"Коледино", "Каледино"},
		{"Электросталь", "Електросталь"},
		{"Подольск", "Падольск"},
		{"Щелково", "Щолково"},
		{"Чехов", "Чихов"},
		{"Щёлково", "Щелково"},
	}
	for _, p := range pairs {
		assert.True(t, Same(p[0], p[1]), "%q and %q should normalize together", p[0], p[1])
	}
}

func TestSameToleratesCaseAndSpacing(t *testing.T) {
	assert.True(t, Same("Коледино", "коледино "))
	assert.True(t, Same("подольск", "Подольск"))
	assert.False(t, Same("Подольск", "Коледино"))
}
