package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/centavo-dev/centavo/internal/model"
)

func TestClassifier_MatchTypes(t *testing.T) {
	classifier := NewClassifier()

	ruleList := []model.CategoryRule{
		{Keyword: "UBER", MatchType: model.MatchContains, CategoryName: "Transporte"},
		{Keyword: "PIX TRANSFERENCIA", MatchType: model.MatchStartsWith, CategoryName: "Transferências enviadas"},
		{Keyword: "NETFLIX.COM", MatchType: model.MatchExact, CategoryName: "Serviços"},
	}

	tests := []struct {
		name        string
		description string
		want        string
	}{
		{
			name:        "contains matches anywhere",
			description: "PAGAMENTO UBER TRIP SAO PAULO",
			want:        "Transporte",
		},
		{
			name:        "contains is case insensitive",
			description: "uber *trip help.uber.com",
			want:        "Transporte",
		},
		{
			name:        "starts_with matches prefix",
			description: "PIX TRANSFERENCIA JOAO SILVA",
			want:        "Transferências enviadas",
		},
		{
			name:        "starts_with rejects mid-string occurrence",
			description: "ESTORNO PIX TRANSFERENCIA",
			want:        model.FallbackCategory,
		},
		{
			name:        "exact matches full description only",
			description: "NETFLIX.COM",
			want:        "Serviços",
		},
		{
			name:        "exact rejects partial",
			description: "NETFLIX.COM ASSINATURA",
			want:        model.FallbackCategory,
		},
		{
			name:        "no match falls back to review category",
			description: "COMPRA DESCONHECIDA 42",
			want:        model.FallbackCategory,
		},
		{
			name:        "empty description falls back",
			description: "",
			want:        model.FallbackCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.description, ruleList)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_FirstMatchWins(t *testing.T) {
	classifier := NewClassifier()

	// Rules arrive pre-sorted by priority DESC, created_at DESC. The
	// specific high-priority rule must shadow the generic one.
	ruleList := []model.CategoryRule{
		{Keyword: "UBER EATS", MatchType: model.MatchContains, Priority: 20, CategoryName: "Alimentação"},
		{Keyword: "UBER", MatchType: model.MatchContains, Priority: 10, CategoryName: "Transporte"},
	}

	assert.Equal(t, "Alimentação", classifier.Classify("UBER EATS PEDIDO 991", ruleList))
	assert.Equal(t, "Transporte", classifier.Classify("UBER TRIP 881", ruleList))
}

func TestClassifier_Deterministic(t *testing.T) {
	classifier := NewClassifier()

	ruleList := []model.CategoryRule{
		{Keyword: "MERCADO", MatchType: model.MatchContains, CategoryName: "Alimentação"},
		{Keyword: "MERCADO", MatchType: model.MatchContains, CategoryName: "Compras"},
	}

	// Same input, same ordered rules, same answer, every time.
	for i := 0; i < 100; i++ {
		assert.Equal(t, "Alimentação", classifier.Classify("SUPERMERCADO DIA", ruleList))
	}
}

func TestClassifier_SkipsInvalidRules(t *testing.T) {
	classifier := NewClassifier()

	ruleList := []model.CategoryRule{
		{Keyword: "", MatchType: model.MatchContains, CategoryName: "Nunca"},
		{Keyword: "POSTO", MatchType: "REGEX", CategoryName: "Nunca"},
		{Keyword: "POSTO", MatchType: model.MatchContains, CategoryName: "Transporte"},
	}

	// An empty keyword or unknown match type never matches.
	assert.Equal(t, "Transporte", classifier.Classify("AUTO POSTO IPIRANGA", ruleList))
	assert.Equal(t, model.FallbackCategory, classifier.Classify("PADOCA DO ZE", ruleList))
}

func TestClassifier_NoRules(t *testing.T) {
	classifier := NewClassifier()
	assert.Equal(t, model.FallbackCategory, classifier.Classify("QUALQUER COISA", nil))
}
