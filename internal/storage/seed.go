package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/centavo-dev/centavo/internal/common"
	"github.com/centavo-dev/centavo/internal/model"
)

// seedUser is the default statement-import owner.
var seedUser = model.User{
	Name:    "Admin",
	Email:   "admin@centavo.local",
	IsAdmin: true,
}

// seedCategories is the system category set. System rows are immutable
// and include the two sentinels the pipeline depends on: the classifier
// fallback and the internal-transfer exclusion.
var seedCategories = []model.Category{
	{Name: "Salário", Type: model.TypeEntry, IsSystem: true},
	{Name: "Freelances", Type: model.TypeEntry, IsSystem: true},
	{Name: "Vendas", Type: model.TypeEntry, IsSystem: true},
	{Name: "Outros Ganhos", Type: model.TypeEntry, IsSystem: true},
	{Name: "Adiantamento", Type: model.TypeEntry, IsSystem: true},
	{Name: model.InternalTransferCategory, Type: model.TypeEntry, IsSystem: true},

	{Name: "Alimentação", Type: model.TypeExit, IsSystem: true},
	{Name: "Transporte", Type: model.TypeExit, IsSystem: true},
	{Name: "Moradia", Type: model.TypeExit, IsSystem: true},
	{Name: "Saúde", Type: model.TypeExit, IsSystem: true},
	{Name: "Educação", Type: model.TypeExit, IsSystem: true},
	{Name: "Lazer", Type: model.TypeExit, IsSystem: true},
	{Name: "Compras", Type: model.TypeExit, IsSystem: true},
	{Name: "Contas", Type: model.TypeExit, IsSystem: true},
	{Name: "Investimentos", Type: model.TypeExit, IsSystem: true},
	{Name: "Outros Gastos", Type: model.TypeExit, IsSystem: true},
	{Name: "Pets", Type: model.TypeExit, IsSystem: true},
	{Name: "Farmácia", Type: model.TypeExit, IsSystem: true},
	{Name: "Serviços", Type: model.TypeExit, IsSystem: true},
	{Name: "Transferências enviadas", Type: model.TypeExit, IsSystem: true},
	{Name: model.FallbackCategory, Type: model.TypeExit, IsSystem: true},
}

// seedRules is the starter keyword knowledge base. All CONTAINS at the
// default priority; users refine with higher-priority rules over time.
var seedRules = []struct {
	Keyword  string
	Category string
}{
	{"ATACADAO", "Alimentação"},
	{"SUPERMERCADO", "Alimentação"},
	{"MERCANTIL", "Alimentação"},
	{"PADARIA", "Alimentação"},
	{"PAES E DOCES", "Alimentação"},
	{"RESTAURANTE", "Alimentação"},
	{"LANCHONETE", "Alimentação"},
	{"PIZZA", "Alimentação"},
	{"BURGER KING", "Alimentação"},
	{"MC DONALDS", "Alimentação"},
	{"IFOOD", "Alimentação"},
	{"CARREFOUR", "Alimentação"},
	{"ASSAI", "Alimentação"},
	{"CAFE", "Alimentação"},
	{"SORVETES", "Alimentação"},
	{"CONFEITARIA", "Alimentação"},

	{"UBER", "Transporte"},
	{"99APP", "Transporte"},
	{"POSTO", "Transporte"},
	{"AUTO POSTO", "Transporte"},
	{"SEM PARAR", "Transporte"},
	{"ESTACIONAMENTO", "Transporte"},
	{"PEDAGIO", "Transporte"},
	{"PARK", "Transporte"},

	{"DROGASIL", "Farmácia"},
	{"DROGARIA", "Farmácia"},
	{"FARMACIA", "Farmácia"},
	{"ULTRAFARMA", "Farmácia"},

	{"SPOTIFY", "Serviços"},
	{"NETFLIX", "Serviços"},
	{"AMAZON PRIME", "Serviços"},
	{"GOOGLE STORAGE", "Serviços"},
	{"OPENAI", "Serviços"},
	{"CLARO", "Serviços"},
	{"VIVO", "Serviços"},
	{"TIM", "Serviços"},
	{"ELETROPAULO", "Serviços"},
	{"SABESP", "Serviços"},

	{"PIX TRANSFERENCIA", "Transferências enviadas"},
	{"TRANSF ENVIADA", "Transferências enviadas"},
	{"TED", "Transferências enviadas"},
	{"DOC", "Transferências enviadas"},

	{"CINEMARK", "Lazer"},
	{"INGRESSO.COM", "Lazer"},
	{"BAR", "Lazer"},
	{"BARBEARIA", "Lazer"},
	{"SYMPLA", "Lazer"},
	{"PIZZARIA", "Lazer"},

	{"PETZ", "Pets"},
	{"AVICULTURA", "Pets"},

	{"DAISO", "Compras"},
	{"PAPELARIA", "Compras"},
	{"SHOP", "Compras"},
	{"LOJAS", "Compras"},

	{"ADIANTAMENTO", "Adiantamento"},
	{"REMUNERACAO", "Salário"},
	{"COMPLEMENTO SALARIO", "Salário"},

	{"FIT", "Saúde"},
	{"SHAPE", "Saúde"},
}

// Seed populates the default admin user, the system category set and the
// starter classification rules. Safe to run repeatedly: existing rows
// are left alone.
func (s *SQLiteStorage) Seed(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if err := s.seedDefaultUser(ctx); err != nil {
		return err
	}

	byName := make(map[string]int64, len(seedCategories))
	for _, cat := range seedCategories {
		existing, err := s.GetCategoryByName(ctx, cat.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			byName[cat.Name] = existing.ID
			continue
		}
		created, err := s.CreateCategory(ctx, cat.Name, cat.Type, cat.IsSystem)
		if err != nil {
			return err
		}
		byName[cat.Name] = created.ID
	}

	seeded := 0
	for _, seed := range seedRules {
		categoryID, ok := byName[seed.Category]
		if !ok {
			return fmt.Errorf("seed rule %q targets unknown category %q", seed.Keyword, seed.Category)
		}

		exists, err := s.ruleExists(ctx, seed.Keyword, categoryID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		rule := model.CategoryRule{
			Keyword:    seed.Keyword,
			MatchType:  model.MatchContains,
			Priority:   10,
			CategoryID: categoryID,
		}
		if err := s.CreateRule(ctx, &rule); err != nil {
			return err
		}
		seeded++
	}

	slog.Info("seeded database",
		"categories", len(seedCategories),
		"new_rules", seeded)
	return nil
}

func (s *SQLiteStorage) seedDefaultUser(ctx context.Context) error {
	_, err := s.DefaultUser(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNoDefaultUser) {
		return err
	}

	user := seedUser
	return s.CreateUser(ctx, &user)
}

func (s *SQLiteStorage) ruleExists(ctx context.Context, keyword string, categoryID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM category_rules WHERE keyword = ? AND category_id = ?`,
		keyword, categoryID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check rule existence: %w", err)
	}
	return count > 0, nil
}
