package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/username/moneymirror/src/database"
	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/processors"
	"github.com/username/moneymirror/src/security"
	"github.com/username/moneymirror/src/storage"
)

const passphrase = "ma phrase de passe locale"

type testEnv struct {
	store   *storage.SecureStore
	cipher  *security.EncryptionService
	txs     TransactionService
	journal JournalService
	insight InsightService
	vault   VaultService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	meta := storage.NewMetaStore(db)
	cipher := security.NewEncryptionService(meta, security.MinIterations)
	store := storage.NewSecureStore(db, cipher)
	c := NewResultCache(time.Minute)
	validate := validator.New()
	now := func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	env := &testEnv{
		store:   store,
		cipher:  cipher,
		txs:     NewTransactionService(store, validate, c),
		journal: NewJournalService(store, validate, c),
		insight: NewInsightService(store,
			processors.NewInsightProcessor(),
			processors.NewBiasDetector(now),
			processors.NewMicroInsightProjector(now, nil),
			c),
		vault: NewVaultService(cipher, meta, store, c),
	}
	if err := env.vault.Unlock(context.Background(), passphrase); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	return env
}

func expense(value float64, category string, date time.Time) models.Transaction {
	return models.Transaction{Value: value, Domain: models.DomainExpense, Category: category, Date: date}
}

var march = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

func (e *testEnv) add(t *testing.T, userID string, txs ...models.Transaction) {
	t.Helper()
	for _, tx := range txs {
		if _, err := e.txs.AddTransaction(context.Background(), userID, tx); err != nil {
			t.Fatalf("AddTransaction failed: %v", err)
		}
	}
}

func findType(insights []models.PersonalizedInsight, typ models.InsightType) *models.PersonalizedInsight {
	for i := range insights {
		if insights[i].Type == typ {
			return &insights[i]
		}
	}
	return nil
}

func TestGenerateInsights_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("A: five coffees", func(t *testing.T) {
		env := newTestEnv(t)
		for i := 0; i < 5; i++ {
			env.add(t, "u", expense(3.5, "Restaurant", march.AddDate(0, 0, i)))
		}
		insights, err := env.insight.GenerateInsights(ctx, "u")
		if err != nil {
			t.Fatal(err)
		}
		sym := findType(insights, models.InsightSymbolicComparison)
		if sym == nil {
			t.Fatalf("no symbolic comparison in %+v", insights)
		}
		d := sym.PersonalizedData.(models.SymbolicComparisonData)
		if d.ComparisonItem != "café" || d.ComparisonCount != 5 {
			t.Errorf("got %+v", d)
		}
	})

	t.Run("B: monthly subscription", func(t *testing.T) {
		env := newTestEnv(t)
		for i := 0; i < 12; i++ {
			tx := expense(9.99, "Abonnements", march.AddDate(0, 0, 30*i))
			tx.Description = "Netflix"
			env.add(t, "u", tx)
		}
		insights, err := env.insight.GenerateInsights(ctx, "u")
		if err != nil {
			t.Fatal(err)
		}
		fee := findType(insights, models.InsightHiddenFees)
		if fee == nil {
			t.Fatalf("no hidden fee insight in %+v", insights)
		}
		d := fee.PersonalizedData.(models.HiddenFeesData)
		if d.MonthlyAmount != 9.99 || d.YearlyAmount != 119.88 {
			t.Errorf("got %+v", d)
		}
	})

	t.Run("C: dominant housing", func(t *testing.T) {
		env := newTestEnv(t)
		env.add(t, "u",
			expense(350, "Logement", march),
			expense(250, "Courses", march.AddDate(0, 0, 1)),
			expense(200, "Transport", march.AddDate(0, 0, 2)),
			expense(200, "Santé", march.AddDate(0, 0, 3)))
		insights, err := env.insight.GenerateInsights(ctx, "u")
		if err != nil {
			t.Fatal(err)
		}
		p := findType(insights, models.InsightSpendingPattern)
		if p == nil {
			t.Fatalf("no spending pattern in %+v", insights)
		}
		if d := p.PersonalizedData.(models.SpendingPatternData); d.Percentage != 35 || p.Impact != models.ImpactMedium {
			t.Errorf("got %+v impact %s", d, p.Impact)
		}
	})

	t.Run("D: no transactions", func(t *testing.T) {
		env := newTestEnv(t)
		insights, err := env.insight.GenerateInsights(ctx, "nobody")
		if err != nil {
			t.Fatal(err)
		}
		if len(insights) != 1 || insights[0].Type != models.InsightOnboarding || insights[0].RelevanceScore != 1.0 {
			t.Errorf("expected single onboarding insight, got %+v", insights)
		}
	})
}

func TestGenerateInsights_CacheInvalidatedOnWrite(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	first, err := env.insight.GenerateInsights(ctx, "u")
	if err != nil || first[0].Type != models.InsightOnboarding {
		t.Fatalf("expected onboarding first, got %+v / %v", first, err)
	}
	env.add(t, "u", expense(40, "Courses", march))

	second, err := env.insight.GenerateInsights(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	if findType(second, models.InsightOnboarding) != nil {
		t.Error("stale onboarding insight served after a write")
	}
}

func TestStoredInsights_ReplacedOnEachRun(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.add(t, "u", expense(40, "Courses", march))
	generated, err := env.insight.GenerateInsights(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	stored, err := env.insight.StoredInsights(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != len(generated) {
		t.Fatalf("stored %d insights, generated %d", len(stored), len(generated))
	}

	env.add(t, "u", expense(60, "Loisirs", march.AddDate(0, 0, 1)))
	regenerated, _ := env.insight.GenerateInsights(ctx, "u")
	stored, _ = env.insight.StoredInsights(ctx, "u")
	if len(stored) != len(regenerated) {
		t.Errorf("stored snapshot not replaced: %d vs %d", len(stored), len(regenerated))
	}
}

func TestIncognito_LeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.add(t, "u", expense(40, "Courses", march))

	env.vault.SetIncognito(true)
	env.add(t, "u", expense(999, "Voyages", march.AddDate(0, 0, 1)))
	insights, err := env.insight.GenerateInsights(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	if insights[0].Type != models.InsightOnboarding {
		t.Errorf("incognito reads should be empty, got %+v", insights)
	}

	env.vault.SetIncognito(false)
	list, err := env.txs.ListTransactions(ctx, "u", storage.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Value != 40 {
		t.Errorf("incognito write persisted: %+v", list)
	}
}

func TestTransactionService_ValidationAndLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	if _, err := env.txs.AddTransaction(ctx, "u", expense(-5, "Courses", march)); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation for negative value, got %v", err)
	}
	bad := expense(5, "Courses", march)
	bad.EmotionalContext = &models.EmotionalContext{Mood: 12}
	if _, err := env.txs.AddTransaction(ctx, "u", bad); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation for mood 12, got %v", err)
	}

	tx, err := env.txs.AddTransaction(ctx, "u", expense(5, "Courses", march))
	if err != nil {
		t.Fatal(err)
	}
	if tx.ID == "" || tx.Source != models.SourceManual || tx.Confidence != 1 {
		t.Errorf("manual defaults not applied: %+v", tx)
	}

	tx.Value = 7
	if _, err := env.txs.UpdateTransaction(ctx, "u", tx.ID, tx); err != nil {
		t.Fatal(err)
	}
	list, _ := env.txs.ListTransactions(ctx, "u", storage.Filter{})
	if len(list) != 1 || list[0].Value != 7 {
		t.Errorf("update not applied: %+v", list)
	}
	if _, err := env.txs.UpdateTransaction(ctx, "u", "missing", tx); !errors.Is(err, storage.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}

	if err := env.txs.DeleteTransaction(ctx, "u", tx.ID); err != nil {
		t.Fatal(err)
	}
	if list, _ := env.txs.ListTransactions(ctx, "u", storage.Filter{}); len(list) != 0 {
		t.Errorf("delete not applied: %+v", list)
	}
}

func TestImportTransactions_PartialSuccess(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	rows := []models.Transaction{
		expense(10, "Courses", march),
		expense(0, "Courses", march),
		expense(20, "", march),
		expense(30, "Loisirs", march),
	}
	res, err := env.txs.ImportTransactions(ctx, "u", rows)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 2 || len(res.Errors) != 2 {
		t.Errorf("expected 2 imported and 2 errors, got %+v", res)
	}
	if !strings.HasPrefix(res.Errors[0], "ligne 2:") {
		t.Errorf("unexpected error line %q", res.Errors[0])
	}
}

func TestImportTransactions_LockedStoreAborts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.vault.Lock()

	res, err := env.txs.ImportTransactions(ctx, "u", []models.Transaction{expense(1, "Courses", march), expense(2, "Courses", march)})
	if !errors.Is(err, storage.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if res.Imported != 0 {
		t.Errorf("expected nothing imported, got %+v", res)
	}
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	csv := "date,montant,catégorie,libellé\n" +
		"2024-03-01,-3.5,Café,Expresso\n" +
		"oops,-3.5,Café,Expresso\n" +
		"2024-03-02,-3.5,Café,Expresso bis\n"
	res, err := env.txs.ImportCSV(ctx, "u", strings.NewReader(csv), "csv")
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 2 || len(res.Errors) != 1 {
		t.Errorf("unexpected result %+v", res)
	}

	again, err := env.txs.ImportCSV(ctx, "u", strings.NewReader(csv), "csv")
	if err != nil {
		t.Fatal(err)
	}
	list, _ := env.txs.ListTransactions(ctx, "u", storage.Filter{})
	if again.Imported != 2 || len(list) != 2 {
		t.Errorf("re-import duplicated rows: %d stored", len(list))
	}

	if _, err := env.txs.ImportCSV(ctx, "u", strings.NewReader(csv), "qif"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation for unknown format, got %v", err)
	}
}

func TestJournal_EmotionsFeedInsights(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	moods := []int{2, 2, 6, 6, 6, 6}
	values := []float64{100, 100, 20, 20, 20, 20}
	for i := range moods {
		tx, err := env.txs.AddTransaction(ctx, "u", expense(values[i], fmt.Sprintf("Cat%d", i), march.AddDate(0, 0, i)))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := env.journal.AddEmotion(ctx, "u", models.EmotionalEntry{Date: tx.Date, Mood: moods[i], TransactionID: tx.ID}); err != nil {
			t.Fatal(err)
		}
	}

	insights, err := env.insight.GenerateInsights(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	if findType(insights, models.InsightEmotionalCorrelation) == nil {
		t.Errorf("expected emotional correlation from journal entries, got %+v", insights)
	}

	entries, err := env.journal.ListEmotions(ctx, "u", storage.Filter{})
	if err != nil || len(entries) != 6 {
		t.Errorf("ListEmotions = %d, %v", len(entries), err)
	}
	if _, err := env.journal.AddEmotion(ctx, "u", models.EmotionalEntry{Date: march, Mood: 0}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation for mood 0, got %v", err)
	}
}

func TestJournal_Snapshots(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	snap, err := env.journal.AddSnapshot(ctx, "u", models.FinancialSnapshot{Date: march, Income: 2500, Savings: 4000, Debt: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if snap.ID == "" {
		t.Error("snapshot id not assigned")
	}
	lo := 2000.0
	list, err := env.journal.ListSnapshots(ctx, "u", storage.Filter{MinAmount: &lo})
	if err != nil || len(list) != 1 || list[0].NetWorth() != 3000 {
		t.Errorf("ListSnapshots = %+v, %v", list, err)
	}
	if _, err := env.journal.AddSnapshot(ctx, "u", models.FinancialSnapshot{Date: march, Debt: -1}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestDetectBiasesAndGoalMicroInsights(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	income := expense(1000, "Salaire", march)
	income.Domain = models.DomainIncome
	env.add(t, "u", income,
		expense(300, "Restaurant", march.AddDate(0, 0, 1)),
		expense(200, "Shopping", march.AddDate(0, 0, 2)),
		expense(300, "Logement", march.AddDate(0, 0, 3)))

	results, err := env.insight.DetectBiases(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 || results[0].BiasID != "present_bias" {
		t.Fatalf("expected present bias, got %+v", results)
	}

	micro, err := env.insight.MicroInsights(ctx, "u", models.ContextGoal)
	if err != nil {
		t.Fatal(err)
	}
	if len(micro) != 1 || micro[0].PsychologyReference == nil || micro[0].PsychologyReference.ID != "present_bias" {
		t.Errorf("unexpected goal micro insights %+v", micro)
	}

	sim, err := env.insight.MicroInsights(ctx, "u", models.ContextSimulation)
	if err != nil {
		t.Fatal(err)
	}
	if len(sim) == 0 || sim[0].ID != "micro-savings_simulation-restaurant" {
		t.Errorf("unexpected simulation micro insights %+v", sim)
	}
}

func TestVault(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.add(t, "u", expense(12, "Courses", march))

	env.vault.Lock()
	if env.vault.IsUnlocked() {
		t.Fatal("vault still unlocked after Lock")
	}
	if _, err := env.insight.GenerateInsights(ctx, "u"); !errors.Is(err, storage.ErrLocked) {
		t.Errorf("expected ErrLocked while locked, got %v", err)
	}

	if err := env.vault.Unlock(ctx, "mauvaise phrase"); !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("expected ErrWrongPassphrase, got %v", err)
	}
	if env.vault.IsUnlocked() {
		t.Error("wrong passphrase left the key installed")
	}

	if err := env.vault.Unlock(ctx, passphrase); err != nil {
		t.Fatal(err)
	}
	if list, err := env.txs.ListTransactions(ctx, "u", storage.Filter{}); err != nil || len(list) != 1 {
		t.Errorf("data unreadable after unlock: %v / %v", list, err)
	}

	if err := env.vault.EraseUser(ctx, "u"); err != nil {
		t.Fatal(err)
	}
	if list, _ := env.txs.ListTransactions(ctx, "u", storage.Filter{}); len(list) != 0 {
		t.Errorf("EraseUser left %d records", len(list))
	}

	if err := env.vault.ResetInstallation(ctx); err != nil {
		t.Fatal(err)
	}
	if env.vault.IsUnlocked() {
		t.Error("reset should drop the key")
	}
	if err := env.vault.Unlock(ctx, "nouvelle phrase"); err != nil {
		t.Errorf("expected a fresh vault to accept any passphrase, got %v", err)
	}
}

func TestVault_FailedUnlockKeepsOpenSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.add(t, "u", expense(12, "Courses", march))

	if err := env.vault.Unlock(ctx, "mauvaise phrase"); !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("expected ErrWrongPassphrase, got %v", err)
	}
	if !env.vault.IsUnlocked() {
		t.Fatal("a failed unlock locked the open session")
	}
	if list, err := env.txs.ListTransactions(ctx, "u", storage.Filter{}); err != nil || len(list) != 1 {
		t.Errorf("records unreadable after a failed unlock: %v / %v", list, err)
	}
	if err := env.vault.Unlock(ctx, passphrase); err != nil {
		t.Errorf("re-unlock with the right passphrase failed: %v", err)
	}
}

func TestTwoUsersShareSemanticIDs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for _, user := range []string{"alice", "bob"} {
		got, err := env.insight.GenerateInsights(ctx, user)
		if err != nil {
			t.Fatalf("GenerateInsights(%s) failed: %v", user, err)
		}
		if len(got) != 1 || got[0].Type != models.InsightOnboarding || got[0].RelevanceScore != 1.0 {
			t.Fatalf("%s: expected the onboarding insight, got %+v", user, got)
		}
		stored, err := env.insight.StoredInsights(ctx, user)
		if err != nil || len(stored) != 1 {
			t.Errorf("%s: stored snapshot %d insights, %v", user, len(stored), err)
		}
	}

	csv := "date,amount,category,description\n" +
		"2024-03-04,-3.50,Restaurant,Cafe\n" +
		"2024-03-04,-3.50,Restaurant,Cafe\n" +
		"2024-03-05,-12.00,Courses,Marche\n"
	for _, user := range []string{"alice", "bob"} {
		res, err := env.txs.ImportCSV(ctx, user, strings.NewReader(csv), "csv")
		if err != nil {
			t.Fatalf("ImportCSV(%s) failed: %v", user, err)
		}
		list, err := env.txs.ListTransactions(ctx, user, storage.Filter{})
		if err != nil {
			t.Fatal(err)
		}
		if res.Imported != 3 || len(res.Errors) != 0 || len(list) != 3 {
			t.Errorf("%s: imported=%d errors=%v stored=%d", user, res.Imported, res.Errors, len(list))
		}
	}

	aliceInsights, err := env.insight.GenerateInsights(ctx, "alice")
	if err != nil {
		t.Fatalf("GenerateInsights(alice) with data failed: %v", err)
	}
	bobInsights, err := env.insight.GenerateInsights(ctx, "bob")
	if err != nil {
		t.Fatalf("GenerateInsights(bob) with data failed: %v", err)
	}
	if len(aliceInsights) == 0 || len(aliceInsights) != len(bobInsights) || aliceInsights[0].ID != bobInsights[0].ID {
		t.Errorf("expected identical insight sets, got %d and %d", len(aliceInsights), len(bobInsights))
	}
}
